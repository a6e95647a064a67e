// Package course holds the immutable course metadata record: an opaque
// identifier plus localized name and description mappings. A Metadata value
// is built once with New and is safe for concurrent reads without locking.
package course
