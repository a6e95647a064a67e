// Package metadata decodes course metadata documents (YAML, JSON or HCL) into
// course records. A document embedded at build time serves as the default
// when no file is configured. Malformed documents fail with a *LoadError.
package metadata
