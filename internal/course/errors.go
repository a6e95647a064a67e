package course

import "errors"

var (
	// ErrMissingID is returned when the course identifier is empty.
	ErrMissingID = errors.New("course id must not be empty")
	// ErrMissingNames is returned when the course name mapping has no entries.
	ErrMissingNames = errors.New("course name must contain at least one locale")
	// ErrMissingDescriptions is returned when the course description mapping has no entries.
	ErrMissingDescriptions = errors.New("course description must contain at least one locale")
	// ErrInvalidLocale is returned when a mapping key is not a well-formed locale tag.
	ErrInvalidLocale = errors.New("invalid locale tag")
	// ErrLocaleNotFound is returned when a lookup targets a locale absent from the mapping.
	ErrLocaleNotFound = errors.New("locale not found")
)
