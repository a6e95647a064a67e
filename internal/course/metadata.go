package course

import (
	"fmt"
	"html"
	"maps"
	"slices"

	"golang.org/x/text/language"
)

const (
	fieldName        = "course name"
	fieldDescription = "course description"

	activityObjectType = "Activity"
)

// Metadata is the write-once course record. The zero value is not usable;
// construct it with New.
type Metadata struct {
	id           string
	names        LanguageMap
	descriptions LanguageMap
}

var _ Provider = (*Metadata)(nil)

// New validates the inputs and returns a record holding private copies of the
// supplied mappings. Values are stored exactly as given, whitespace included.
func New(id string, names, descriptions map[string]string) (*Metadata, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if len(names) == 0 {
		return nil, ErrMissingNames
	}
	if len(descriptions) == 0 {
		return nil, ErrMissingDescriptions
	}
	if err := validateLocales(fieldName, names); err != nil {
		return nil, err
	}
	if err := validateLocales(fieldDescription, descriptions); err != nil {
		return nil, err
	}

	return &Metadata{
		id:           id,
		names:        maps.Clone(names),
		descriptions: maps.Clone(descriptions),
	}, nil
}

// ID returns the course identifier.
func (m *Metadata) ID() string {
	return m.id
}

// Name returns the course name for the exact locale key.
func (m *Metadata) Name(locale string) (string, error) {
	return lookup(fieldName, m.names, locale)
}

// Description returns the course description for the exact locale key.
// The value keeps its HTML escaping; see DecodedDescription.
func (m *Metadata) Description(locale string) (string, error) {
	return lookup(fieldDescription, m.descriptions, locale)
}

// DecodedDescription returns the description with one level of HTML entity
// escaping removed, yielding the markup fragment it encodes.
func (m *Metadata) DecodedDescription(locale string) (string, error) {
	desc, err := m.Description(locale)
	if err != nil {
		return "", err
	}
	return html.UnescapeString(desc), nil
}

// Names returns a copy of the name mapping.
func (m *Metadata) Names() map[string]string {
	return maps.Clone(m.names)
}

// Descriptions returns a copy of the description mapping.
func (m *Metadata) Descriptions() map[string]string {
	return maps.Clone(m.descriptions)
}

// Locales returns the sorted union of locale keys across both mappings.
func (m *Metadata) Locales() []string {
	seen := make(map[string]struct{}, len(m.names)+len(m.descriptions))
	for locale := range m.names {
		seen[locale] = struct{}{}
	}
	for locale := range m.descriptions {
		seen[locale] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Activity projects the record onto an xAPI statement object.
func (m *Metadata) Activity() Activity {
	return Activity{
		ID:         m.id,
		ObjectType: activityObjectType,
		Definition: ActivityDefinition{
			Name:        maps.Clone(m.names),
			Description: maps.Clone(m.descriptions),
		},
	}
}

// Equal reports whether both records hold identical data.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.id == other.id &&
		maps.Equal(m.names, other.names) &&
		maps.Equal(m.descriptions, other.descriptions)
}

func lookup(field string, values LanguageMap, locale string) (string, error) {
	value, ok := values[locale]
	if !ok {
		return "", fmt.Errorf("%s %q: %w", field, locale, ErrLocaleNotFound)
	}
	return value, nil
}

func validateLocales(field string, values map[string]string) error {
	for locale := range values {
		if locale == "" {
			return fmt.Errorf("%s: empty key: %w", field, ErrInvalidLocale)
		}
		if _, err := language.Parse(locale); err != nil {
			return fmt.Errorf("%s %q: %w", field, locale, ErrInvalidLocale)
		}
	}
	return nil
}
