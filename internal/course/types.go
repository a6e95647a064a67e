package course

// Provider exposes course display metadata to consumers.
// Lookups are exact-match on the locale key; there is no fallback locale.
type Provider interface {
	ID() string
	Name(locale string) (string, error)
	Description(locale string) (string, error)
}

// LanguageMap maps a locale tag such as "en-US" to localized text.
type LanguageMap map[string]string

// Activity is the xAPI activity object a course is reported as.
type Activity struct {
	ID         string             `json:"id"`
	ObjectType string             `json:"objectType"`
	Definition ActivityDefinition `json:"definition"`
}

// ActivityDefinition carries the localized name and description of an Activity.
type ActivityDefinition struct {
	Name        LanguageMap `json:"name"`
	Description LanguageMap `json:"description"`
}
