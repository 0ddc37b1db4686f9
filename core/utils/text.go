package utils

// Pluralize returns singular when n is 1 and plural otherwise.
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// OrPlaceholder returns s, or placeholder when s is empty. Used when logging
// field values so empty old values stay visible in the line log.
func OrPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
