package repository

import "strings"

// collapseWhitespace trims the value and squeezes internal runs of
// whitespace into single spaces.
func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// normalizeEmail trims and lowercases an email address. Uniqueness and login
// matching both operate on this form.
func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
