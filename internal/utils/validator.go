package utils

import "strings"

// SanitizeEmail normalizes an email address for storage and lookups
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
