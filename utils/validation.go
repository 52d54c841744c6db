// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\d{10,15}$`)

// ValidatePhone checks a phone number: digits only, at least 10 of them.
// Spaces, dashes and parentheses are stripped before checking.
func ValidatePhone(phone string) bool {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	return phoneRegex.MatchString(cleaned)
}
