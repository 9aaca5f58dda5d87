package utils

import (
	"strings"
)

// MinPasswordLength applies to registration and password change.
const MinPasswordLength = 8

// ValidatePassword checks the password length rule.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, "Password must be at least 8 characters long"
	}
	return true, ""
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.ReplaceAll(input, "\r", "")
	input = strings.ReplaceAll(input, "\n", "")
	input = strings.ReplaceAll(input, "\t", "")
	return strings.TrimSpace(input)
}
