package utils

import (
	"regexp"
	"strings"
)

// sanitize.go - Input sanitization for free-text profile fields

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string
func StripHTML(input string) string {
	return tagPattern.ReplaceAllString(input, "")
}

// TruncateString safely truncates a string to max length (in runes)
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

// CleanText strips tags, trims whitespace and caps the length of user-entered text
// that later ends up inside generation prompts.
func CleanText(s string, maxLen int) string {
	return TruncateString(strings.TrimSpace(StripHTML(s)), maxLen)
}

// NormalizeEmail lowercases and trims an email address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
