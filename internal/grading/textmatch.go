package grading

import "strings"

// IsCorrect compares a submitted answer with the key, ignoring case and
// surrounding whitespace.
func IsCorrect(submitted, correct string) bool {
	return strings.EqualFold(normalize(submitted), normalize(correct))
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
