// Package textx normalizes text before vectorization: collapse whitespace,
// strip, limit length.
package textx

import (
	"regexp"
	"strings"
)

// DefaultMaxChars is a safe upper bound for embedding-model token limits.
const DefaultMaxChars = 8000

var whitespace = regexp.MustCompile(`\s+`)

// Normalize collapses every whitespace run to a single space, trims the ends
// and truncates to maxChars characters (plain prefix, no word-boundary
// awareness). Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	normalized := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if maxChars > 0 {
		if runes := []rune(normalized); len(runes) > maxChars {
			normalized = strings.TrimSpace(string(runes[:maxChars]))
		}
	}
	return normalized
}
