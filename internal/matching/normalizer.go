package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a string for comparison: lowercase, no accents,
// single spaces
func Normalize(s string) string {
	s = strings.ToLower(s)

	// Remove accents
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	return strings.Join(strings.Fields(s), " ")
}

// CleanQuery prepares user input for a filter: NFC form, control
// characters dropped, whitespace collapsed. Case and accents are kept.
func CleanQuery(s string) string {
	t := transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))
	s, _, _ = transform.String(t, s)

	return strings.Join(strings.Fields(s), " ")
}

// IsBlank reports whether the input is empty once cleaned
func IsBlank(s string) bool {
	return CleanQuery(s) == ""
}

// Contains reports whether needle occurs in haystack after normalization
func Contains(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
