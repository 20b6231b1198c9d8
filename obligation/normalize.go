// Package obligation turns a raw regulatory sentence into readable obligation
// text. Every function is pure: the same sentence always renders the same way.
package obligation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// "(a) ", "(12) ", "1. ", "b. ", "iv. " at the very start of a fragment. A
	// dotted token must be followed by a space so "comply." is not a marker.
	leadingMarker = regexp.MustCompile(`(?i)^\s*(\([a-z0-9]+\)\s*|(\d+|[a-z]|[ivx]+)\.\s+)`)
)

// Normalize collapses every whitespace run to a single space and trims the ends.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// StripLeadingMarker removes a leading enumerator such as "(a)" or "1." and then
// a leading "to ", so fragments read verb first.
func StripLeadingMarker(s string) string {
	cleaned := strings.TrimSpace(leadingMarker.ReplaceAllString(s, ""))
	if len(cleaned) >= 3 && strings.EqualFold(cleaned[:3], "to ") {
		return strings.TrimSpace(cleaned[3:])
	}
	return cleaned
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func ensurePeriod(s string) string {
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
