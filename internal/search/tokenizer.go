package search

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for comparison: lowercase, punctuation
// stripped (anything that is not a letter, digit or whitespace), and
// runs of whitespace collapsed to a single space. Unicode letters,
// including Cyrillic, pass through untouched.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into tokens. Empty input yields nil.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}
