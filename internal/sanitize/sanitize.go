// Package sanitize cleans user-submitted text before it reaches the
// engine or the corpus.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MaxInputLen is the rune cap applied to sanitized input.
const MaxInputLen = 1000

// Clean strips HTML markup (including script and style bodies),
// removes control characters and trims the result to MaxInputLen
// runes.
func Clean(text string) string {
	if strings.ContainsAny(text, "<>") {
		text = stripMarkup(text)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	text = strings.TrimSpace(b.String())

	runes := []rune(text)
	if len(runes) > MaxInputLen {
		text = string(runes[:MaxInputLen])
	}
	return text
}

// stripMarkup keeps only the text content of an HTML fragment,
// skipping everything inside script and style elements.
func stripMarkup(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}
