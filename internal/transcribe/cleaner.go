package transcribe

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanText normalizes engine output to NFC, strips control characters and
// zero-width junk, and collapses runs of whitespace into single spaces.
// Engines pad segment text with leading spaces and occasionally emit stray
// byte order marks.
func CleanText(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := true
	for _, r := range text {
		if unicode.IsControl(r) || r == '\ufeff' || r == '\u200b' {
			r = ' '
		}
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}
