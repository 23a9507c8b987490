package ass

import "strings"

var textEscaper = strings.NewReplacer(
	"\r", "",
	"\n", `\N`,
	"{", `\{`,
	"}", `\}`,
)

// EscapeText makes raw cue text safe to embed in the event stream.
// Carriage returns are dropped, newlines become the \N line-break token,
// and braces are escaped so they cannot open an override block.
func EscapeText(text string) string {
	return textEscaper.Replace(text)
}
