// Package encoding converts text for the single-byte core PDF fonts.
package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var win1252 = charmap.Windows1252

// Windows1252 converts UTF-8 text into Windows-1252 bytes. A rune with no
// Windows-1252 form is reduced to its base letter when it has one
// (Ș becomes S), otherwise it becomes '?'.
func Windows1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if c, ok := win1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}

		b.WriteByte(fallback(r))
	}

	return b.String()
}

func fallback(r rune) byte {
	for _, d := range norm.NFD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}

		if c, ok := win1252.EncodeRune(d); ok {
			return c
		}
	}

	return '?'
}
