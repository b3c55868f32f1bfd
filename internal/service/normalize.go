package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and removes combining marks, so that
// accented letters compare equal to their plain forms ("García" -> "garcia").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a free-text human name for comparison:
// lowercase, diacritics stripped, everything outside a-z treated as a
// token boundary, whitespace collapsed. Total and idempotent; garbage
// input yields the empty string.
func NormalizeName(raw string) string {
	lower := strings.ToLower(raw)

	stripped, _, err := transform.String(stripMarks, lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		} else {
			// Hyphenated and punctuated names split into tokens
			// rather than fusing ("Garcia-Lopez" -> "garcia lopez").
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
