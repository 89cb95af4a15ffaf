// =============================================================================
// Price Export - Text Folding Utility
// =============================================================================
//
// Product names are written as plain ASCII. Accents are stripped and any
// other non-ASCII character becomes '?'.
//
// =============================================================================

package utils

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIReplacement is written in place of a rune that has no ASCII form.
const ASCIIReplacement = '?'

// FoldASCII reduces s to plain ASCII.
//
// The string is decomposed (NFKD), combining marks are dropped, and any rune
// still outside ASCII is replaced with ASCIIReplacement:
//
//	"Côte du Rhône" -> "Cote du Rhone"
//	"ﬁne"           -> "fine"
//	"Œuvre"         -> "?uvre"
func FoldASCII(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return ASCIIReplacement
			}
			return r
		}),
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		// Only reachable on invalid UTF-8; fall back to a rune-by-rune pass.
		out := make([]rune, 0, len(s))
		for _, r := range s {
			if r > unicode.MaxASCII {
				r = ASCIIReplacement
			}
			out = append(out, r)
		}
		return string(out)
	}
	return folded
}
