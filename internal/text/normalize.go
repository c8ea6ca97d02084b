// Package text converts Tâi-lô romanization written with diacritic tone marks
// into the numeric-tone notation expected by the speech synthesizer.
//
// The pipeline runs strictly forward:
//
//	Normalize → Tokenize → ResolveSyllable (per token) → ApplySandhi → Reassemble
//
// Every exported function here is pure and safe for concurrent use.
package text

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Sentence terminators become a long pause (two spaces).
	longPause = strings.NewReplacer(
		"。", "  ",
		".", "  ",
		"!", "  ",
		"?", "  ",
		"！", "  ",
		"？", "  ",
	)
	// Commas become a short pause (one space).
	shortPause = strings.NewReplacer(
		"，", " ",
		",", " ",
	)
)

// Normalize canonicalizes raw romanized text before tokenization:
//  1. Apply NFC composition.
//  2. Replace sentence punctuation with a long pause and commas with a short one.
//  3. Collapse whitespace runs to a single space and trim the edges.
//
// Normalize is total: any string, including "", yields a result.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = longPause.Replace(s)
	s = shortPause.Replace(s)

	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}
