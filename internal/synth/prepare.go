package synth

import (
	"regexp"
	"strings"
)

// The remote voice stretches a phrase-final te5; te7 is the workaround.
const (
	longFinal    = "te5"
	longFinalFix = "te7"

	// Phrases longer than this are not micro-split.
	microSplitMaxTokens = 4
)

var finalSyllablePattern = regexp.MustCompile(`^([A-Za-z-]+)([0-9])$`)

// PrepareText trims and collapses whitespace in numeric-tone text and, when
// fixLongFinal is set, rewrites a final te5 to te7.
func PrepareText(text string, fixLongFinal bool) string {
	fields := strings.Fields(text)
	if fixLongFinal && len(fields) > 0 && fields[len(fields)-1] == longFinal {
		fields[len(fields)-1] = longFinalFix
	}
	return strings.Join(fields, " ")
}

// splitFinal separates a short phrase ending in te5 or te7 into its prefix
// and final syllable. ok is false when the phrase does not qualify.
func splitFinal(text string) (prefix, final string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > microSplitMaxTokens {
		return "", "", false
	}

	last := fields[len(fields)-1]
	m := finalSyllablePattern.FindStringSubmatch(last)
	if m == nil {
		return "", "", false
	}
	if strings.ToLower(m[1]) != "te" || (m[2] != "5" && m[2] != "7") {
		return "", "", false
	}

	return strings.Join(fields[:len(fields)-1], " "), last, true
}
