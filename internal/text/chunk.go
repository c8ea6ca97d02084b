package text

import (
	"strings"
	"unicode/utf8"
)

// ChunkBySentence splits raw romanized text into pieces of at most maxChars
// bytes for synthesis. Cuts prefer sentence terminators (. ! ? 。 ！ ？), then
// commas (, ，), then spaces; neighbouring pieces are packed together,
// joined by a space, while they fit. A single word longer than maxChars is
// never cut. maxChars <= 0 disables splitting.
func ChunkBySentence(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}

	var pieces []string
	for _, sentence := range splitAfter(text, isSentenceEnd) {
		pieces = append(pieces, fitPieces(sentence, maxChars)...)
	}
	if len(pieces) <= 1 {
		return []string{text}
	}

	return pack(pieces, maxChars)
}

// fitPieces breaks one sentence at commas and then at spaces until each
// piece fits or cannot be cut further.
func fitPieces(sentence string, maxChars int) []string {
	if len(sentence) <= maxChars {
		return []string{sentence}
	}

	clauses := splitAfter(sentence, isClauseEnd)
	if len(clauses) > 1 {
		var out []string
		for _, c := range clauses {
			out = append(out, fitPieces(c, maxChars)...)
		}
		return out
	}

	return pack(strings.FieldsFunc(sentence, isSpace), maxChars)
}

// pack greedily joins pieces with a single space while the result stays
// within maxChars.
func pack(pieces []string, maxChars int) []string {
	var chunks []string
	var cur strings.Builder

	for _, p := range pieces {
		if cur.Len() > 0 && cur.Len()+1+len(p) > maxChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}

	return chunks
}

func isSentenceEnd(r rune) bool {
	return strings.ContainsRune(".!?。！？", r)
}

func isClauseEnd(r rune) bool {
	return r == ',' || r == '，'
}

// splitAfter cuts text after every rune matching end, keeping the rune with
// the preceding segment. Segments are trimmed and blank ones dropped.
func splitAfter(text string, end func(rune) bool) []string {
	var out []string
	start := 0

	for i, r := range text {
		if !end(r) {
			continue
		}
		next := i + utf8.RuneLen(r)
		if seg := strings.TrimFunc(text[start:next], isSpace); seg != "" {
			out = append(out, seg)
		}
		start = next
	}
	if seg := strings.TrimFunc(text[start:], isSpace); seg != "" {
		out = append(out, seg)
	}

	return out
}
