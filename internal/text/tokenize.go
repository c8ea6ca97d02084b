package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind tags a Token as a syllable candidate or a verbatim separator.
type TokenKind uint8

const (
	// KindSyllable marks text that the tone resolver converts.
	KindSyllable TokenKind = iota
	// KindSeparator marks a whitespace run or a literal hyphen.
	KindSeparator
)

func (k TokenKind) String() string {
	switch k {
	case KindSyllable:
		return "syllable"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Token is one piece of tokenized text.
type Token struct {
	Kind TokenKind
	Text string
}

// Syllable returns a syllable token holding s.
func Syllable(s string) Token { return Token{Kind: KindSyllable, Text: s} }

// Separator returns a separator token holding s.
func Separator(s string) Token { return Token{Kind: KindSeparator, Text: s} }

// neutralPrefix marks a neutral-tone syllable ("--lah").
const neutralPrefix = "--"

// Tokenize splits s into syllables and separators. Each whitespace run and
// each hyphen becomes its own separator token; the text between them becomes
// a syllable token. Joining the token texts reproduces s byte for byte.
//
// A "--" that opens a word (start of text or right after whitespace) and is
// followed by a letter stays attached to that syllable as the neutral-tone
// marker instead of producing two hyphen separators.
func Tokenize(s string) []Token {
	tokens := make([]Token, 0, strings.Count(s, " ")*2+1)

	start := 0
	wordStart := true
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, Syllable(s[start:end]))
		}
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case isSpace(r):
			flush(i)
			j := i + size
			for j < len(s) {
				next, n := utf8.DecodeRuneInString(s[j:])
				if !isSpace(next) {
					break
				}
				j += n
			}
			tokens = append(tokens, Separator(s[i:j]))
			i, start = j, j
			wordStart = true
		case r == '-':
			if wordStart && i == start && opensNeutralSyllable(s[i:]) {
				i += len(neutralPrefix)
				wordStart = false
				continue
			}
			flush(i)
			tokens = append(tokens, Separator("-"))
			i++
			start = i
			wordStart = false
		default:
			i += size
			wordStart = false
		}
	}
	flush(len(s))

	return tokens
}

// opensNeutralSyllable reports whether s starts with "--" directly followed by
// a syllable character.
func opensNeutralSyllable(s string) bool {
	if !strings.HasPrefix(s, neutralPrefix) || len(s) == len(neutralPrefix) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[len(neutralPrefix):])
	return r != '-' && !isSpace(r)
}

// isSpace extends unicode.IsSpace with the ASCII information separators
// U+001C..U+001F, which Tâi-lô input treats as whitespace too.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// Reassemble concatenates token texts in order without adding anything.
func Reassemble(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// CountSyllables returns the number of syllable tokens in tokens.
func CountSyllables(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if t.Kind == KindSyllable {
			n++
		}
	}
	return n
}
