package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Combining diacritics that carry a lexical tone.
var toneMarks = map[rune]byte{
	'\u0301': '2', // acute
	'\u0300': '3', // grave
	'\u0302': '5', // circumflex
	'\u0304': '7', // macron
	'\u030d': '8', // vertical line above
	'\u030b': '9', // double acute
	'\u030c': '6', // caron
}

// oDotAboveRight is the mark in "o͘"; it is spelled "oo" in numeric form.
const oDotAboveRight = '\u0358'

type numericSyllable struct {
	base string
	tone byte
}

// fullCharTones maps single marked vowels and syllabic nasals straight to
// their numeric form. Keys are NFC; precomposed forms such as "ḿ" and "ńg"
// do not decompose into a clean base plus tone mark, so they are looked up
// before NFD.
var fullCharTones = nfcKeys(map[string]numericSyllable{
	"á": {"a", '2'}, "à": {"a", '3'}, "â": {"a", '5'}, "ǎ": {"a", '6'}, "ā": {"a", '7'}, "a̍": {"a", '8'}, "a̋": {"a", '9'},
	"é": {"e", '2'}, "è": {"e", '3'}, "ê": {"e", '5'}, "ě": {"e", '6'}, "ē": {"e", '7'}, "e̍": {"e", '8'}, "e̋": {"e", '9'},
	"í": {"i", '2'}, "ì": {"i", '3'}, "î": {"i", '5'}, "ǐ": {"i", '6'}, "ī": {"i", '7'}, "i̍": {"i", '8'}, "i̋": {"i", '9'},
	"ó": {"o", '2'}, "ò": {"o", '3'}, "ô": {"o", '5'}, "ǒ": {"o", '6'}, "ō": {"o", '7'}, "o̍": {"o", '8'}, "ő": {"o", '9'},
	"ú": {"u", '2'}, "ù": {"u", '3'}, "û": {"u", '5'}, "ǔ": {"u", '6'}, "ū": {"u", '7'}, "u̍": {"u", '8'}, "ű": {"u", '9'},
	"ḿ": {"m", '2'}, "m̀": {"m", '3'}, "m̂": {"m", '5'}, "m̌": {"m", '6'}, "m̄": {"m", '7'}, "m̍": {"m", '8'}, "m̋": {"m", '9'},
	"ńg": {"ng", '2'}, "ǹg": {"ng", '3'}, "n̂g": {"ng", '5'}, "ňg": {"ng", '6'}, "n̄g": {"ng", '7'}, "n̍g": {"ng", '8'}, "n̋g": {"ng", '9'},
})

func nfcKeys(m map[string]numericSyllable) map[string]numericSyllable {
	out := make(map[string]numericSyllable, len(m))
	for k, v := range m {
		out[norm.NFC.String(k)] = v
	}
	return out
}

// Default tones for syllables written without a tone mark.
const (
	toneNeutral byte = '0'
	toneOpen    byte = '1'
	toneChecked byte = '4'
)

// ResolveSyllable converts one syllable from diacritic to numeric-tone form.
// The first matching rule wins:
//  1. empty, whitespace, "-" or text already ending in a digit is returned as is;
//  2. a "--" prefix marks the neutral tone: "--lah" → "lah0";
//  3. a full-character exception ("ńg" → "ng2");
//  4. otherwise the NFD form is scanned; the first tone mark sets the digit and
//     all other combining marks stay on their letters, "o͘" becomes "oo";
//  5. with no tone mark, bases ending in p/t/k/h get 4 and all others get 1.
//
// ResolveSyllable never fails.
func ResolveSyllable(s string) string {
	if passThrough(s) {
		return s
	}

	if rest, ok := strings.CutPrefix(s, neutralPrefix); ok {
		return rest + string(toneNeutral)
	}

	if ns, ok := fullCharTones[norm.NFC.String(s)]; ok {
		return ns.base + string(ns.tone)
	}

	var b strings.Builder
	var tone byte
	for _, r := range norm.NFD.String(s) {
		if tone == 0 && unicode.Is(unicode.Mn, r) {
			if d, ok := toneMarks[r]; ok {
				tone = d
				continue
			}
		}
		b.WriteRune(r)
	}
	base := strings.ReplaceAll(b.String(), string([]rune{'o', oDotAboveRight}), "oo")

	if tone == 0 {
		tone = defaultTone(base)
	}

	return base + string(tone)
}

func passThrough(s string) bool {
	if s == "" || s == "-" || strings.TrimFunc(s, isSpace) == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsDigit(r)
}

// defaultTone assigns the citation tone of an unmarked syllable. Stop-final
// syllables are checked (4); everything else, including syllables with no
// vowel at all, falls back to the open tone 1.
func defaultTone(base string) byte {
	if endsInStop(base) || endsInGlottal(base) {
		return toneChecked
	}
	return toneOpen
}

func endsInStop(base string) bool {
	if base == "" {
		return false
	}
	switch base[len(base)-1] {
	case 'p', 't', 'k', 'P', 'T', 'K':
		return true
	}
	return false
}

func endsInGlottal(base string) bool {
	if base == "" {
		return false
	}
	c := base[len(base)-1]
	return c == 'h' || c == 'H'
}

// ResolveTokens returns a copy of tokens with every syllable resolved.
func ResolveTokens(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		if t.Kind == KindSyllable {
			t.Text = ResolveSyllable(t.Text)
		}
		out[i] = t
	}
	return out
}
