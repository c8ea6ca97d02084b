package text

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Variant selects the regional sandhi rule for citation tone 5.
type Variant uint8

const (
	// VariantChang follows Zhangzhou-leaning speech: tone 5 → 7.
	VariantChang Variant = iota
	// VariantChuan follows Quanzhou-leaning speech: tone 5 → 3.
	VariantChuan
)

// ErrUnknownVariant is returned by ParseVariant for unsupported names.
var ErrUnknownVariant = errors.New("unknown sandhi variant")

func (v Variant) String() string {
	switch v {
	case VariantChang:
		return "chang"
	case VariantChuan:
		return "chuan"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

// ParseVariant converts a case-insensitive variant name. An empty string
// selects VariantChang.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "chang":
		return VariantChang, nil
	case "chuan":
		return VariantChuan, nil
	default:
		return VariantChang, fmt.Errorf("%w %q (expected chang|chuan)", ErrUnknownVariant, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// numericSyllablePattern matches a resolved syllable: letters (hyphens
// allowed, at least one letter) followed by exactly one tone digit.
var numericSyllablePattern = regexp.MustCompile(`^([A-Za-z-]*[A-Za-z][A-Za-z-]*)([0-9])$`)

// Tones that shift the same way regardless of the syllable final.
var openSandhi = map[byte]byte{
	'1': '7',
	'2': '1',
	'3': '2',
	'7': '3',
}

var toneFiveSandhi = map[Variant]byte{
	VariantChang: '7',
	VariantChuan: '3',
}

// Checked tones shift by final: p/t/k versus the glottal stop h. A checked
// syllable with any other final keeps its tone.
var checkedSandhi = map[byte]struct{ stop, glottal byte }{
	'4': {stop: '8', glottal: '2'},
	'8': {stop: '4', glottal: '3'},
}

// SandhiTone returns the connected-speech tone for a non-final syllable with
// the given base and citation tone. Tones 0, 6 and 9 have no rule and are
// returned unchanged.
func SandhiTone(base string, tone byte, v Variant) byte {
	if next, ok := openSandhi[tone]; ok {
		return next
	}
	if tone == '5' {
		if next, ok := toneFiveSandhi[v]; ok {
			return next
		}
		return tone
	}
	if rule, ok := checkedSandhi[tone]; ok {
		switch {
		case endsInStop(base):
			return rule.stop
		case endsInGlottal(base):
			return rule.glottal
		}
	}
	return tone
}

// ApplySandhi rewrites the tone of every resolved syllable except the last
// one in the utterance. It needs the whole sequence because the phrase-final
// syllable keeps its citation tone, so it first collects the positions of
// all numeric syllables and only then rewrites them. Sequences with fewer
// than two numeric syllables are returned unchanged. The input slice is not
// modified.
func ApplySandhi(tokens []Token, v Variant) []Token {
	out := append([]Token(nil), tokens...)

	var idx []int
	for i, t := range out {
		if t.Kind == KindSyllable && numericSyllablePattern.MatchString(t.Text) {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return out
	}

	for _, i := range idx[:len(idx)-1] {
		m := numericSyllablePattern.FindStringSubmatch(out[i].Text)
		base, tone := m[1], m[2][0]
		out[i].Text = base + string(SandhiTone(base, tone, v))
	}

	return out
}
