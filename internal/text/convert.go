package text

import "github.com/sourcegraph/conc/iter"

// ToNumericTone converts Tâi-lô text to numeric-tone notation without
// applying tone sandhi. Punctuation becomes pauses, separators are kept
// verbatim and text already in numeric form passes through unchanged.
func ToNumericTone(s string) string {
	return ToNumericToneWithSandhi(s, false, VariantChang)
}

// ToNumericToneWithSandhi converts like ToNumericTone and, when applySandhi is
// set, rewrites every non-final syllable to its connected-speech tone.
func ToNumericToneWithSandhi(s string, applySandhi bool, v Variant) string {
	tokens := ResolveTokens(Tokenize(Normalize(s)))
	if applySandhi {
		tokens = ApplySandhi(tokens, v)
	}
	return Reassemble(tokens)
}

// Converter carries conversion settings for callers that convert many
// utterances the same way. The zero value converts without sandhi.
type Converter struct {
	sandhi  bool
	variant Variant
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithSandhi enables or disables the sandhi pass.
func WithSandhi(enabled bool) ConverterOption {
	return func(c *Converter) { c.sandhi = enabled }
}

// WithVariant selects the sandhi variant.
func WithVariant(v Variant) ConverterOption {
	return func(c *Converter) { c.variant = v }
}

// NewConverter returns a Converter with the given options applied.
func NewConverter(opts ...ConverterOption) Converter {
	var c Converter
	for _, fn := range opts {
		fn(&c)
	}
	return c
}

// Sandhi reports whether the sandhi pass is enabled.
func (c Converter) Sandhi() bool { return c.sandhi }

// Variant returns the configured sandhi variant.
func (c Converter) Variant() Variant { return c.variant }

// Convert converts one utterance.
func (c Converter) Convert(s string) string {
	return ToNumericToneWithSandhi(s, c.sandhi, c.variant)
}

// ConvertBatch converts every input concurrently and returns the results in
// input order.
func (c Converter) ConvertBatch(inputs []string) []string {
	return iter.Map(inputs, func(s *string) string {
		return c.Convert(*s)
	})
}
