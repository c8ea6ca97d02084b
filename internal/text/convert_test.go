package text

import (
	"fmt"
	"testing"
)

func TestToNumericTone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"guá sī Tâi-oân-lâng。", "gua2 si7 Tai5-oan5-lang5"},
		{"lí hó，chhiáⁿ lâi!", "li2 ho2 chhiaⁿ2 lai5"},
		{"tsia̍h-pn̄g", "tsiah8-png7"},
		{"kám-siā", "kam2-sia7"},
		{"o͘-á-kah。", "oo1-a2-kah4"},
		{"goe̍h-niû。", "goeh8-niu5"},
		{"thak-tsheh", "thak4-tsheh4"},
		{"sió-bōo", "sio2-boo7"},
		{"ńg", "ng2"},
		{"m̄", "m7"},
		{"--lah", "lah0"},
		{"tsit-ê --lâng chin-kán-tan。", "tsit4-e5 lâng0 chin1-kan2-tan1"},
		{"Tâi-lô", "Tai5-lo5"},
		{"a̋ e̋", "a9 e9"},
		{"bak", "bak4"},
		{"ka", "ka1"},
		{"Hó. Lâi", "Ho2 Lai5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToNumericTone(tt.input); got != tt.want {
				t.Errorf("ToNumericTone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToNumericTone_IdempotentOnNumericText(t *testing.T) {
	inputs := []string{
		"gua2 si7 Tai5-oan5-lang5",
		"ti7 am1",
		"lah0",
		"tsit8-e5 lang0 chin1-kan2-tan1",
	}
	for _, in := range inputs {
		if got := ToNumericTone(in); got != in {
			t.Errorf("ToNumericTone(%q) = %q, want unchanged", in, got)
		}
		once := ToNumericTone(in)
		if twice := ToNumericTone(once); twice != once {
			t.Errorf("second pass changed %q to %q", once, twice)
		}
	}
}

func TestToNumericTone_PreservesSyllableCount(t *testing.T) {
	inputs := []string{
		"guá sī Tâi-oân-lâng。",
		"tsit-ê --lâng chin-kán-tan。",
		"khì--ah",
		"lí hó，chhiáⁿ lâi!",
		"--lah",
		"- -- ---",
		"",
	}
	for _, in := range inputs {
		want := CountSyllables(Tokenize(Normalize(in)))
		for _, sandhi := range []bool{false, true} {
			out := ToNumericToneWithSandhi(in, sandhi, VariantChang)
			if got := CountSyllables(Tokenize(out)); got != want {
				t.Errorf("sandhi=%v: %q -> %q has %d syllables, want %d", sandhi, in, out, got, want)
			}
		}
	}
}

func TestToNumericToneWithSandhi(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		apply   bool
		variant Variant
		want    string
	}{
		{"disabled", "guá sī Tâi-oân-lâng。", false, VariantChang, "gua2 si7 Tai5-oan5-lang5"},
		{"chang", "guá sī Tâi-oân-lâng。", true, VariantChang, "gua1 si3 Tai7-oan7-lang5"},
		{"chuan", "guá sī Tâi-oân-lâng。", true, VariantChuan, "gua1 si3 Tai3-oan3-lang5"},
		{"two open syllables", "ti am", true, VariantChang, "ti7 am1"},
		{"single syllable chang", "lâng", true, VariantChang, "lang5"},
		{"single syllable chuan", "lâng", true, VariantChuan, "lang5"},
		{"checked tones", "tsia̍h-pn̄g", true, VariantChang, "tsiah3-png7"},
		{"punctuation pause", "Hó. Lâi", true, VariantChang, "Ho1 Lai5"},
		{"bare neutral marker", "--5 ka", true, VariantChang, "--5 ka1"},
		{"information separator", "a\x1cb", false, VariantChang, "a1 b1"},
		{"non-ascii digit kept", "ka٣", false, VariantChang, "ka٣"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumericToneWithSandhi(tt.input, tt.apply, tt.variant)
			if got != tt.want {
				t.Errorf("ToNumericToneWithSandhi(%q, %v, %s) = %q, want %q",
					tt.input, tt.apply, tt.variant, got, tt.want)
			}
		})
	}
}

func TestConverter_ZeroValueSkipsSandhi(t *testing.T) {
	var c Converter
	if got := c.Convert("ti am"); got != "ti1 am1" {
		t.Errorf("Convert = %q, want %q", got, "ti1 am1")
	}
}

func TestConverter_Options(t *testing.T) {
	c := NewConverter(WithSandhi(true), WithVariant(VariantChuan))
	if !c.Sandhi() || c.Variant() != VariantChuan {
		t.Fatalf("options not applied: sandhi=%v variant=%s", c.Sandhi(), c.Variant())
	}
	if got := c.Convert("lâng lâng"); got != "lang3 lang5" {
		t.Errorf("Convert = %q, want %q", got, "lang3 lang5")
	}
}

func TestConverter_ConvertBatchKeepsOrder(t *testing.T) {
	c := NewConverter(WithSandhi(true))

	inputs := make([]string, 64)
	want := make([]string, len(inputs))
	for i := range inputs {
		inputs[i] = fmt.Sprintf("ti am %s", []string{"bak", "ka", "--lah"}[i%3])
		want[i] = c.Convert(inputs[i])
	}

	got := c.ConvertBatch(inputs)
	if len(got) != len(want) {
		t.Fatalf("ConvertBatch returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConverter_ConvertBatchEmpty(t *testing.T) {
	var c Converter
	if got := c.ConvertBatch(nil); len(got) != 0 {
		t.Errorf("ConvertBatch(nil) = %v, want empty", got)
	}
}
