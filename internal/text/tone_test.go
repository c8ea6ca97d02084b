package text

import "testing"

func TestResolveSyllable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// pass-through
		{"empty", "", ""},
		{"space", " ", " "},
		{"whitespace run", " \t", " \t"},
		{"hyphen", "-", "-"},
		{"already numeric", "ti7", "ti7"},
		{"already numeric neutral", "lah0", "lah0"},
		{"non-ascii digit", "ka٣", "ka٣"},
		{"information separator", "\x1f", "\x1f"},

		// neutral tone
		{"neutral prefix", "--lah", "lah0"},
		{"neutral prefix keeps marks", "--lâng", "lâng0"},

		// full-character exceptions
		{"syllabic ng acute", "ńg", "ng2"},
		{"syllabic ng macron", "n\u0304g", "ng7"},
		{"syllabic ng decomposed acute", "n\u0301g", "ng2"},
		{"syllabic m acute", "ḿ", "m2"},
		{"syllabic m macron", "m\u0304", "m7"},
		{"lone vowel tone 8", "a\u030d", "a8"},
		{"lone vowel tone 9", "a\u030b", "a9"},
		{"lone vowel caron", "ǒ", "o6"},

		// decomposition
		{"acute", "guá", "gua2"},
		{"grave", "kàu", "kau3"},
		{"circumflex", "Tâi", "Tai5"},
		{"macron", "sī", "si7"},
		{"vertical line", "tsia\u030dh", "tsiah8"},
		{"double acute", "ke\u030b", "ke9"},
		{"caron", "hǒ", "ho6"},
		{"nasal final", "pn\u0304g", "png7"},
		{"o dot above right", "o\u0358", "oo1"},
		{"o dot above right with tone", "b\u014do", "boo7"},
		{"o dot above right marked", "ho\u0301\u0358", "hoo2"},
		{"superscript nasal kept", "chhiáⁿ", "chhiaⁿ2"},
		{"second tone mark kept", "a\u0301a\u0300", "aa\u03002"},
		{"unknown mark kept", "a\u0323", "a\u03231"},

		// defaults
		{"checked k", "bak", "bak4"},
		{"checked p", "sip", "sip4"},
		{"checked t", "tsit", "tsit4"},
		{"checked h", "tsheh", "tsheh4"},
		{"checked uppercase", "BAK", "BAK4"},
		{"open syllable", "ka", "ka1"},
		{"no vowel", "hm", "hm1"},
		{"nasal coda", "lang", "lang1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSyllable(tt.input); got != tt.want {
				t.Errorf("ResolveSyllable(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveSyllable_EndsInSingleDigit(t *testing.T) {
	inputs := []string{"guá", "bak", "ka", "--lah", "ńg", "o\u0358", "hm", "a\u0323"}
	for _, in := range inputs {
		got := ResolveSyllable(in)
		if len(got) == 0 || !isASCIIDigit(got[len(got)-1]) {
			t.Errorf("ResolveSyllable(%q) = %q, want trailing digit", in, got)
			continue
		}
		if len(got) > 1 && isASCIIDigit(got[len(got)-2]) {
			t.Errorf("ResolveSyllable(%q) = %q, want exactly one trailing digit", in, got)
		}
	}
}

func TestResolveSyllable_Idempotent(t *testing.T) {
	for _, in := range []string{"guá", "tsia\u030dh", "--lah", "ńg", "bak"} {
		once := ResolveSyllable(in)
		if twice := ResolveSyllable(once); twice != once {
			t.Errorf("ResolveSyllable not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestResolveTokens_LeavesSeparatorsAlone(t *testing.T) {
	in := []Token{Syllable("guá"), Separator(" "), Syllable("bak"), Separator("-")}
	got := ResolveTokens(in)

	want := []Token{Syllable("gua2"), Separator(" "), Syllable("bak4"), Separator("-")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %#v, want %#v", i, got[i], want[i])
		}
	}
	if in[0].Text != "guá" {
		t.Errorf("ResolveTokens modified its input: %q", in[0].Text)
	}
}

func isASCIIDigit(c byte) bool { return c >= '0' && c <= '9' }
