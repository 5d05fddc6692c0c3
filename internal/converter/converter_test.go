package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain word", "word", "word"},
		{"plain list", "a, b, c", "a, b, c"},
		{"empty", "", ""},
		{"only commas", " , ,", ""},
		{"global curly wrap", "{word}", "word"},
		{"single emphasis", "a, {b}, c", "a, (b:1.05), c"},
		{"double emphasis", "a, {{b}}, c", "a, (b:1.10), c"},
		{"triple emphasis", "x, {{{a}}}", "x, (a:1.16)"},
		{"single de-emphasis", "a, [b], c", "a, (b:0.95), c"},
		{"global square wrap", "[[b]]", "(b:0.95)"},
		{"triple global curly", "{{{a}}}", "(a:1.10)"},
		{"group spans commas", "{a, b}, c", "(a:1.05), (b:1.05), c"},
		{"mixed brackets", "{a}, [b]", "(a:1.05), (b:0.95)"},
		{"wrap with separate groups", "{a}, {b}", "a, b"},
		{"wrap with nested group", "{{a}}, {b}", "(a:1.05), b"},
		{"nested opposite brackets", "{[a]}", "(a:0.95)"},
		{"unbalanced uses larger side", "{{a}, b", "(a:1.10), b"},
		{"underscores become spaces", "long_hair, {blue_eyes}", "long hair, (blue eyes:1.05)"},
		{"empty bracket tokens dropped", "a,, {}, b", "a, b"},
		{"tabs and spaces trimmed", "\t{a}\t, b", "(a:1.05), b"},
		{"multi-byte text", "ä, {ö}", "ä, (ö:1.05)"},
		{"emphasis inside token", "a, blue {eyes}", "a, (blue eyes:1.05)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.in))
		})
	}
}

func TestConvertIdempotentOnPlainText(t *testing.T) {
	for _, in := range []string{"word", "a, b", "masterpiece, best quality, 1girl"} {
		once := Convert(in)
		assert.Equal(t, in, once)
		assert.Equal(t, once, Convert(once))
	}
}

func TestWeight(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{0, 1.0},
		{1, 1.05},
		{2, 1.1},
		{3, 1.16},
		{4, 1.22},
		{5, 1.28},
		{-1, 0.95},
		{-2, 0.9},
		{-3, 0.86},
		{-4, 0.81},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Weight(tt.level), 1e-9, "level %d", tt.level)
	}
}

func TestSplitTokens(t *testing.T) {
	got := splitTokens([]rune("a, {b},  ,c"))
	want := []token{
		{text: "a", start: 0, end: 0},
		{text: " {b}", start: 2, end: 5},
		{text: "c", start: 10, end: 10},
	}
	assert.Equal(t, want, got)
}

func TestWordBounds(t *testing.T) {
	start, end := wordBounds(token{text: " {b}", start: 2, end: 5})
	assert.Equal(t, 4, start)
	assert.Equal(t, 4, end)

	// nothing but brackets: whole token
	start, end = wordBounds(token{text: "{}", start: 3, end: 4})
	assert.Equal(t, 3, start)
	assert.Equal(t, 4, end)
}
