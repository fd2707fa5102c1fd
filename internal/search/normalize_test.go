package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type label struct{ s string }

func (l *label) String() string { return l.s }

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trims", "  pulgones \t", "pulgones"},
		{"nbsp", "mildiu\u00a0velloso", "mildiu velloso"},
		{"collapses runs", "a  b\t\tc \n d", "a b c d"},
		{"keeps lone newline", "Name: x\nUses: y", "Name: x\nUses: y"},
		{"keeps lone tab", "a\tb", "a\tb"},
		{"only whitespace", " \u00a0\n\t ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  a  b  ",
		"x\u00a0\u00a0y",
		"line one\n\nline two\n",
		"\t tab  and   spaces \r\n",
		"Descripción:   insecticida   natural",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeValue_Total(t *testing.T) {
	var nilLabel *label
	var nilSlice []string
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "  hola  ", "hola"},
		{"nan", math.NaN(), ""},
		{"nan32", float32(math.NaN()), ""},
		{"float", 1.5, "1.5"},
		{"int", 42, "42"},
		{"bool", true, "true"},
		{"string slice", []string{"pulgones", " trips "}, "pulgones; trips"},
		{"any slice", []any{"a", 1, nil}, "a; 1;"},
		{"array", [2]int{1, 2}, "1; 2"},
		{"set", map[string]struct{}{"b": {}, "a": {}}, "a; b"},
		{"nil slice", nilSlice, ""},
		{"nil stringer", nilLabel, ""},
		{"stringer", &label{s: " x "}, "x"},
		{"pointer", func() *int { v := 7; return &v }(), "7"},
		{"struct", struct{ A int }{A: 1}, "{1}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			assert.NotPanics(t, func() { got = NormalizeValue(tc.in) })
			assert.Equal(t, tc.want, got)
		})
	}
}
