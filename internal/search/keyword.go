package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// KeywordWeight is the bonus contributed by each distinct shared token.
	KeywordWeight = 0.02
	// KeywordCap bounds the total keyword bonus.
	KeywordCap = 0.2
)

// KeywordFields are the record fields matched against query tokens.
var KeywordFields = []string{
	ColPestsES,
	ColApplicationsES,
	ColUses,
	ColDescription,
	ColEfficacy,
}

// KeywordBonus returns the lexical overlap bonus of rec for query, in [0, KeywordCap].
func KeywordBonus(query string, rec Record) float64 {
	q := TokenSet(query)
	if len(q) == 0 {
		return 0
	}
	doc := TokenSet(keywordText(rec))
	if len(doc) == 0 {
		return 0
	}

	shared := 0
	for tok := range q {
		if _, ok := doc[tok]; ok {
			shared++
		}
	}
	return min(KeywordCap, float64(shared)*KeywordWeight)
}

func keywordText(rec Record) string {
	parts := make([]string, 0, len(KeywordFields))
	for _, f := range KeywordFields {
		if v := rec.Get(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]struct{} {
	toks := Tokenize(s)
	out := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		out[t] = struct{}{}
	}
	return out
}

// Tokenize lower-cases s, strips accents and returns the maximal runs of ASCII letters
// and digits. Every other character is a separator.
func Tokenize(s string) []string {
	s = foldAccents(strings.ToLower(s))

	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isTokenByte(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func isTokenByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// foldAccents decomposes s and drops combining marks, so "plagas controladás" and
// "plagas controladas" tokenize the same. Letters with no decomposition (ß, ø) are
// left as-is and act as separators.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
