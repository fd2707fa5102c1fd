package search

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// listSeparator joins the elements of list-like cell values.
const listSeparator = "; "

// Normalize canonicalizes a string: non-breaking spaces become spaces, surrounding
// whitespace is trimmed and every run of two or more whitespace characters collapses
// into a single space. A lone newline is kept.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j-i >= 2 {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
		i = j
	}
	return b.String()
}

// NormalizeValue turns an arbitrary cell value into a normalized string. It never fails:
// nil and NaN become "", slices, arrays and sets are joined with "; ", anything else is
// formatted with fmt.Sprint.
func NormalizeValue(v any) string {
	return Normalize(stringify(v))
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, listSeparator)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return fmt.Sprint(x)
	case float32:
		if math.IsNaN(float64(x)) {
			return ""
		}
		return fmt.Sprint(x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	switch rv.Kind() {
	case reflect.Pointer:
		return stringify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, listSeparator)
	case reflect.Map:
		// Sets (map[T]struct{} or map[T]bool): keys in sorted order.
		parts := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			parts = append(parts, stringify(k.Interface()))
		}
		sort.Strings(parts)
		return strings.Join(parts, listSeparator)
	}
	return fmt.Sprint(v)
}
