package index

import (
	"strings"

	"github.com/agrobio/biobot/internal/search"
)

// DefaultColumnsEN are the English dataset columns folded into the search text.
// The name column is emitted separately as "Name: ...".
var DefaultColumnsEN = []string{
	search.ColDescription,
	search.ColPests,
	search.ColApplications,
	search.ColUses,
	search.ColEfficacy,
	search.ColCanonicalSMILES,
	search.ColIsomericSMILES,
	search.ColCitation,
}

// DefaultColumnsES are the Spanish dataset columns folded into the search text.
var DefaultColumnsES = []string{
	"Descripción",
	search.ColPestsES,
	search.ColApplicationsES,
	"Usos",
	"Eficacia y actividad",
}

// SearchText returns the text embedded for rec: its name, then every non-empty primary
// column in order, then every non-empty secondary column in order, one "label: value"
// line each.
func SearchText(rec search.Record, primary, secondary []string) string {
	parts := make([]string, 0, 1+len(primary)+len(secondary))
	if name := search.Normalize(rec.Get(search.ColName)); name != "" {
		parts = append(parts, "Name: "+name)
	}
	for _, cols := range [][]string{primary, secondary} {
		for _, col := range cols {
			if v := search.Normalize(rec.Get(col)); v != "" {
				parts = append(parts, col+": "+v)
			}
		}
	}
	return search.Normalize(strings.Join(parts, "\n"))
}

// NormalizeColumn strips byte-order marks and surrounding whitespace from a header.
func NormalizeColumn(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "\ufeff", ""))
}
