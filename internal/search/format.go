package search

import (
	"fmt"
	"strings"
)

const (
	placeholder = "—"

	// WhatsAppLimit is the maximum reply length, in characters, sent back to the
	// chat webhook.
	WhatsAppLimit = 1500

	whatsAppHeader     = "🔎 Recomendaciones de BioBot basadas en tu descripción:\n\n"
	whatsAppDisclaimer = "⚠️ Uso informativo; verifica regulaciones y etiqueta del producto en tu país."
)

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// FormatSpanish renders a hit as the Spanish markdown card shown by the form and CLI.
func FormatSpanish(h Hit) string {
	r := h.Record
	return fmt.Sprintf("◾ **%s** (score: %.2f)\n"+
		"• Descripción: %s\n"+
		"• Plagas controladas (ejemplos): %s\n"+
		"• Aplicaciones (ejemplos): %s\n"+
		"• Usos: %s\n"+
		"• Eficacia y actividad: %s\n"+
		"• Cita: %s",
		r.Get(ColName), h.Score,
		orPlaceholder(r.Get(ColDescription)),
		orPlaceholder(r.Get(ColPests)),
		orPlaceholder(r.Get(ColApplications)),
		orPlaceholder(r.Get(ColUses)),
		orPlaceholder(r.Get(ColEfficacy)),
		orPlaceholder(r.Get(ColCitation)),
	)
}

// WhatsAppReply renders hits as a single chat message, truncated to WhatsAppLimit
// characters.
func WhatsAppReply(hits []Hit) string {
	var b strings.Builder
	b.WriteString(whatsAppHeader)
	for _, h := range hits {
		r := h.Record
		fmt.Fprintf(&b, "• %s\n   Plagas: %s\n   Aplicaciones: %s\n   Usos: %s\n\n",
			r.Get(ColName),
			orPlaceholder(r.Get(ColPests)),
			orPlaceholder(r.Get(ColApplications)),
			orPlaceholder(r.Get(ColUses)),
		)
	}
	b.WriteString(whatsAppDisclaimer)
	return truncateRunes(b.String(), WhatsAppLimit)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
