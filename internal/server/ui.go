package server

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrobio/biobot/internal/recommender"
	"github.com/agrobio/biobot/internal/search"
)

const (
	uiMinK = 1
	uiMaxK = 10

	emptyQueryWarning = "Por favor, escribe una descripción."
)

var uiTemplate = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>BioBot: asistente inteligente para biopesticidas</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; }
.card { white-space: pre-line; border-bottom: 1px solid #ccc; padding: 1rem 0; }
.warning { color: #8a6d3b; background: #fcf8e3; padding: .5rem; }
.error { color: #a94442; background: #f2dede; padding: .5rem; }
</style>
</head>
<body>
<h1>🤖 BioBot: asistente inteligente para biopesticidas</h1>
<p>Describe tu problema/plaga/cultivo (ES o EN). Ej.: <em>mildiu velloso en vid, temporada húmeda</em></p>
<form method="post" action="/ui">
<label for="query">Descripción del problema:</label>
<textarea id="query" name="query" rows="5">{{.Query}}</textarea>
<label for="k">Número de recomendaciones: <output id="kout">{{.K}}</output></label>
<input type="range" id="k" name="k" min="{{.MinK}}" max="{{.MaxK}}" value="{{.K}}" oninput="kout.value = this.value">
<button type="submit">Buscar</button>
</form>
{{with .Warning}}<p class="warning">{{.}}</p>{{end}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{range .Cards}}<div class="card">{{.}}</div>
{{end}}
</body>
</html>
`))

type uiPage struct {
	Query   string
	K       int
	MinK    int
	MaxK    int
	Warning string
	Error   string
	Cards   []string
}

// parseUIK reads the slider value, falling back to the default and clamping to the
// slider range.
func parseUIK(v string) int {
	k, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return recommender.DefaultK
	}
	return min(max(k, uiMinK), uiMaxK)
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	page := uiPage{K: recommender.DefaultK, MinK: uiMinK, MaxK: uiMaxK}

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		page.Query = r.PostForm.Get("query")
		page.K = parseUIK(r.PostForm.Get("k"))

		if strings.TrimSpace(page.Query) == "" {
			page.Warning = emptyQueryWarning
		} else {
			hits, err := s.rec.Search(r.Context(), page.Query, page.K)
			if err != nil {
				s.logger.Error("ui search failed", "err", err)
				page.Error = "No se pudo completar la búsqueda."
			}
			for _, h := range hits {
				page.Cards = append(page.Cards, search.FormatSpanish(h))
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := uiTemplate.Execute(w, page); err != nil {
		s.logger.Error("render ui", "err", err)
	}
}
