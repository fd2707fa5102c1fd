package server

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agrobio/biobot/internal/recommender"
	"github.com/agrobio/biobot/internal/search"
)

const maxBodyBytes = 1 << 20

// RecommendRequest is the JSON body for POST /recommend.
type RecommendRequest struct {
	Query string `json:"query"`
	K     *int   `json:"k,omitempty"`
}

// RecommendResponse is the JSON response for POST /recommend.
type RecommendResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Result is one recommendation: the output columns of a record plus its score.
type Result struct {
	Fields map[string]string
	Score  float64
}

// MarshalJSON writes the output columns in their fixed order, then "score".
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, col := range search.OutputColumns {
		k, err := marshalRaw(col)
		if err != nil {
			return nil, err
		}
		v, err := marshalRaw(r.Fields[col])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		buf.WriteByte(',')
	}
	score, err := json.Marshal(r.Score)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"score":`)
	buf.Write(score)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without HTML escaping, so "&" in column names stays literal.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Fields = make(map[string]string, len(search.OutputColumns))
	for k, v := range raw {
		if k == "score" {
			if err := json.Unmarshal(v, &r.Score); err != nil {
				return err
			}
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		r.Fields[k] = s
	}
	return nil
}

// NewResult projects a hit onto the output columns.
func NewResult(h search.Hit) Result {
	fields := make(map[string]string, len(search.OutputColumns))
	for _, col := range search.OutputColumns {
		fields[col] = h.Record.Get(col)
	}
	return Result{Fields: fields, Score: h.Score}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// searchStatus maps a Search error to an HTTP status.
func searchStatus(err error) int {
	switch {
	case errors.Is(err, recommender.ErrInvalidK):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "BioBot API online"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.rec.Len()})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	k := recommender.DefaultK
	if req.K != nil {
		k = *req.K
	}
	if k <= 0 || k > s.opts.MaxK {
		writeError(w, http.StatusBadRequest, "k must be between 1 and "+strconv.Itoa(s.opts.MaxK))
		return
	}

	hits, err := s.rec.Search(r.Context(), req.Query, k)
	if err != nil {
		s.logger.Error("recommend failed", "err", err)
		status := searchStatus(err)
		writeError(w, status, http.StatusText(status))
		return
	}

	out := RecommendResponse{Query: req.Query, Results: make([]Result, 0, len(hits))}
	for _, h := range hits {
		out.Results = append(out.Results, NewResult(h))
	}
	writeJSON(w, http.StatusOK, out)
}

// twiml is a Twilio Messaging response with a single message.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

const whatsAppK = 3

func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	body := strings.TrimSpace(r.PostForm.Get("Body"))

	var reply string
	if body == "" {
		reply = emptyQueryWarning
	} else {
		hits, err := s.rec.Search(r.Context(), body, whatsAppK)
		if err != nil {
			s.logger.Error("whatsapp search failed", "err", err)
			reply = "Lo sentimos, no pudimos procesar tu consulta. Intenta de nuevo más tarde."
		} else {
			reply = search.WhatsAppReply(hits)
		}
	}

	out, err := xml.Marshal(twiml{Message: reply})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
