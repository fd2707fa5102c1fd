package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrobio/biobot/internal/recommender"
	"github.com/agrobio/biobot/internal/search"
)

type fakeSearcher struct {
	hits   []search.Hit
	err    error
	query  string
	k      int
	called int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]search.Hit, error) {
	f.called++
	f.query, f.k = query, k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeSearcher) Len() int { return len(f.hits) }

func sampleHits() []search.Hit {
	return []search.Hit{
		{
			Record: search.Record{Row: 0, Fields: map[string]string{
				search.ColName:     "Neem",
				search.ColPests:    "aphids",
				search.ColUses:     "control de pulgones",
				search.ColCitation: "Doe 2020",
				"internal":         "not exported",
			}},
			Similarity: 0.81, Bonus: 0.04, Score: 0.85,
		},
		{
			Record:     search.Record{Row: 3, Fields: map[string]string{search.ColName: "Beauveria"}},
			Similarity: 0.5, Score: 0.5,
		},
	}
}

func newTestServer(f *fakeSearcher, opts Options) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, logger, opts).Handler()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	rec := do(t, newTestServer(&fakeSearcher{}, Options{}), http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"message":"BioBot API online"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeSearcher{hits: sampleHits()}, Options{}), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","records":2}`, rec.Body.String())
}

func TestRecommend(t *testing.T) {
	f := &fakeSearcher{hits: sampleHits()}
	rec := do(t, newTestServer(f, Options{}), http.MethodPost, "/recommend", "application/json", `{"query":"pulgones en tomate"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, recommender.DefaultK, f.k)
	assert.Equal(t, "pulgones en tomate", f.query)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pulgones en tomate", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Neem", resp.Results[0].Fields[search.ColName])
	assert.Equal(t, "", resp.Results[0].Fields[search.ColDescription])
	assert.InDelta(t, 0.85, resp.Results[0].Score, 1e-12)
	assert.Len(t, resp.Results[0].Fields, len(search.OutputColumns))
	assert.NotContains(t, rec.Body.String(), "not exported")

	// output columns keep their order, score last
	body := rec.Body.String()
	assert.NotContains(t, body, `\u0026`)
	last := -1
	for _, col := range append(append([]string{}, search.OutputColumns...), "score") {
		i := strings.Index(body, `"`+col+`":`)
		require.Greater(t, i, last, "column %s out of order", col)
		last = i
	}
}

func TestResult_MarshalJSONKeepsLiteralHTML(t *testing.T) {
	r := NewResult(search.Hit{
		Record: search.Record{Fields: map[string]string{
			search.ColName:     "Neem <oil>",
			search.ColEfficacy: "alta & rápida",
		}},
		Score: 0.5,
	})
	b, err := r.MarshalJSON()
	require.NoError(t, err)

	assert.Contains(t, string(b), `"Efficacy & activity":"alta & rápida"`)
	assert.Contains(t, string(b), `"name":"Neem <oil>"`)
	assert.True(t, strings.HasSuffix(string(b), `"score":0.5}`))

	var back Result
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "alta & rápida", back.Fields[search.ColEfficacy])
}

func TestRecommend_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"query":`},
		{"empty query", `{"query":"   "}`},
		{"zero k", `{"query":"trips","k":0}`},
		{"negative k", `{"query":"trips","k":-2}`},
		{"k too large", `{"query":"trips","k":51}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSearcher{}
			rec := do(t, newTestServer(f, Options{}), http.MethodPost, "/recommend", "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			assert.Zero(t, f.called)
		})
	}
}

func TestRecommend_SearchErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrapped: %w", recommender.ErrInvalidK), http.StatusBadRequest},
		{fmt.Errorf("embed query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("backend down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := do(t, newTestServer(&fakeSearcher{err: tt.err}, Options{}), http.MethodPost, "/recommend", "application/json", `{"query":"trips","k":2}`)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.NotContains(t, rec.Body.String(), "backend down")
	}
}

func TestWhatsApp(t *testing.T) {
	f := &fakeSearcher{hits: sampleHits()}
	form := url.Values{"Body": {"pulgones en tomate"}, "From": {"whatsapp:+5215555555555"}}
	rec := do(t, newTestServer(f, Options{}), http.MethodPost, "/whatsapp", "application/x-www-form-urlencoded", form.Encode())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<?xml"))
	assert.Equal(t, whatsAppK, f.k)

	var resp twiml
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, search.WhatsAppReply(sampleHits()), resp.Message)
}

func TestWhatsApp_EmptyBodyAndErrors(t *testing.T) {
	f := &fakeSearcher{hits: sampleHits()}
	rec := do(t, newTestServer(f, Options{}), http.MethodPost, "/whatsapp", "application/x-www-form-urlencoded", "Body=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, f.called)
	assert.Contains(t, rec.Body.String(), emptyQueryWarning)

	failing := &fakeSearcher{err: errors.New("backend down")}
	rec = do(t, newTestServer(failing, Options{}), http.MethodPost, "/whatsapp", "application/x-www-form-urlencoded", "Body=trips")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<Message>")
	assert.NotContains(t, rec.Body.String(), "backend down")
}

func TestUI(t *testing.T) {
	h := newTestServer(&fakeSearcher{hits: sampleHits()}, Options{})

	rec := do(t, h, http.MethodGet, "/ui", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="query"`)
	assert.Contains(t, rec.Body.String(), `value="3"`)

	rec = do(t, h, http.MethodPost, "/ui", "application/x-www-form-urlencoded", "query=&k=3")
	assert.Contains(t, rec.Body.String(), emptyQueryWarning)

	f := &fakeSearcher{hits: sampleHits()}
	rec = do(t, newTestServer(f, Options{}), http.MethodPost, "/ui", "application/x-www-form-urlencoded", "query=pulgones&k=99")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uiMaxK, f.k)
	assert.Contains(t, rec.Body.String(), "Neem")
	assert.Contains(t, rec.Body.String(), "(score: 0.85)")
}

func TestParseUIK(t *testing.T) {
	assert.Equal(t, recommender.DefaultK, parseUIK(""))
	assert.Equal(t, recommender.DefaultK, parseUIK("three"))
	assert.Equal(t, 1, parseUIK("0"))
	assert.Equal(t, 7, parseUIK(" 7 "))
	assert.Equal(t, 10, parseUIK("11"))
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(&fakeSearcher{}, Options{}), http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
