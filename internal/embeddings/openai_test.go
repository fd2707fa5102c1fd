package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		seen = append(seen, req.Input...)
		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{float32(i + 1), 0.5}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestOpenAI_EmbedBatch(t *testing.T) {
	srv, seen := newOpenAIServer(t)

	p, err := NewOpenAI(&Config{Model: "text-embedding-3-small", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai:text-embedding-3-small", p.ModelID())

	vecs, err := p.EmbedBatch(context.Background(), []string{"control de\npulgones", "trips"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{2, 0.5}, vecs[1])
	assert.Equal(t, 2, p.Dim())
	assert.NotContains(t, strings.Join(*seen, "|"), "\n")
}

func TestOpenAI_EmptyBatch(t *testing.T) {
	p, err := NewOpenAI(&Config{Model: "m", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	vecs, err := p.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
