package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrobio/biobot/internal/embeddings"
	"github.com/agrobio/biobot/internal/embeddings/mock"
	"github.com/agrobio/biobot/internal/search"
	"github.com/agrobio/biobot/internal/search/index"
	"github.com/agrobio/biobot/internal/server"
)

const searchCSV = "name,Description,Uses,Efficacy & activity\n" +
	"Neem,insecticida natural,control de pulgones,alta\n" +
	"Bacillus thuringiensis,bacteria entomopatógena,control de orugas,N/A\n" +
	"Beauveria bassiana,hongo entomopatógeno,control de trips,media\n"

// buildTestIndex builds an index of searchCSV with a mock provider and returns its
// directory and an opener serving that provider.
func buildTestIndex(t *testing.T) (string, embeddings.Opener) {
	t.Helper()
	tmp := t.TempDir()
	data := filepath.Join(tmp, "biopesticides.csv")
	require.NoError(t, os.WriteFile(data, []byte(searchCSV), 0o644))

	prov := mock.NewEmbedder()
	dir := filepath.Join(tmp, "index")
	_, err := index.Build(context.Background(), prov, index.BuildOptions{DataPath: data, OutDir: dir})
	require.NoError(t, err)

	return dir, func(string) (embeddings.Provider, error) { return prov, nil }
}

func TestSearchIndex_JSON(t *testing.T) {
	dir, open := buildTestIndex(t)

	var out bytes.Buffer
	require.NoError(t, searchIndex(context.Background(), &out, dir, open, "pulgones en tomate", 3, true))

	assert.Contains(t, out.String(), `"Efficacy & activity":`)
	assert.NotContains(t, out.String(), `\u0026`)

	var resp server.RecommendResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "pulgones en tomate", resp.Query)
	require.Len(t, resp.Results, 3)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}

	byName := make(map[string]server.Result, len(resp.Results))
	for _, r := range resp.Results {
		assert.Len(t, r.Fields, len(search.OutputColumns))
		byName[r.Fields[search.ColName]] = r
	}
	assert.Equal(t, "alta", byName["Neem"].Fields[search.ColEfficacy])
	assert.Equal(t, "", byName["Bacillus thuringiensis"].Fields[search.ColEfficacy], "N/A reads as missing")
}

func TestSearchIndex_Text(t *testing.T) {
	dir, open := buildTestIndex(t)

	var out bytes.Buffer
	require.NoError(t, searchIndex(context.Background(), &out, dir, open, "trips en café", 2, false))

	assert.Contains(t, out.String(), `biobot search "trips en café"`)
	assert.Contains(t, out.String(), "Results (2 found):")
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n---\n")))
}

func TestSearchIndex_MissingIndex(t *testing.T) {
	_, open := buildTestIndex(t)

	var out bytes.Buffer
	err := searchIndex(context.Background(), &out, filepath.Join(t.TempDir(), "nope"), open, "pulgones", 3, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "biobot index")
	assert.Empty(t, out.String())
}
