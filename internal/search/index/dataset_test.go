package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDataset_CleansHeadersAndCells(t *testing.T) {
	ds, err := ReadDataset(writeSample(t))
	require.NoError(t, err)

	assert.Equal(t, "name", ds.Columns[0])
	require.Len(t, ds.Records, 5)
	assert.Equal(t, "insecticida natural", ds.Records[0].Get("Description"))
	assert.Equal(t, 4, ds.Records[4].Row)
	assert.Equal(t, "", ds.Records[4].Get("Description"))
}

func TestParseDataset_RaggedAndDuplicateHeaders(t *testing.T) {
	in := " a ,a,,b\n1,2,3,4,5\nx\n"
	ds, err := parseDataset(strings.NewReader(in), ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "b"}, ds.Columns)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "4", ds.Records[0].Get("b"))
	assert.Equal(t, "x", ds.Records[1].Get("a"))
	assert.Equal(t, "", ds.Records[1].Get("b"))
	_, ok := ds.Records[1].Fields["a.1"]
	assert.True(t, ok, "short rows are padded")
}

func TestParseDataset_NonBreakingSpace(t *testing.T) {
	ds, err := parseDataset(strings.NewReader("name\n\u00a0Neem\u00a0 oil \n"), ',')
	require.NoError(t, err)
	assert.Equal(t, "Neem oil", ds.Records[0].Get("name"))
}

func TestParseDataset_MissingMarkers(t *testing.T) {
	tests := []struct {
		cell string
		want string
	}{
		{"NA", ""},
		{"N/A", ""},
		{"n/a", ""},
		{"#N/A", ""},
		{"<NA>", ""},
		{"nan", ""},
		{"NaN", ""},
		{"-nan", ""},
		{"null", ""},
		{"NULL", ""},
		{"None", ""},
		{" NA ", "NA"},
		{"Nan-based", "Nan-based"},
		{"none", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			in := "name,Description\nNeem,\"" + tt.cell + "\"\n"
			ds, err := parseDataset(strings.NewReader(in), ',')
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Records[0].Get("Description"))
		})
	}
}

func TestParseDataset_MissingMarkersSkippedInSearchText(t *testing.T) {
	in := "name,Description,Canonical SMILES\nNeem,NA,N/A\nBt,nan,\n"
	ds, err := parseDataset(strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)

	assert.Equal(t, "", ds.Records[0].Get("Canonical SMILES"))
	assert.Equal(t, "", ds.Records[1].Get("Description"))
	assert.Equal(t, "Name: Neem", SearchText(ds.Records[0], DefaultColumnsEN, DefaultColumnsES))
}

func TestParseDataset_Empty(t *testing.T) {
	for _, in := range []string{"", "name,Uses\n"} {
		_, err := parseDataset(strings.NewReader(in), ',')
		assert.ErrorIs(t, err, ErrEmptyDataset, "input %q", in)
	}
}

func TestReadDataset_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("name\tUses\nNeem\tcontrol, preventivo\n"), 0o644))

	ds, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "control, preventivo", ds.Records[0].Get("Uses"))
}

func TestReadDataset_Missing(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorContains(t, err, "cannot open dataset")
}
