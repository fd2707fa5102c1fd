package index

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrobio/biobot/internal/search"
)

func sampleRecords() ([]string, []search.Record) {
	cols := []string{"name", "Uses"}
	return cols, []search.Record{
		{Row: 0, Fields: map[string]string{"name": "a", "Uses": "control de \"pulgones\""}},
		{Row: 1, Fields: map[string]string{"name": "b", "Uses": ""}},
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	for _, format := range []string{MetaJSONL, MetaSQLite} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			cols, records := sampleRecords()
			cfg := Config{Model: "mock:test", ColsEN: []string{"Uses"}, ColsES: []string{}, Dim: 2, Columns: cols, MetaFormat: format}
			require.NoError(t, Write(dir, cfg, records, []float32{1, 0, 0, 1}))

			idx, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, "mock:test", idx.Config.Model)
			assert.Equal(t, []string{"Uses"}, idx.Config.ColsEN)
			assert.Equal(t, 2, idx.Config.Rows)
			assert.Equal(t, CurrentVersion, idx.Config.IndexVersion)
			assert.Equal(t, metaFileFor(format), idx.Config.MetaFile)
			assert.Equal(t, records, idx.Records)
			assert.Equal(t, []float32{0, 1}, idx.Vector(1))
		})
	}
}

func TestWrite_Validation(t *testing.T) {
	cols, records := sampleRecords()
	dir := t.TempDir()

	err := Write(dir, Config{Model: "m", Dim: 2, Columns: cols}, records, []float32{1, 0, 0})
	assert.ErrorIs(t, err, ErrVectorLengthMismatch)

	err = Write(dir, Config{Dim: 2, Columns: cols}, records, []float32{1, 0, 0, 1})
	assert.ErrorContains(t, err, "model")

	err = Write(dir, Config{Model: "m", Dim: 2, Columns: cols}, nil, nil)
	assert.Error(t, err)

	err = Write(dir, Config{Model: "m", Dim: 2, Columns: cols, MetaFormat: "parquet"}, records, []float32{1, 0, 0, 1})
	assert.ErrorIs(t, err, ErrUnknownMetaFormat)
	assert.NoFileExists(t, filepath.Join(dir, ConfigFile))
}

func TestLoad_VectorRowMismatch(t *testing.T) {
	dir := t.TempDir()
	cols, records := sampleRecords()
	require.NoError(t, Write(dir, Config{Model: "m", Dim: 2, Columns: cols}, records, []float32{1, 0, 0, 1}))

	f, err := os.Create(filepath.Join(dir, VectorFile))
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.LittleEndian, []float32{1, 0}))
	require.NoError(t, f.Close())

	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrRowMismatch)
}

func TestLoad_MetadataRowMismatch(t *testing.T) {
	dir := t.TempDir()
	cols, records := sampleRecords()
	require.NoError(t, Write(dir, Config{Model: "m", Dim: 2, Columns: cols}, records, []float32{1, 0, 0, 1}))

	// drop the last metadata row
	path := filepath.Join(dir, JSONLFile)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(b)
	require.NoError(t, os.WriteFile(path, append(lines[0], '\n'), 0o644))

	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrRowMismatch)
}

func TestLoad_MissingConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "cannot read index config")
}

func splitLines(b []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == '\n' {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}
