package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Load reads an index from dir and checks that the metadata table and the vector matrix
// describe the same rows.
func Load(dir string) (*Index, error) {
	cfgPath := filepath.Join(dir, ConfigFile)
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read index config %s: %w", cfgPath, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("invalid index config JSON %s: %w", cfgPath, err)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("index config %s has no model", cfgPath)
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("invalid dim in index config: %d", cfg.Dim)
	}
	cfg.applyDefaults()

	records, err := loadRecords(filepath.Join(dir, cfg.MetaFile), cfg.MetaFormat, cfg.Columns)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("index %s has no records", dir)
	}
	if cfg.Rows != 0 && cfg.Rows != len(records) {
		return nil, fmt.Errorf("%w: config rows=%d metadata rows=%d", ErrRowMismatch, cfg.Rows, len(records))
	}
	vectors, err := loadVectors(filepath.Join(dir, cfg.VectorFile), len(records), cfg.Dim)
	if err != nil {
		return nil, err
	}
	cfg.Rows = len(records)

	return &Index{Config: cfg, Records: records, Vectors: vectors}, nil
}

func loadVectors(path string, nRows, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	if st.Size()%4 != 0 {
		return nil, fmt.Errorf("vector file size is not multiple of 4 bytes: %d", st.Size())
	}

	expected := int64(nRows) * int64(dim) * 4
	if expected != st.Size() {
		return nil, fmt.Errorf("%w: vector file size %d want %d (rows=%d dim=%d)", ErrRowMismatch, st.Size(), expected, nRows, dim)
	}

	out := make([]float32, nRows*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}
