package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrobio/biobot/internal/search"
)

// Write writes index artifacts to dir: config.json, the vector matrix and the metadata
// table. cfg.Rows and cfg.Dim must describe records and vectors.
func Write(dir string, cfg Config, records []search.Record, vectors []float32) error {
	if cfg.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", cfg.Dim)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records to write")
	}
	if len(vectors) != len(records)*cfg.Dim {
		return fmt.Errorf("%w: got %d floats want %d", ErrVectorLengthMismatch, len(vectors), len(records)*cfg.Dim)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model identifier is required")
	}
	cfg.applyDefaults()
	cfg.Rows = len(records)
	if cfg.CreatedAt == "" {
		cfg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	// metadata first, config last: a directory without config.json never loads
	if err := writeRecords(filepath.Join(dir, cfg.MetaFile), cfg.MetaFormat, cfg.Columns, records); err != nil {
		return err
	}

	vf, err := os.Create(filepath.Join(dir, cfg.VectorFile))
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	if err := binary.Write(vf, binary.LittleEndian, vectors); err != nil {
		_ = vf.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	if err := vf.Close(); err != nil {
		return err
	}

	cb, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), cb, 0o644); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}
