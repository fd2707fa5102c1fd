package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/agrobio/biobot/internal/embeddings"
)

// Build defaults.
const (
	DefaultBatchSize = 32
	DefaultWorkers   = 4
)

// BuildOptions controls index building.
type BuildOptions struct {
	DataPath string
	OutDir   string
	// ColsEN and ColsES default to DefaultColumnsEN and DefaultColumnsES when nil.
	ColsEN []string
	ColsES []string

	BatchSize  int
	Workers    int
	MetaFormat string
	Logger     *slog.Logger
}

func (o *BuildOptions) applyDefaults() {
	if o.ColsEN == nil {
		o.ColsEN = DefaultColumnsEN
	}
	if o.ColsES == nil {
		o.ColsES = DefaultColumnsES
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.MetaFormat == "" {
		o.MetaFormat = MetaJSONL
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Build reads the dataset at opts.DataPath, embeds one search text per row with prov and
// writes the index to opts.OutDir. Any failure aborts the build; nothing is written
// unless every row was embedded.
//
// Build writes in place. Use BuildAndInstall to replace a live index.
func Build(ctx context.Context, prov embeddings.Provider, opts BuildOptions) (*Index, error) {
	if opts.DataPath == "" {
		return nil, fmt.Errorf("data path is required")
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}
	opts.applyDefaults()
	if opts.MetaFormat != MetaJSONL && opts.MetaFormat != MetaSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetaFormat, opts.MetaFormat)
	}
	logger := opts.Logger.With("component", "index-builder")

	ds, err := ReadDataset(opts.DataPath)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "path", opts.DataPath, "rows", len(ds.Records), "columns", len(ds.Columns))

	texts := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		texts[i] = SearchText(rec, opts.ColsEN, opts.ColsES)
	}

	start := time.Now()
	embs, err := embedAll(ctx, prov, texts, opts.BatchSize, opts.Workers)
	if err != nil {
		return nil, err
	}

	dim := len(embs[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding provider returned an empty vector")
	}
	vectors := make([]float32, 0, len(embs)*dim)
	for i, e := range embs {
		if len(e) != dim {
			return nil, fmt.Errorf("%w: row %d has dim %d want %d", ErrInconsistentDim, i, len(e), dim)
		}
		vectors = append(vectors, NormalizeL2(e)...)
	}
	logger.Info("rows embedded", "rows", len(embs), "dim", dim, "model", prov.ModelID(), "elapsed", time.Since(start))

	cfg := Config{
		Model:      prov.ModelID(),
		ColsEN:     opts.ColsEN,
		ColsES:     opts.ColsES,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Dim:        dim,
		Rows:       len(ds.Records),
		Columns:    ds.Columns,
		MetaFormat: opts.MetaFormat,
	}
	cfg.applyDefaults()

	if err := Write(opts.OutDir, cfg, ds.Records, vectors); err != nil {
		return nil, err
	}
	logger.Info("index written", "dir", opts.OutDir, "meta_format", cfg.MetaFormat)

	return &Index{Config: cfg, Records: ds.Records, Vectors: vectors}, nil
}

// embedAll embeds texts in batches of batchSize on a pool of workers goroutines and
// returns the vectors in input order. The first failing batch cancels the rest.
func embedAll(ctx context.Context, prov embeddings.Provider, texts []string, batchSize, workers int) ([][]float32, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("cannot create embedding pool: %w", err)
	}
	defer pool.Release()

	out := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			vecs, err := prov.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				fail(fmt.Errorf("embed rows %d-%d: %w", start, end-1, err))
				return
			}
			if len(vecs) != end-start {
				fail(fmt.Errorf("%w: rows %d-%d sent %d texts, got %d vectors", embeddings.ErrCountMismatch, start, end-1, end-start, len(vecs)))
				return
			}
			copy(out[start:end], vecs)
		})
		if submitErr != nil {
			wg.Done()
			fail(fmt.Errorf("cannot submit embedding batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildAndInstall builds into a temporary sibling of opts.OutDir while holding the build
// lock, then swaps it into place. A failed build leaves the previous index untouched.
func BuildAndInstall(ctx context.Context, prov embeddings.Provider, opts BuildOptions, lockTimeout time.Duration) (*Index, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}
	outDir := filepath.Clean(opts.OutDir)

	unlock, err := AcquireBuildLock(ctx, outDir, lockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(outDir), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create parent of %s: %w", outDir, err)
	}
	tmp, err := os.MkdirTemp(filepath.Dir(outDir), "."+filepath.Base(outDir)+".tmp-")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp index dir: %w", err)
	}

	opts.OutDir = tmp
	idx, err := Build(ctx, prov, opts)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	if err := AtomicSwap(tmp, outDir, opts.Logger); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, fmt.Errorf("cannot install index into %s: %w", outDir, err)
	}
	return idx, nil
}

// Summary is a one-line description of an index for CLI output.
func (idx *Index) Summary() string {
	return fmt.Sprintf("%d records, dim %d, model %s, %s metadata", len(idx.Records), idx.Config.Dim, idx.Config.Model, idx.Config.MetaFormat)
}
