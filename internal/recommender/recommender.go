// Package recommender ranks biopesticide records for a free-text query: vector
// similarity over the built index, rescored with a keyword overlap bonus.
package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrobio/biobot/internal/embeddings"
	"github.com/agrobio/biobot/internal/search"
	"github.com/agrobio/biobot/internal/search/index"
)

// DefaultK is the number of results returned when the caller does not ask for a count.
const DefaultK = 3

// Recommender answers queries against one loaded index. It is read-only after
// construction and safe for concurrent use.
type Recommender struct {
	cfg       index.Config
	records   []search.Record
	provider  embeddings.Provider
	neighbors index.NeighborIndex
	logger    *slog.Logger
}

// New returns a Recommender over idx that embeds queries with provider. The provider
// must be the model recorded in the index config.
func New(idx *index.Index, provider embeddings.Provider, opts ...Option) (*Recommender, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: no index", ErrArtifacts)
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	cfg := idx.Config
	if len(idx.Records) == 0 {
		return nil, fmt.Errorf("%w: index has no records", ErrArtifacts)
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dim %d", ErrArtifacts, cfg.Dim)
	}
	if len(idx.Vectors) != len(idx.Records)*cfg.Dim {
		return nil, fmt.Errorf("%w: %w: %d records, %d floats, dim %d",
			ErrArtifacts, index.ErrRowMismatch, len(idx.Records), len(idx.Vectors), cfg.Dim)
	}
	if got := provider.ModelID(); got != cfg.Model {
		return nil, fmt.Errorf("%w: provider %q, index %q", ErrModelMismatch, got, cfg.Model)
	}

	r := &Recommender{
		cfg:      cfg,
		records:  idx.Records,
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "recommender")

	if r.neighbors == nil {
		flat, err := index.NewFlatIndex(idx.Vectors, cfg.Dim)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArtifacts, err)
		}
		r.neighbors = flat
	}
	if r.neighbors.Len() != len(r.records) || r.neighbors.Dim() != cfg.Dim {
		return nil, fmt.Errorf("%w: %w: neighbor index has %d rows of dim %d, metadata has %d rows of dim %d",
			ErrArtifacts, index.ErrRowMismatch, r.neighbors.Len(), r.neighbors.Dim(), len(r.records), cfg.Dim)
	}
	return r, nil
}

// Open loads the index in dir and obtains the provider for its recorded model from
// open, typically an embeddings.Cache's Get.
func Open(dir string, open embeddings.Opener, opts ...Option) (*Recommender, error) {
	idx, err := index.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifacts, err)
	}
	provider, err := open(idx.Config.Model)
	if err != nil {
		return nil, fmt.Errorf("cannot open embeddings provider %s: %w", idx.Config.Model, err)
	}
	return New(idx, provider, opts...)
}

// Config returns the config of the loaded index.
func (r *Recommender) Config() index.Config { return r.cfg }

// Len returns the number of indexed records.
func (r *Recommender) Len() int { return len(r.records) }

// Embed embeds text with the index model and returns the unit-length vector.
func (r *Recommender) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := r.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(v) != r.cfg.Dim {
		return nil, fmt.Errorf("%w: query dim %d index dim %d", index.ErrVectorLengthMismatch, len(v), r.cfg.Dim)
	}
	return index.NormalizeL2(v), nil
}

// Search returns up to k records for query, best first. Candidates are the k nearest
// vectors; each gets its keyword bonus added before the final ordering, so the bonus
// reorders the window but never brings in records from outside it.
func (r *Recommender) Search(ctx context.Context, query string, k int) ([]search.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	start := time.Now()

	vec, err := r.Embed(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	neighbors, err := r.neighbors.Query(vec, k)
	if err != nil {
		r.logger.Error("error querying neighbor index", "err", err)
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits := make([]search.Hit, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Row < 0 || n.Row >= len(r.records) {
			return nil, fmt.Errorf("%w: %w: neighbor row %d out of range", ErrArtifacts, index.ErrRowMismatch, n.Row)
		}
		rec := r.records[n.Row]
		bonus := search.KeywordBonus(query, rec)
		hits = append(hits, search.Hit{
			Record:     rec,
			Similarity: n.Similarity,
			Bonus:      bonus,
			Score:      n.Similarity + bonus,
		})
	}
	search.SortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}

	r.logger.Debug("search complete", "k", k, "hits", len(hits), "elapsed", time.Since(start))
	return hits, nil
}
