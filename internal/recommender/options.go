package recommender

import (
	"log/slog"

	"github.com/agrobio/biobot/internal/search/index"
)

// Option configures a Recommender.
type Option func(*Recommender) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithNeighborIndex replaces the exact flat index built from the loaded vectors.
// The index must cover the same rows in the same order.
func WithNeighborIndex(ni index.NeighborIndex) Option {
	return func(r *Recommender) error {
		r.neighbors = ni
		return nil
	}
}
