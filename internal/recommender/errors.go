package recommender

import "errors"

var (
	// ErrInvalidK is returned when a search asks for fewer than one result.
	ErrInvalidK = errors.New("k must be a positive integer")

	// ErrModelMismatch is returned when the query provider is not the model the index
	// was built with.
	ErrModelMismatch = errors.New("embedding model does not match index")

	// ErrArtifacts wraps any inconsistency found in loaded index artifacts.
	ErrArtifacts = errors.New("index artifacts are inconsistent")

	// ErrProviderRequired is returned when no embeddings provider is given.
	ErrProviderRequired = errors.New("embeddings provider is required")
)
