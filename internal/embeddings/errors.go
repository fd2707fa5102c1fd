package embeddings

import "errors"

var (
	// ErrUnsupportedProvider is returned for an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported embeddings provider")

	// ErrInvalidModelID is returned when a model ID is not "<provider>:<model>".
	ErrInvalidModelID = errors.New("invalid embeddings model id")

	// ErrCountMismatch is returned when a backend answers with a different number of
	// vectors than texts sent.
	ErrCountMismatch = errors.New("embedding count mismatch")
)
