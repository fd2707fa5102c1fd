package index

import "errors"

var (
	// ErrVectorLengthMismatch indicates two vectors have different dimensions.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")

	// ErrRowMismatch indicates the metadata table and the vector matrix are not aligned.
	ErrRowMismatch = errors.New("metadata rows and vector rows are not aligned")

	// ErrEmptyDataset is returned when the source dataset has no rows.
	ErrEmptyDataset = errors.New("dataset has no rows")

	// ErrUnknownMetaFormat is returned for a metadata format other than jsonl or sqlite.
	ErrUnknownMetaFormat = errors.New("unknown metadata format")

	// ErrInconsistentDim is returned when the provider answers with vectors of varying
	// dimension during one build.
	ErrInconsistentDim = errors.New("inconsistent embedding dimension")
)
