package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"
)

// Neighbor is one nearest-neighbor match: a row of the vector matrix and its cosine
// similarity to the query.
type Neighbor struct {
	Row        int
	Similarity float64
}

// NeighborIndex answers k-nearest-neighbor queries over a fixed vector set. It is
// read-only after construction and safe for concurrent queries.
type NeighborIndex interface {
	Len() int
	Dim() int
	Query(query []float32, k int) ([]Neighbor, error)
}

// FlatIndex is an exact cosine-similarity index that scans every row. For unit vectors
// the score equals the inner product.
type FlatIndex struct {
	dim  int
	vecs []search.Float32s
	mags []float32
}

var _ NeighborIndex = (*FlatIndex)(nil)

// NewFlatIndex builds a FlatIndex over a row-major matrix with dim columns.
func NewFlatIndex(vectors []float32, dim int) (*FlatIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dim: %d", dim)
	}
	if len(vectors)%dim != 0 {
		return nil, fmt.Errorf("%w: %d floats is not a multiple of dim %d", ErrVectorLengthMismatch, len(vectors), dim)
	}
	n := len(vectors) / dim
	f := &FlatIndex{
		dim:  dim,
		vecs: make([]search.Float32s, n),
		mags: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		v := search.Float32s(vectors[i*dim : (i+1)*dim])
		f.vecs[i] = v
		f.mags[i] = v.Magnitude()
	}
	return f, nil
}

// Len returns the number of indexed rows.
func (f *FlatIndex) Len() int { return len(f.vecs) }

// Dim returns the vector dimension.
func (f *FlatIndex) Dim() int { return f.dim }

// Query returns up to k rows ordered by decreasing similarity, ties broken by row.
// Rows with zero magnitude never match; a zero query matches nothing.
func (f *FlatIndex) Query(query []float32, k int) ([]Neighbor, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query dim %d index dim %d", ErrVectorLengthMismatch, len(query), f.dim)
	}
	if k <= 0 || len(f.vecs) == 0 {
		return nil, nil
	}
	q := search.Float32s(query)
	if q.Magnitude() == 0 {
		return nil, nil
	}

	out := make([]Neighbor, 0, len(f.vecs))
	for i, v := range f.vecs {
		if f.mags[i] == 0 {
			continue
		}
		sim := 1 - float64(q.CosineDistance(v))
		if math.IsNaN(sim) {
			continue
		}
		out = append(out, Neighbor{Row: i, Similarity: sim})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Similarity == out[b].Similarity {
			return out[a].Row < out[b].Row
		}
		return out[a].Similarity > out[b].Similarity
	})
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}
