package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
)

// DefaultDim is the vector dimension used when none is given.
const DefaultDim = 64

// Embedder is a test double for embeddings.Provider. Vectors are derived from an FNV
// hash of the text, so equal texts always embed to equal vectors.
type Embedder struct {
	// Model is reported as "mock:<Model>".
	Model string
	// Dimension of generated vectors; DefaultDim when zero.
	Dimension int

	// EmbedFunc, if set, replaces the default per-text behavior.
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	// Err, if set, is returned by every call.
	Err error

	calls atomic.Int64
	texts atomic.Int64
}

// NewEmbedder creates a mock embedder with the default deterministic behavior.
func NewEmbedder() *Embedder {
	return &Embedder{Model: "test", Dimension: DefaultDim}
}

func (m *Embedder) ModelID() string { return "mock:" + m.Model }

func (m *Embedder) Dim() int {
	if m.Dimension == 0 {
		return DefaultDim
	}
	return m.Dimension
}

func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	m.texts.Add(1)
	return m.one(ctx, text)
}

func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	m.texts.Add(int64(len(texts)))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.one(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Embedder) one(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return Vector(text, m.Dim()), nil
}

// CallCount returns the number of Embed/EmbedBatch calls.
func (m *Embedder) CallCount() int { return int(m.calls.Load()) }

// TextCount returns the number of texts embedded.
func (m *Embedder) TextCount() int { return int(m.texts.Load()) }

// Vector returns the deterministic unit vector for text.
func Vector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, dim)
	var sum float64
	for i := range v {
		seed = seed*1664525 + 1013904223 // LCG constants
		v[i] = float32(seed%2000)/1000.0 - 1
		sum += float64(v[i]) * float64(v[i])
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}
