package index

import "math"

// NormalizeL2 returns a new vector normalized to unit L2 norm. A zero vector is copied
// unchanged.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	n := math.Sqrt(sum)
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := 1.0 / n
	for i := range v {
		out[i] = float32(float64(v[i]) * inv)
	}
	return out
}
