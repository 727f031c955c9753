// Package vector implements the float32 vector math used for
// embedding similarity scoring.
package vector

import (
	"errors"
	"math"
)

// ErrLengthMismatch is returned when two vectors of different
// dimensions are compared. Mismatched inputs are a programmer error
// and are never silently truncated.
var ErrLengthMismatch = errors.New("vector length mismatch")

// Cosine computes the cosine similarity between two equal-length
// vectors. The result is in [-1, 1]. If either vector has zero
// magnitude the similarity is defined as 0, not NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// Dot computes the dot product of two equal-length vectors.
// For L2-normalized inputs this equals their cosine similarity.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot, nil
}

// NormalizeL2 returns a copy of v scaled to unit Euclidean norm.
// A zero vector is returned unchanged.
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
	inv := float32(1.0 / n)
	for i := range v {
		out[i] = v[i] * inv
	}
	return out
}
