package reid

import (
	"math"
)

// Epsilon guards the normalisation divisions against empty vectors
const Epsilon = 1e-6

// NormalizeVec normalizes the input float32 slice to unit length and returns
// a new slice. If the input vector has zero magnitude, it returns a zero
// vector of the same length
func NormalizeVec(v []float32) []float32 {

	out := make([]float32, len(v))
	norm := L2Norm(v)

	if norm == 0 {
		return out
	}

	for i, x := range v {
		out[i] = x / norm
	}

	return out
}

// NormalizeVecEps scales v in place by 1/(||v||+Epsilon).  Unlike
// NormalizeVec a zero vector stays zero and the result is never NaN
func NormalizeVecEps(v []float32) {

	norm := L2Norm(v) + Epsilon

	for i := range v {
		v[i] /= norm
	}
}

// L2Norm returns the Euclidean length of v
func L2Norm(v []float32) float32 {

	var sumSquares float64

	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}

	return float32(math.Sqrt(sumSquares))
}

// CosineSimilarity returns the cosine of the angle between vectors a and b.
// Both vectors are expected to be L2 normalized so this is their dot
// product.  Vectors of differing length have no similarity
func CosineSimilarity(a, b []float32) float32 {

	if len(a) != len(b) {
		return 0
	}

	var dot float32

	for i := range a {
		dot += a[i] * b[i]
	}

	return dot
}

// CosineDistance returns 1 - cosine similarity.  For L2-normalized vectors
// this is in [0,2] and small values mean very similar
func CosineDistance(a, b []float32) float32 {
	return 1 - CosineSimilarity(a, b)
}

// EuclideanDistance returns the L2 distance between two vectors.
// Lower means "more similar" when your features are L2-normalized.
func EuclideanDistance(a, b []float32) float32 {

	var sum float32

	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return float32(math.Sqrt(float64(sum)))
}
