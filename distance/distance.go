package distance

import (
	"math"
	"slices"

	"github.com/viterin/vek/vek32"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// CosineSimilarity calculates the cosine of the angle between two vectors.
// Assumes vectors are the same length and neither has zero norm.
func CosineSimilarity(a, b []float32) float32 {
	return vek32.CosineSimilarity(a, b)
}

// AddInPlace accumulates b into a elementwise.
// Assumes vectors are the same length (caller's responsibility).
func AddInPlace(a, b []float32) {
	vek32.Add_Inplace(a, b)
}

// SubInPlace subtracts b from a elementwise.
// Assumes vectors are the same length (caller's responsibility).
func SubInPlace(a, b []float32) {
	vek32.Sub_Inplace(a, b)
}

// Norm computes the L2 norm of v. Accumulation happens in float64 so wide
// vectors do not lose precision before the square root.
func Norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v is empty or has no positive finite norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	n := Norm(v)
	// A NaN norm fails this test too.
	if !(n > 0) || math.IsInf(float64(n), 1) {
		return false
	}
	vek32.MulNumber_Inplace(v, 1/n)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src is empty or has no positive finite norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
