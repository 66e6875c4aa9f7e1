// Package distance provides the float32 vector kernels used for
// embedding queries, with SIMD acceleration.
//
// Dot products, cosine similarity and elementwise add/subtract delegate
// to the vek32 assembly routines (AVX2 on x86-64, NEON on ARM64). Norms
// accumulate in float64 before the square root so wide vectors keep
// their precision.
//
// # Usage
//
//	sim := distance.CosineSimilarity(a, b)
//	dot := distance.Dot(a, b)
//	ok := distance.NormalizeL2InPlace(vec)
package distance
