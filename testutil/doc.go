// Package testutil provides testing utilities for wordvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic vocabularies and
// vectors and for rendering them in the on-disk collection layouts.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vectors := rng.UnitVectors(1000, 128)
//	words, vectors := rng.Corpus(1000, 128)
//
// # Collection Rendering
//
//	data := testutil.TextCollection(words, vectors)
//	data = testutil.PackedCollection(words, vectors)
package testutil
