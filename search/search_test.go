package search

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/wordvec"
	"github.com/hupe1980/wordvec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *wordvec.Store {
	t.Helper()

	st, err := wordvec.New(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)
	require.NoError(t, err)

	return st
}

func TestNearest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("RankedByScore", func(t *testing.T) {
		matches, err := Nearest(ctx, st, []float32{1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		assert.Equal(t, "a", matches[0].Word)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.Equal(t, "c", matches[1].Word)
		assert.InDelta(t, math.Sqrt2/2, matches[1].Score, 1e-6)
		assert.Equal(t, "b", matches[2].Word)
		assert.InDelta(t, 0.0, matches[2].Score, 1e-6)
	})

	t.Run("KSmallerThanStore", func(t *testing.T) {
		matches, err := Nearest(ctx, st, []float32{1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "a", matches[0].Word)
	})

	t.Run("KLargerThanStore", func(t *testing.T) {
		matches, err := Nearest(ctx, st, []float32{1, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, matches, 3)
	})

	t.Run("InvalidK", func(t *testing.T) {
		_, err := Nearest(ctx, st, []float32{1, 0}, 0)
		assert.ErrorIs(t, err, ErrInvalidK)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Nearest(ctx, st, []float32{1, 0, 0}, 1)

		var de *DimensionError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 2, de.Expected)
		assert.Equal(t, 3, de.Actual)
	})

	t.Run("ZeroQuery", func(t *testing.T) {
		_, err := Nearest(ctx, st, []float32{0, 0}, 1)
		assert.ErrorIs(t, err, ErrZeroNormQuery)
	})

	t.Run("Subset", func(t *testing.T) {
		matches, err := Nearest(ctx, st, []float32{1, 0}, 3, func(o *Options) {
			o.Subset = roaring.BitmapOf(1, 2)
		})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "c", matches[0].Word)
		assert.Equal(t, "b", matches[1].Word)
	})

	t.Run("Exclude", func(t *testing.T) {
		matches, err := Nearest(ctx, st, []float32{1, 0}, 3, func(o *Options) {
			o.Exclude = []string{"a"}
		})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "c", matches[0].Word)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Nearest(canceled, st, []float32{1, 0}, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNearestParallel(t *testing.T) {
	words := make([]string, 100)
	vectors := make([][]float32, 100)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
		vectors[i] = []float32{float32(i + 1), float32(100 - i)}
	}
	st, err := wordvec.New(words, vectors)
	require.NoError(t, err)

	ctx := context.Background()
	query := []float32{3, 4}

	serial, err := Nearest(ctx, st, query, 10)
	require.NoError(t, err)

	parallel, err := Nearest(ctx, st, query, 10, func(o *Options) {
		o.Parallelism = 4
	})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestSimilar(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("ExcludesSelf", func(t *testing.T) {
		matches, err := Similar(ctx, st, "a", 3)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "c", matches[0].Word)
		assert.Equal(t, "b", matches[1].Word)
	})

	t.Run("UnknownWord", func(t *testing.T) {
		_, err := Similar(ctx, st, "nope", 3)
		assert.ErrorIs(t, err, wordvec.ErrNotFound)
	})
}

func TestAnalogy(t *testing.T) {
	st, err := wordvec.New(
		[]string{"man", "woman", "king", "queen"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("KingMinusManPlusWoman", func(t *testing.T) {
		matches, err := Analogy(ctx, st, []string{"king", "woman"}, []string{"man"}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "queen", matches[0].Word)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})

	t.Run("UnknownWord", func(t *testing.T) {
		_, err := Analogy(ctx, st, []string{"king", "nope"}, nil, 1)
		assert.ErrorIs(t, err, wordvec.ErrNotFound)
	})

	t.Run("CancelingInputs", func(t *testing.T) {
		_, err := Analogy(ctx, st, []string{"king"}, []string{"king"}, 1)
		assert.ErrorIs(t, err, ErrZeroNormQuery)
	})
}

func TestSimilarity(t *testing.T) {
	st := newTestStore(t)

	sim, err := Similarity(st, "a", "c")
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2/2, sim, 1e-6)

	sim, err = Similarity(st, "a", "a")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)

	_, err = Similarity(st, "a", "nope")
	assert.ErrorIs(t, err, wordvec.ErrNotFound)
}

func TestNearestRecordsMetrics(t *testing.T) {
	st := newTestStore(t)
	metrics := &wordvec.BasicMetricsCollector{}

	_, err := Nearest(context.Background(), st, []float32{1, 0}, 2, func(o *Options) {
		o.Metrics = metrics
	})
	require.NoError(t, err)

	_, err = Nearest(context.Background(), st, []float32{1, 0}, 0, func(o *Options) {
		o.Metrics = metrics
	})
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.SearchCount)
	assert.Equal(t, int64(1), stats.SearchErrors)
}

func BenchmarkNearest(b *testing.B) {
	rng := testutil.NewRNG(4711)
	words, vectors := rng.Corpus(10000, 64)

	st, err := wordvec.New(words, vectors)
	if err != nil {
		b.Fatal(err)
	}

	query := st.EmbeddingAt(42)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Nearest(ctx, st, query, 10); err != nil {
			b.Fatal(err)
		}
	}
}
