// Package search runs exact similarity and analogy queries over a
// frozen wordvec.Store.
//
// Scores are cosine similarities computed from the store's precomputed
// norms. Scans are exhaustive over the matrix, optionally chunked
// across goroutines, and results come back sorted by descending score.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/wordvec"
	"github.com/hupe1980/wordvec/distance"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrZeroNormQuery is returned when the query vector has no positive
	// norm, which leaves cosine similarity undefined.
	ErrZeroNormQuery = errors.New("query vector has zero norm")
)

// DimensionError indicates a query width that differs from the store's.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Match is one query result.
type Match struct {
	Row   int     // matrix row of the match
	Word  string  // vocabulary entry at that row
	Score float32 // cosine similarity to the query
}

// Options tunes a single query.
type Options struct {
	// Subset restricts the scan to rows whose bit is set.
	Subset *roaring.Bitmap

	// Exclude drops rows whose word matches one of these entries.
	Exclude []string

	// Parallelism is the number of scan workers. Values below 2 keep
	// the scan on the calling goroutine.
	Parallelism int

	// Logger records query outcomes when set.
	Logger *wordvec.Logger

	// Metrics records query outcomes when set.
	Metrics wordvec.MetricsCollector
}

// checkEvery is how many rows a scan processes between context checks.
const checkEvery = 4096

// Nearest returns the k vocabulary entries most similar to query,
// sorted by descending score with ties broken by ascending row. Fewer
// than k matches come back when the store (or the chosen subset) holds
// fewer rows.
func Nearest(ctx context.Context, st *wordvec.Store, query []float32, k int, optFns ...func(o *Options)) ([]Match, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	matches, err := nearest(ctx, st, query, k, &opts)
	duration := time.Since(start)

	opts.Metrics.RecordSearch(k, duration, err)
	opts.Logger.LogSearch(ctx, k, len(matches), err)

	return matches, err
}

// Similar returns the k vocabulary entries most similar to word, with
// the word's own rows excluded. An unknown word returns
// wordvec.ErrNotFound.
func Similar(ctx context.Context, st *wordvec.Store, word string, k int, optFns ...func(o *Options)) ([]Match, error) {
	vec, err := st.Embedding(word)
	if err != nil {
		return nil, err
	}

	withSelf := append(optFns, func(o *Options) {
		o.Exclude = append(o.Exclude, word)
	})

	return Nearest(ctx, st, vec, k, withSelf...)
}

// Analogy answers additive vector-offset analogies: the query is the
// sum of the positive words' vectors minus the sum of the negative
// words' vectors, and every input word is excluded from the result.
//
//	// king - man + woman
//	search.Analogy(ctx, st, []string{"king", "woman"}, []string{"man"}, 1)
//
// An unknown word returns wordvec.ErrNotFound. Inputs that cancel out
// (or no inputs at all) yield a zero query and ErrZeroNormQuery.
func Analogy(ctx context.Context, st *wordvec.Store, positive, negative []string, k int, optFns ...func(o *Options)) ([]Match, error) {
	query := make([]float32, st.Dimension())
	for _, w := range positive {
		vec, err := st.Embedding(w)
		if err != nil {
			return nil, err
		}
		distance.AddInPlace(query, vec)
	}
	for _, w := range negative {
		vec, err := st.Embedding(w)
		if err != nil {
			return nil, err
		}
		distance.SubInPlace(query, vec)
	}

	inputs := make([]string, 0, len(positive)+len(negative))
	inputs = append(inputs, positive...)
	inputs = append(inputs, negative...)

	withInputs := append(optFns, func(o *Options) {
		o.Exclude = append(o.Exclude, inputs...)
	})

	return Nearest(ctx, st, query, k, withInputs...)
}

// Similarity returns the cosine similarity between two vocabulary
// words, using the store's precomputed norms. Either word being unknown
// returns wordvec.ErrNotFound.
func Similarity(st *wordvec.Store, a, b string) (float32, error) {
	va, err := st.Embedding(a)
	if err != nil {
		return 0, err
	}
	vb, err := st.Embedding(b)
	if err != nil {
		return 0, err
	}

	na, _ := st.Norm(a)
	nb, _ := st.Norm(b)

	return distance.Dot(va, vb) / (na * nb), nil
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = wordvec.NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = wordvec.NoopMetricsCollector{}
	}
	return opts
}

func nearest(ctx context.Context, st *wordvec.Store, query []float32, k int, opts *Options) ([]Match, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(query) != st.Dimension() {
		return nil, &DimensionError{Expected: st.Dimension(), Actual: len(query)}
	}

	qnorm := distance.Norm(query)
	if !(qnorm > 0) {
		return nil, ErrZeroNormQuery
	}

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, w := range opts.Exclude {
		exclude[w] = struct{}{}
	}

	n := st.Len()
	workers := opts.Parallelism
	if workers > n {
		workers = n
	}

	var best *topK
	if workers < 2 {
		best = newTopK(k)
		if err := scanRange(ctx, st, query, qnorm, 0, n, opts.Subset, exclude, best); err != nil {
			return nil, err
		}
	} else {
		heaps := make([]*topK, workers)
		chunk := (n + workers - 1) / workers

		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, n)
			h := newTopK(k)
			heaps[w] = h

			g.Go(func() error {
				return scanRange(gctx, st, query, qnorm, lo, hi, opts.Subset, exclude, h)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		best = heaps[0]
		for _, h := range heaps[1:] {
			best.merge(h)
		}
	}

	items := best.items
	sort.Slice(items, func(i, j int) bool { return worse(items[j], items[i]) })

	matches := make([]Match, len(items))
	for i, it := range items {
		matches[i] = Match{Row: it.row, Word: st.Word(it.row), Score: it.score}
	}

	return matches, nil
}

// scanRange scores rows [lo, hi) into q, checking ctx every checkEvery
// rows.
func scanRange(ctx context.Context, st *wordvec.Store, query []float32, qnorm float32, lo, hi int, subset *roaring.Bitmap, exclude map[string]struct{}, q *topK) error {
	for row := lo; row < hi; row++ {
		if row%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if subset != nil && !subset.Contains(uint32(row)) {
			continue
		}
		if len(exclude) > 0 {
			if _, skip := exclude[st.Word(row)]; skip {
				continue
			}
		}

		score := distance.Dot(query, st.EmbeddingAt(row)) / (qnorm * st.NormAt(row))
		q.push(item{row: row, score: score})
	}

	return nil
}
