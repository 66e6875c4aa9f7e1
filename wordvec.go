package wordvec

import (
	"math"
	"sort"
)

// Store is a frozen collection of word embeddings: an ordered vocabulary,
// a row-major float32 matrix with one row per word, and a precomputed
// Euclidean norm per row.
//
// A Store never changes after construction, so unsynchronized concurrent
// reads are safe. Duplicate words keep all their matrix rows; the word
// index resolves to the last occurrence.
type Store struct {
	dim   int
	words []string
	index map[string]int
	data  []float32 // row-major, len(words)*dim
	norms []float32
}

// New validates words and vectors and freezes them into a Store.
//
// Validation order: the word and row counts must match, every row must
// have the width of the first row, and every row must have a strictly
// positive Euclidean norm. The first violation is returned as
// *ShapeMismatchError or *ZeroNormError and no Store is built.
// Input slices are copied; the caller may reuse them.
func New(words []string, vectors [][]float32) (*Store, error) {
	if len(words) != len(vectors) {
		return nil, &ShapeMismatchError{Expected: len(words), Actual: len(vectors), Row: -1}
	}
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, &ShapeMismatchError{Expected: dim, Actual: len(vec), Row: i}
		}
	}

	st := &Store{
		dim:   dim,
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
		data:  make([]float32, len(words)*dim),
		norms: make([]float32, len(words)),
	}
	copy(st.words, words)

	for i, vec := range vectors {
		copy(st.data[i*dim:], vec)

		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		norm := math.Sqrt(sum)
		// A NaN norm fails this comparison too.
		if !(norm > 0) {
			return nil, &ZeroNormError{Word: words[i], Row: i}
		}
		st.norms[i] = float32(norm)
	}

	for i, w := range st.words {
		st.index[w] = i
	}

	return st, nil
}

// FromMap builds a Store from a word-to-vector mapping. Entries are
// committed in sorted word order, since map iteration order is not
// stable between runs.
func FromMap(m map[string][]float32) (*Store, error) {
	words := make([]string, 0, len(m))
	for w := range m {
		words = append(words, w)
	}
	sort.Strings(words)

	vectors := make([][]float32, len(words))
	for i, w := range words {
		vectors[i] = m[w]
	}

	return New(words, vectors)
}

// Embedding returns the vector for word. The returned slice aliases the
// Store's matrix, stays valid for the Store's lifetime, and must not be
// modified. An unknown word returns ErrNotFound.
func (s *Store) Embedding(word string) ([]float32, error) {
	i, ok := s.index[word]
	if !ok {
		return nil, ErrNotFound
	}
	return s.row(i), nil
}

// Norm returns the precomputed Euclidean norm of the vector for word.
// An unknown word returns ErrNotFound.
func (s *Store) Norm(word string) (float32, error) {
	i, ok := s.index[word]
	if !ok {
		return 0, ErrNotFound
	}
	return s.norms[i], nil
}

// Len returns the number of matrix rows, counting duplicate words once
// per row.
func (s *Store) Len() int {
	return len(s.words)
}

// Dimension returns the width shared by every vector in the Store.
func (s *Store) Dimension() int {
	return s.dim
}

// Index returns the matrix row for word. Duplicate words resolve to
// their last occurrence.
func (s *Store) Index(word string) (int, bool) {
	i, ok := s.index[word]
	return i, ok
}

// Has reports whether word is in the vocabulary.
func (s *Store) Has(word string) bool {
	_, ok := s.index[word]
	return ok
}

// Word returns the vocabulary entry at row i. It panics when i is out
// of range, like a slice access.
func (s *Store) Word(i int) string {
	return s.words[i]
}

// Words returns a copy of the vocabulary in row order.
func (s *Store) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// EmbeddingAt returns the vector at row i without a vocabulary lookup.
// The returned slice aliases the Store's matrix and must not be
// modified. It panics when i is out of range.
func (s *Store) EmbeddingAt(i int) []float32 {
	return s.row(i)
}

// NormAt returns the Euclidean norm of the vector at row i. It panics
// when i is out of range.
func (s *Store) NormAt(i int) float32 {
	return s.norms[i]
}

// Size returns the approximate in-memory footprint in bytes: matrix and
// norm storage plus vocabulary bytes. Map and header overhead is not
// counted.
func (s *Store) Size() int64 {
	n := int64(len(s.data)+len(s.norms)) * 4
	for _, w := range s.words {
		n += int64(len(w))
	}
	return n
}

func (s *Store) row(i int) []float32 {
	off := i * s.dim
	return s.data[off : off+s.dim : off+s.dim]
}
