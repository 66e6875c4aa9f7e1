package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/wordvec/distance"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformRangeVectors generates random vectors with values in range [-1, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := 0; i < num; i++ {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()*2 - 1
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := 0; i < num; i++ {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Directions are Gaussian; the rare all-zero draw is resampled, so every
// row has positive norm.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := 0; i < num; i++ {
		vec := data[i*dimensions : (i+1)*dimensions]
		for {
			for j := range vec {
				vec[j] = float32(r.rand.NormFloat64())
			}
			if distance.NormalizeL2InPlace(vec) {
				break
			}
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVector generates a single L2-normalized random vector.
func (r *RNG) UnitVector(dimensions int) []float32 {
	return r.UnitVectors(1, dimensions)[0]
}

// Corpus returns a deterministic vocabulary and matching unit vectors,
// sized for store construction or collection rendering.
func (r *RNG) Corpus(num, dimensions int) ([]string, [][]float32) {
	return Vocabulary(num), r.UnitVectors(num, dimensions)
}

// Vocabulary returns n distinct deterministic words: "w00000", "w00001", ...
func Vocabulary(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%05d", i)
	}
	return words
}

// TextCollection renders words and vectors in the line-oriented text
// layout. Values are formatted so they parse back to the same float32.
func TextCollection(words []string, vectors [][]float32) []byte {
	var buf bytes.Buffer
	for i, w := range words {
		buf.WriteString(w)
		for _, v := range vectors[i] {
			buf.WriteByte(' ')
			buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// PackedCollection renders words and vectors in the packed binary layout:
// an ASCII "<vocab> <dim>" header line, then per record the word, a space,
// the little-endian float32 values, and a newline separator.
func PackedCollection(words []string, vectors [][]float32) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(words), len(vectors[0]))
	for i, w := range words {
		buf.WriteString(w)
		buf.WriteByte(' ')
		_ = binary.Write(&buf, binary.LittleEndian, vectors[i])
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
