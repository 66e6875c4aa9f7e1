package wordvec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Clusters maps vocabulary words to the integer cluster each was
// assigned by a clustering run. Like a Store it is frozen after
// construction: duplicate words keep all their rows and the lookup
// index resolves to the last occurrence. Membership per cluster is
// kept as a bitmap of row indices.
type Clusters struct {
	words []string
	ids   []int
	index map[string]int
	byID  map[int]*roaring.Bitmap
}

// LoadClusters reads the cluster assignment file at path. Compression
// extensions are handled the same way Load handles them.
func LoadClusters(path string, optFns ...Option) (*Clusters, error) {
	opts := applyOptions(optFns)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordvec: open %s: %w", path, err)
	}
	defer f.Close()

	return loadClusters(context.Background(), path, f, opts)
}

func loadClusters(ctx context.Context, name string, r io.Reader, opts options) (*Clusters, error) {
	r, name, cleanup, err := decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	c, err := ParseClusters(r)

	words, count := 0, 0
	if c != nil {
		words, count = c.Len(), c.Count()
	}
	opts.logger.LogClusters(ctx, name, words, count, err)

	return c, err
}

// ParseClusters decodes the line-oriented cluster layout from r: one
// "<word> <cluster>" pair per line. Skipping follows the text embedding
// parser: blank lines, size headers, numeric leading tokens and
// otherwise malformed lines are dropped silently. A stream that yields
// no valid rows returns ErrEmptyVocabulary.
func ParseClusters(r io.Reader) (*Clusters, error) {
	sc := bufio.NewScanner(r)

	c := &Clusters{
		index: make(map[string]int),
		byID:  make(map[int]*roaring.Bitmap),
	}
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		if _, err := strconv.ParseFloat(fields[0], 32); err == nil {
			continue
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		c.words = append(c.words, fields[0])
		c.ids = append(c.ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("wordvec: scan clusters: %w", err)
	}
	if len(c.words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	for i, w := range c.words {
		c.index[w] = i
	}
	for i, id := range c.ids {
		m, ok := c.byID[id]
		if !ok {
			m = roaring.New()
			c.byID[id] = m
		}
		m.Add(uint32(i))
	}

	return c, nil
}

// Len returns the number of assignment rows, counting duplicate words
// once per row.
func (c *Clusters) Len() int {
	return len(c.words)
}

// Count returns the number of distinct cluster IDs.
func (c *Clusters) Count() int {
	return len(c.byID)
}

// Cluster returns the cluster ID assigned to word. Duplicate words
// resolve to their last occurrence. An unknown word returns
// ErrNotFound.
func (c *Clusters) Cluster(word string) (int, error) {
	i, ok := c.index[word]
	if !ok {
		return 0, ErrNotFound
	}
	return c.ids[i], nil
}

// Words returns a copy of the vocabulary in row order.
func (c *Clusters) Words() []string {
	out := make([]string, len(c.words))
	copy(out, c.words)
	return out
}

// WordsInCluster returns the words assigned to cluster id in row order,
// or nil for an unknown id.
func (c *Clusters) WordsInCluster(id int) []string {
	m, ok := c.byID[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, m.GetCardinality())
	it := m.Iterator()
	for it.HasNext() {
		out = append(out, c.words[it.Next()])
	}
	return out
}
