package wordvec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/wordvec/format"
	"github.com/hupe1980/wordvec/resource"
	"github.com/hupe1980/wordvec/source"
	"github.com/hupe1980/wordvec/testutil"
)

const textFixture = "apple 1.0 2.0\nbanana 3.0 4.0\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	t.Run("TextFile", func(t *testing.T) {
		path := writeFile(t, "vectors.txt", []byte(textFixture))

		st, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 2, st.Len())
		assert.Equal(t, 2, st.Dimension())

		vec, err := st.Embedding("apple")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, vec)
	})

	t.Run("CountHeaderSkipped", func(t *testing.T) {
		path := writeFile(t, "vectors.txt", []byte("2 2\n"+textFixture))

		st, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 2, st.Len())
		assert.False(t, st.Has("2"))
	})

	t.Run("BinaryFileByExtension", func(t *testing.T) {
		data := testutil.PackedCollection(
			[]string{"süd", "nord"},
			[][]float32{{1, 2, 3}, {4, 5, 6}},
		)
		path := writeFile(t, "vectors.bin", data)

		st, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 2, st.Len())
		assert.Equal(t, 3, st.Dimension())

		vec, err := st.Embedding("süd")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3}, vec)
	})

	t.Run("TextDataInBinFile", func(t *testing.T) {
		// The .bin extension pins the packed parser; the text content
		// fails its header check instead of sneaking through as text.
		path := writeFile(t, "vectors.bin", []byte(textFixture))

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadReader(t *testing.T) {
	t.Run("SniffText", func(t *testing.T) {
		st, err := LoadReader("", strings.NewReader(textFixture))
		require.NoError(t, err)

		assert.Equal(t, 2, st.Len())
	})

	t.Run("SniffBinary", func(t *testing.T) {
		data := testutil.PackedCollection(
			[]string{"up", "down"},
			[][]float32{{1, 0}, {0, 1}},
		)

		st, err := LoadReader("vectors.dat", bytes.NewReader(data))
		require.NoError(t, err)

		assert.Equal(t, 2, st.Len())

		vec, err := st.Embedding("down")
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1}, vec)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := LoadReader("", strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("InvalidBinaryHeader", func(t *testing.T) {
		for name, content := range map[string]string{
			"OneToken":    "5\n",
			"ThreeTokens": "5 3 7\n",
			"NonNumeric":  "five three\n",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := LoadReader("vectors.bin", strings.NewReader(content))
				assert.ErrorIs(t, err, ErrInvalidHeader)
			})
		}
	})

	t.Run("TruncatedBinary", func(t *testing.T) {
		data := testutil.PackedCollection(
			[]string{"only"},
			[][]float32{{1, 2}},
		)
		// Claim three records but deliver one.
		data[0] = '3'

		_, err := LoadReader("vectors.bin", bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("PinnedFormat", func(t *testing.T) {
		// Text content named .bin loads fine when the text parser is
		// pinned, and the binary parser rejects it when pinned instead.
		st, err := LoadReader("vectors.bin", strings.NewReader(textFixture), WithFormat(format.Text))
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())

		_, err = LoadReader("vectors.txt", strings.NewReader(textFixture), WithFormat(format.Binary))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("FallbackFormat", func(t *testing.T) {
		// A short prefix with no newline is inconclusive for every
		// heuristic, so the fallback decides which parser runs.
		_, err := LoadReader("", strings.NewReader("hello"))
		assert.ErrorIs(t, err, ErrEmptyVocabulary)

		_, err = LoadReader("", strings.NewReader("hello"), WithFallbackFormat(format.Binary))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})
}

func TestLoadCompressed(t *testing.T) {
	t.Run("Gzip", func(t *testing.T) {
		path := writeFile(t, "vectors.txt.gz", gzipBytes(t, []byte(textFixture)))

		st, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("Zstd", func(t *testing.T) {
		var buf bytes.Buffer
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = zw.Write([]byte(textFixture))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		path := writeFile(t, "vectors.txt.zst", buf.Bytes())

		st, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("LZ4Binary", func(t *testing.T) {
		// The stripped inner name keeps its .bin extension, so the
		// packed parser runs on the decompressed stream.
		data := testutil.PackedCollection([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})

		var buf bytes.Buffer
		lw := lz4.NewWriter(&buf)
		_, err := lw.Write(data)
		require.NoError(t, err)
		require.NoError(t, lw.Close())

		path := writeFile(t, "vectors.bin.lz4", buf.Bytes())

		st, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("CorruptGzip", func(t *testing.T) {
		path := writeFile(t, "vectors.txt.gz", []byte("not gzip at all"))

		_, err := Load(path)
		assert.ErrorContains(t, err, "gzip")
	})
}

func TestLoadFrom(t *testing.T) {
	ctx := context.Background()

	src := source.NewMemory()
	src.Put("vectors.txt", []byte(textFixture))

	t.Run("MemorySource", func(t *testing.T) {
		st, err := LoadFrom(ctx, src, "vectors.txt")
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("UnknownObject", func(t *testing.T) {
		_, err := LoadFrom(ctx, src, "missing.txt")
		assert.ErrorIs(t, err, source.ErrNotFound)
	})
}

func TestLoadWithController(t *testing.T) {
	t.Run("WithinBudget", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

		st, err := LoadReader("", strings.NewReader(textFixture), WithResourceController(c))
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())

		// The construction charge is released once the load returns.
		assert.Equal(t, int64(0), c.MemoryUsage())
	})

	t.Run("BudgetTooSmall", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 16})

		_, err := LoadReader("", strings.NewReader(textFixture), WithResourceController(c))
		assert.ErrorIs(t, err, resource.ErrMemoryLimit)
	})

	t.Run("RateLimited", func(t *testing.T) {
		c := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})

		st, err := LoadReader("", strings.NewReader(textFixture), WithResourceController(c))
		require.NoError(t, err)
		assert.Equal(t, 2, st.Len())
	})
}

func TestLoadRecordsMetrics(t *testing.T) {
	collector := &BasicMetricsCollector{}

	_, err := LoadReader("", strings.NewReader(textFixture), WithMetricsCollector(collector))
	require.NoError(t, err)

	_, err = LoadReader("", strings.NewReader(""), WithMetricsCollector(collector))
	require.Error(t, err)

	stats := collector.GetStats()
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
	assert.Equal(t, int64(2), stats.LoadedWords)
}

func BenchmarkLoadText(b *testing.B) {
	rng := testutil.NewRNG(4711)
	words, vectors := rng.Corpus(5000, 100)
	data := testutil.TextCollection(words, vectors)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := LoadReader("vectors.txt", bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadBinary(b *testing.B) {
	rng := testutil.NewRNG(4711)
	words, vectors := rng.Corpus(5000, 100)
	data := testutil.PackedCollection(words, vectors)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := LoadReader("vectors.bin", bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
