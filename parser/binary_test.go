package parser

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packRecord appends a single binary record: word, 0x20, dim float32 values.
func packRecord(buf *bytes.Buffer, word string, vec []float32, newline bool) {
	buf.WriteString(word)
	buf.WriteByte(' ')
	for _, v := range vec {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
	if newline {
		buf.WriteByte('\n')
	}
}

func packStream(words []string, vectors [][]float32, newline bool) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(words), len(vectors[0]))
	for i, w := range words {
		packRecord(&buf, w, vectors[i], newline)
	}
	return buf.Bytes()
}

func TestParseBinary(t *testing.T) {
	words := []string{"apple", "banana", "cherry"}
	vectors := [][]float32{
		{0.1, -0.2, 0.3},
		{1.5, 2.5, -3.5},
		{0, 0, 1},
	}

	t.Run("WithRecordNewlines", func(t *testing.T) {
		res, err := ParseBinary(bytes.NewReader(packStream(words, vectors, true)))
		require.NoError(t, err)
		assert.Equal(t, words, res.Words)
		assert.Equal(t, vectors, res.Vectors)
	})

	t.Run("WithoutRecordNewlines", func(t *testing.T) {
		res, err := ParseBinary(bytes.NewReader(packStream(words, vectors, false)))
		require.NoError(t, err)
		assert.Equal(t, words, res.Words)
		assert.Equal(t, vectors, res.Vectors)
	})

	t.Run("TrailingGarbageIgnored", func(t *testing.T) {
		data := append(packStream(words, vectors, true), []byte("EXTRA")...)
		res, err := ParseBinary(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, words, res.Words)
	})

	t.Run("NonASCIIWord", func(t *testing.T) {
		data := packStream([]string{"früh", "日本語"}, [][]float32{{1, 2}, {3, 4}}, true)
		res, err := ParseBinary(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, []string{"früh", "日本語"}, res.Words)
	})
}

func TestParseBinaryHeader(t *testing.T) {
	t.Run("EmptyStream", func(t *testing.T) {
		_, err := ParseBinary(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("NotNumbers", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("hello world\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("OneField", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("42\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("ThreeFields", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("1 2 3\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("ZeroCounts", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("0 300\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)

		_, err = ParseBinary(strings.NewReader("10 0\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("NegativeCounts", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("-1 300\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("OverlongLine", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader(strings.Repeat("9", 200) + "\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("DimensionTooLarge", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("1 9999999\n"))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})
}

func TestParseBinaryTruncation(t *testing.T) {
	full := packStream([]string{"apple", "banana"}, [][]float32{{1, 2, 3}, {4, 5, 6}}, true)

	t.Run("CutMidVector", func(t *testing.T) {
		_, err := ParseBinary(bytes.NewReader(full[:len(full)-8]))
		assert.ErrorIs(t, err, ErrTruncated)
		assert.Contains(t, err.Error(), "record 2/2")
	})

	t.Run("CutBeforeSecondWord", func(t *testing.T) {
		// Header + first record only, but header promises two.
		one := packStream([]string{"apple"}, [][]float32{{1, 2, 3}}, true)
		trunc := append([]byte("2 3\n"), one[len("1 3\n"):]...)
		_, err := ParseBinary(bytes.NewReader(trunc))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		_, err := ParseBinary(strings.NewReader("5 10\n"))
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestParseBinaryWordLimit(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("1 2\n")
	buf.WriteString(strings.Repeat("a", MaxWordBytes+1))
	buf.WriteByte(' ')
	buf.Write(make([]byte, 8))

	_, err := ParseBinary(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrWordTooLong)
}
