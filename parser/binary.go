package parser

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	// maxHeaderBytes bounds the ASCII header line. Two decimal integers and
	// a separator fit in far less; a longer line is not a packed header.
	maxHeaderBytes = 128

	// MaxWordBytes bounds a single word field. The longest words in real
	// collections are phrase tokens a few hundred bytes long; running past
	// this limit without a 0x20 separator means the stream is garbage.
	MaxWordBytes = 4096

	// maxDimension bounds the vector width declared by the header, capping
	// the per-record allocation at 4 MiB.
	maxDimension = 1 << 20

	// preallocCap bounds header-driven preallocation so a forged vocabulary
	// count cannot force a huge up-front allocation.
	preallocCap = 1 << 16
)

// ParseBinary decodes the packed binary layout from r.
//
// The stream opens with an ASCII header line "<vocab> <dim>\n". Each of the
// vocab records that follow is a word (bytes up to an exclusive 0x20
// separator) and dim little-endian IEEE-754 float32 values, optionally
// followed by a 0x0A separator. Newlines before a word are tolerated, words
// pass through as opaque bytes, and anything after the final record is
// ignored.
//
// A malformed header returns ErrInvalidHeader; a stream that ends before
// vocab records have been read returns ErrTruncated.
func ParseBinary(r io.Reader) (*Result, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	vocab, dim, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Words:   make([]string, 0, min(vocab, preallocCap)),
		Vectors: make([][]float32, 0, min(vocab, preallocCap)),
	}

	raw := make([]byte, dim*4)
	for i := 0; i < vocab; i++ {
		word, err := readWord(br)
		if err != nil {
			return nil, fmt.Errorf("parser: record %d/%d: %w", i+1, vocab, err)
		}

		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, fmt.Errorf("parser: record %d/%d (%q): vector: %w", i+1, vocab, word, ErrTruncated)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*j:]))
		}

		// Optional record separator; EOF after the final record is fine.
		if b, err := br.ReadByte(); err == nil && b != '\n' {
			_ = br.UnreadByte()
		}

		res.Words = append(res.Words, word)
		res.Vectors = append(res.Vectors, vec)
	}
	return res, nil
}

// readHeader reads and validates the bounded ASCII header line.
func readHeader(br *bufio.Reader) (vocab, dim int, err error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, 0, fmt.Errorf("%w: missing header line", ErrInvalidHeader)
			}
			return 0, 0, fmt.Errorf("parser: read header: %w", err)
		}
		if b == '\n' {
			break
		}
		if sb.Len() >= maxHeaderBytes {
			return 0, 0, fmt.Errorf("%w: header line exceeds %d bytes", ErrInvalidHeader, maxHeaderBytes)
		}
		sb.WriteByte(b)
	}

	fields := strings.Fields(sb.String())
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want 2 fields, got %d", ErrInvalidHeader, len(fields))
	}
	vocab, err1 := strconv.Atoi(fields[0])
	dim, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || vocab <= 0 || dim <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidHeader, sb.String())
	}
	if dim > maxDimension {
		return 0, 0, fmt.Errorf("%w: dimension %d exceeds limit %d", ErrInvalidHeader, dim, maxDimension)
	}
	return vocab, dim, nil
}

// readWord reads bytes up to an exclusive 0x20 separator, skipping record
// separators left over from the previous vector.
func readWord(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("word: %w", ErrTruncated)
			}
			return "", fmt.Errorf("read word: %w", err)
		}
		switch {
		case b == '\n' && len(buf) == 0:
			continue
		case b == ' ':
			if len(buf) == 0 {
				return "", fmt.Errorf("empty word: %w", ErrTruncated)
			}
			return string(buf), nil
		default:
			if len(buf) >= MaxWordBytes {
				return "", fmt.Errorf("%w (%d bytes)", ErrWordTooLong, MaxWordBytes)
			}
			buf = append(buf, b)
		}
	}
}
