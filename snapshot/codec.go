package snapshot

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the payload compression.
type Codec uint16

const (
	// CodecNone stores the payload uncompressed.
	CodecNone Codec = iota
	// CodecLZ4 favors decode speed.
	CodecLZ4
	// CodecZstd favors compression ratio.
	CodecZstd
)

func (c Codec) valid() bool {
	return c <= CodecZstd
}

// String implements the fmt.Stringer interface.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint16(c))
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newEncoder wraps w in the codec's compressor. The returned writer
// must be closed to flush codec framing before the checksum trailer
// is written.
func newEncoder(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}

// newDecoder wraps r in the codec's decompressor. The cleanup func
// releases decoder resources and is safe to call exactly once.
func newDecoder(r io.Reader, c Codec) (io.Reader, func(), error) {
	switch c {
	case CodecNone:
		return r, func() {}, nil
	case CodecLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}
