// Package snapshot persists frozen stores in a compact binary
// container, so large text or packed collections parse once and reload
// quickly afterwards.
//
// Layout: a fixed little-endian header (magic, version, codec flag,
// dimension, row count), the payload passed through the chosen codec
// (uvarint-length words, then the raw float32 matrix), and a trailing
// CRC32-IEEE over the payload's on-wire bytes.
//
// CRC32 detects accidental corruption only. Do not rely on it for
// tamper detection.
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"time"

	"github.com/hupe1980/wordvec"
)

const (
	// Magic identifies snapshot streams (ASCII "WVSN").
	Magic = 0x5756534E
	// Version is the current container version.
	Version = 1

	// maxWordBytes bounds a single decoded word, far above anything the
	// text or binary parsers accept.
	maxWordBytes = 1 << 20

	// preallocCap caps how many rows are preallocated up front, so a
	// header naming an absurd count cannot force a huge allocation
	// before the stream runs dry.
	preallocCap = 1 << 16
)

var (
	// ErrBadMagic is returned when a stream does not open with the
	// snapshot magic number.
	ErrBadMagic = errors.New("invalid magic number")

	// ErrBadVersion is returned when the container version is not
	// supported.
	ErrBadVersion = errors.New("unsupported version")

	// ErrChecksum is returned when the payload fails CRC verification.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrUnknownCodec is returned when the codec flag does not name a
	// supported codec.
	ErrUnknownCodec = errors.New("unknown codec")
)

// header is the fixed-size prelude of every snapshot.
type header struct {
	Magic   uint32
	Version uint16
	Codec   uint16
	Dim     uint32
	Count   uint64
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Codec compresses the payload on the wire.
	Codec Codec

	// Logger records snapshot outcomes.
	Logger *wordvec.Logger

	// Metrics records snapshot outcomes.
	Metrics wordvec.MetricsCollector
}

// LoadOptions configures Load. The codec never appears here; it is read
// back from the container header.
type LoadOptions struct {
	// Logger records snapshot outcomes.
	Logger *wordvec.Logger

	// Metrics records snapshot outcomes.
	Metrics wordvec.MetricsCollector
}

// Save writes st to w.
func Save(w io.Writer, st *wordvec.Store, optFns ...func(o *SaveOptions)) error {
	opts := SaveOptions{
		Logger:  wordvec.NoopLogger(),
		Metrics: wordvec.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	start := time.Now()
	err := save(w, st, opts.Codec)
	duration := time.Since(start)

	opts.Metrics.RecordSnapshot(duration, err)
	opts.Logger.LogSnapshot(context.Background(), "save", st.Len(), err)

	return err
}

// SaveFile writes st to path, creating or truncating the file.
func SaveFile(path string, st *wordvec.Store, optFns ...func(o *SaveOptions)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}

	if err := Save(f, st, optFns...); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Load reads a snapshot from r. The store is rebuilt through
// wordvec.New, so the construction invariants hold for loaded
// snapshots exactly as for parsed collections.
func Load(r io.Reader, optFns ...func(o *LoadOptions)) (*wordvec.Store, error) {
	opts := LoadOptions{
		Logger:  wordvec.NoopLogger(),
		Metrics: wordvec.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	start := time.Now()
	st, err := load(r)
	duration := time.Since(start)

	words := 0
	if st != nil {
		words = st.Len()
	}
	opts.Metrics.RecordSnapshot(duration, err)
	opts.Logger.LogSnapshot(context.Background(), "load", words, err)

	return st, err
}

// LoadFile reads the snapshot at path.
func LoadFile(path string, optFns ...func(o *LoadOptions)) (*wordvec.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, optFns...)
}

func save(w io.Writer, st *wordvec.Store, c Codec) error {
	bw := bufio.NewWriter(w)

	hdr := header{
		Magic:   Magic,
		Version: Version,
		Codec:   uint16(c),
		Dim:     uint32(st.Dimension()),
		Count:   uint64(st.Len()),
	}
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	cw := newChecksumWriter(bw)
	enc, err := newEncoder(cw, c)
	if err != nil {
		return err
	}
	if err := writePayload(enc, st); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot: flush codec: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, cw.Sum()); err != nil {
		return fmt.Errorf("snapshot: write checksum: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}

	return nil
}

func load(r io.Reader) (*wordvec.Store, error) {
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrBadMagic, hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrBadVersion, hdr.Version)
	}
	if !Codec(hdr.Codec).valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, hdr.Codec)
	}

	// The rest of the stream is payload plus a 4-byte CRC trailer.
	// Streaming decoders read ahead, so the split has to happen on the
	// raw bytes before any decoding.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("snapshot: payload: %w", io.ErrUnexpectedEOF)
	}

	payload, want := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksum, want, got)
	}

	dec, cleanup, err := newDecoder(bytes.NewReader(payload), Codec(hdr.Codec))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	words, vectors, err := readPayload(dec, int(hdr.Count), int(hdr.Dim))
	if err != nil {
		return nil, err
	}

	return wordvec.New(words, vectors)
}

func writePayload(w io.Writer, st *wordvec.Store) error {
	var scratch [binary.MaxVarintLen64]byte
	for i := 0; i < st.Len(); i++ {
		word := st.Word(i)
		n := binary.PutUvarint(scratch[:], uint64(len(word)))
		if _, err := w.Write(scratch[:n]); err != nil {
			return fmt.Errorf("snapshot: write word %d: %w", i, err)
		}
		if _, err := io.WriteString(w, word); err != nil {
			return fmt.Errorf("snapshot: write word %d: %w", i, err)
		}
	}

	dim := st.Dimension()
	row := make([]byte, dim*4)
	for i := 0; i < st.Len(); i++ {
		vec := st.EmbeddingAt(i)
		for j, v := range vec {
			binary.LittleEndian.PutUint32(row[4*j:], math.Float32bits(v))
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("snapshot: write row %d: %w", i, err)
		}
	}

	return nil
}

func readPayload(r io.Reader, count, dim int) ([]string, [][]float32, error) {
	br := bufio.NewReader(r)

	words := make([]string, 0, min(count, preallocCap))
	scratch := make([]byte, 64)
	for i := 0; i < count; i++ {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot: word %d/%d: %w", i+1, count, err)
		}
		if n > maxWordBytes {
			return nil, nil, fmt.Errorf("snapshot: word %d/%d: length %d exceeds limit", i+1, count, n)
		}
		if int(n) > len(scratch) {
			scratch = make([]byte, n)
		}
		if _, err := io.ReadFull(br, scratch[:n]); err != nil {
			return nil, nil, fmt.Errorf("snapshot: word %d/%d: %w", i+1, count, err)
		}
		words = append(words, string(scratch[:n]))
	}

	vectors := make([][]float32, 0, min(count, preallocCap))
	raw := make([]byte, dim*4)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, nil, fmt.Errorf("snapshot: row %d/%d: %w", i+1, count, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*j:]))
		}
		vectors = append(vectors, vec)
	}

	return words, vectors, nil
}
