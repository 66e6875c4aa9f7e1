package wordvec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/wordvec/format"
	"github.com/hupe1980/wordvec/parser"
	"github.com/hupe1980/wordvec/resource"
	"github.com/hupe1980/wordvec/source"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Load reads the embedding collection at path into a frozen Store.
//
// Compression is transparent: a ".gz", ".zst" or ".lz4" extension
// selects the matching decompressor and is stripped before format
// detection, so "vectors.bin.gz" still takes the binary path. The
// layout is then detected from the name and a bounded content prefix
// unless pinned with WithFormat.
//
// There is no context parameter: a load runs to completion or fails.
func Load(path string, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordvec: open %s: %w", path, err)
	}
	defer f.Close()

	return loadReader(context.Background(), path, f, opts)
}

// LoadReader reads an embedding collection from r into a frozen Store.
// name supplies extension hints (compression suffix, ".bin") and log
// context only; it may be empty.
func LoadReader(name string, r io.Reader, optFns ...Option) (*Store, error) {
	return loadReader(context.Background(), name, r, applyOptions(optFns))
}

// LoadFrom reads the named object from src into a frozen Store. The
// context covers the remote fetch; SDK-backed sources require one.
func LoadFrom(ctx context.Context, src source.Source, name string, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	rd, err := src.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("wordvec: open %s: %w", name, err)
	}
	defer rd.Close()

	return loadReader(ctx, name, rd, opts)
}

func loadReader(ctx context.Context, name string, r io.Reader, opts options) (*Store, error) {
	start := time.Now()

	st, err := runLoad(ctx, name, r, opts)

	duration := time.Since(start)
	words, dim := 0, 0
	if st != nil {
		words, dim = st.Len(), st.Dimension()
	}
	opts.metricsCollector.RecordLoad(words, dim, duration, err)
	opts.logger.LogLoad(ctx, name, words, dim, duration, err)

	return st, err
}

func runLoad(ctx context.Context, name string, r io.Reader, opts options) (*Store, error) {
	if opts.controller != nil {
		if err := opts.controller.AcquireLoad(ctx); err != nil {
			return nil, fmt.Errorf("wordvec: acquire load slot: %w", err)
		}
		defer opts.controller.ReleaseLoad()

		r = resource.NewRateLimitedReader(r, opts.controller, ctx)
	}

	r, name, cleanup, err := decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	br := bufio.NewReaderSize(r, format.SniffBudget)

	f := opts.format
	if f != format.Text && f != format.Binary {
		prefix, err := br.Peek(format.SniffBudget)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("wordvec: sniff %s: %w", name, err)
		}
		f = format.DetectWithFallback(name, prefix, opts.fallback)
	}

	var res *parser.Result
	switch f {
	case format.Binary:
		res, err = parser.ParseBinary(br)
	default:
		res, err = parser.ParseText(br)
	}
	if err != nil {
		return nil, translateError(err)
	}

	if opts.controller != nil {
		need := resultBytes(res)
		if err := opts.controller.AcquireMemory(ctx, need); err != nil {
			return nil, fmt.Errorf("wordvec: acquire %d bytes: %w", need, err)
		}
		defer opts.controller.ReleaseMemory(need)
	}

	return New(res.Words, res.Vectors)
}

// decompress wraps r in a decompressor matching name's extension and
// returns the effective stream name with the compression suffix
// stripped. cleanup releases decoder state once parsing is done.
func decompress(r io.Reader, name string) (io.Reader, string, func(), error) {
	noop := func() {}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", noop, fmt.Errorf("wordvec: gzip %s: %w", name, err)
		}
		return gz, trimExt(name), func() { _ = gz.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, "", noop, fmt.Errorf("wordvec: zstd %s: %w", name, err)
		}
		return zr, trimExt(name), zr.Close, nil
	case ".lz4":
		return lz4.NewReader(r), trimExt(name), noop, nil
	default:
		return r, name, noop, nil
	}
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// resultBytes estimates the frozen footprint of a parse result, matching
// what Store.Size reports after construction.
func resultBytes(res *parser.Result) int64 {
	n := int64(len(res.Words)) * 4
	for _, w := range res.Words {
		n += int64(len(w))
	}
	for _, vec := range res.Vectors {
		n += int64(len(vec)) * 4
	}
	return n
}
