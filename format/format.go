// Package format classifies embedding collections as text or packed binary.
//
// Classification is heuristic and bounded: Detect inspects a file name and a
// prefix of at most SniffBudget bytes, never the full stream. It is a pure
// function so callers can sniff buffered readers, blobs, or in-memory data
// without committing to an input source.
package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/wordvec/parser"
)

// Format identifies the on-disk layout of an embedding collection.
type Format int

const (
	// Text is the line-oriented layout: one "word v1 v2 ... vD" row per line.
	Text Format = iota + 1
	// Binary is the packed layout: an ASCII "<vocab> <dim>" header line
	// followed by word records with little-endian float32 vectors.
	Binary
)

func (f Format) String() string {
	switch f {
	case Text:
		return "Text"
	case Binary:
		return "Binary"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

const (
	// SniffBudget is the maximum number of bytes the Detect functions inspect.
	SniffBudget = 64 * 1024

	// maxScanLines bounds the line scan so a huge prefix of unparseable
	// lines cannot stall detection.
	maxScanLines = 100

	// maxProbeFloats bounds how many trailing tokens of a candidate row are
	// verified as floats. Verifying a sample is enough for classification;
	// the text parser re-validates every token anyway.
	maxProbeFloats = 16

	// headerProbeLen is the size of the leading raw-int32 header probe.
	headerProbeLen = 8

	// headerProbeMaxDim is the sanity bound for the dimension read by the
	// raw-int32 probe. ASCII digits interpreted as little-endian integers
	// produce values far above any real embedding width, so the bound keeps
	// text headers like "71291 200" from being mistaken for binary.
	headerProbeMaxDim = 1000
)

// DefaultFallback is the classification returned when every heuristic is
// inconclusive. Text is the common interchange layout, and a binary stream
// misread as text fails cleanly during parsing instead of silently
// producing rows.
const DefaultFallback = Text

// Detect classifies the collection named name from a bounded prefix of its
// content. Only the first SniffBudget bytes of prefix are considered.
//
// The rules apply in order, first match wins:
//  1. A ".bin" extension (case-insensitive) means Binary; content is not
//     inspected.
//  2. The first 8 bytes, read as two little-endian int32 values
//     (vocabulary count, dimension), mean Binary when both are positive
//     and the dimension passes a sanity bound.
//  3. A bounded scan over complete lines looks for a plausible embedding
//     row (two or more tokens, non-numeric leading token, float-parseable
//     remainder); finding one means Text. Header-like lines such as
//     "71291 200" have a numeric leading token and are skipped. A line
//     containing a NUL byte or invalid UTF-8 means Binary.
//  4. Anything else falls back to DefaultFallback.
func Detect(name string, prefix []byte) Format {
	return DetectWithFallback(name, prefix, DefaultFallback)
}

// DetectWithFallback is Detect with an explicit inconclusive-case result.
// An invalid fallback is replaced by DefaultFallback.
func DetectWithFallback(name string, prefix []byte, fallback Format) Format {
	if strings.EqualFold(filepath.Ext(name), ".bin") {
		return Binary
	}

	if len(prefix) > SniffBudget {
		prefix = prefix[:SniffBudget]
	}

	if probeRawHeader(prefix) {
		return Binary
	}

	if f, ok := scanPrefixLines(prefix); ok {
		return f
	}

	if fallback != Text && fallback != Binary {
		fallback = DefaultFallback
	}
	return fallback
}

// DetectFile reads up to SniffBudget bytes of the file at path and
// classifies it with Detect.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("format: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, SniffBudget)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("format: read %s: %w", path, err)
	}
	return Detect(path, buf[:n]), nil
}

// probeRawHeader reports whether the prefix opens with a plausible raw
// little-endian (vocab, dim) int32 pair.
func probeRawHeader(prefix []byte) bool {
	if len(prefix) < headerProbeLen {
		return false
	}
	vocab := int32(binary.LittleEndian.Uint32(prefix[0:4]))
	dim := int32(binary.LittleEndian.Uint32(prefix[4:8]))
	return vocab > 0 && dim > 0 && dim < headerProbeMaxDim
}

// scanPrefixLines walks complete lines of the prefix looking for a verdict.
// The final fragment after the last newline may be cut mid-line (and even
// mid-rune) by the sniff budget, so only its NUL bytes are trusted.
func scanPrefixLines(prefix []byte) (Format, bool) {
	rest := prefix
	for i := 0; i < maxScanLines && len(rest) > 0; i++ {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			if bytes.IndexByte(rest, 0) >= 0 {
				return Binary, true
			}
			return 0, false
		}

		line := rest[:nl]
		rest = rest[nl+1:]
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if bytes.IndexByte(line, 0) >= 0 || !utf8.Valid(line) {
			return Binary, true
		}

		if parser.LooksLikeDataRow(strings.Fields(string(line)), maxProbeFloats) {
			return Text, true
		}
	}
	return 0, false
}
