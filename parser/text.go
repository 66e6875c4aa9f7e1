package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxLineBytes bounds a single text line. Real rows top out at a few
// kilobytes (three hundred dimensions at ~12 bytes per token); a line past
// this limit indicates the stream is not line-oriented text.
const maxLineBytes = 1 << 20

// LooksLikeDataRow reports whether fields form a plausible embedding row:
// at least two tokens, a leading token that does not parse as a float, and
// float-parseable remaining tokens. checkLimit bounds how many trailing
// tokens are verified; 0 verifies all of them.
//
// Header lines like "71291 200" have a numeric leading token and therefore
// never match.
func LooksLikeDataRow(fields []string, checkLimit int) bool {
	if len(fields) < 2 {
		return false
	}
	if _, err := strconv.ParseFloat(fields[0], 32); err == nil {
		return false
	}
	rest := fields[1:]
	if checkLimit > 0 && len(rest) > checkLimit {
		rest = rest[:checkLimit]
	}
	for _, tok := range rest {
		if _, err := strconv.ParseFloat(tok, 32); err != nil {
			return false
		}
	}
	return true
}

// ParseText decodes the line-oriented text layout from r.
//
// Each line is split on whitespace. Lines that do not form a valid row are
// skipped without error: blank lines, single-token lines, header lines
// ("71291 200"), lines whose leading token parses as a number, and lines
// with non-numeric or non-finite vector tokens. Values are parsed at
// float32 precision; scientific notation is accepted.
//
// A stream that yields no valid rows returns ErrEmptyVocabulary. Row widths
// are not checked here.
func ParseText(r io.Reader) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	res := &Result{}
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if _, err := strconv.ParseFloat(fields[0], 32); err == nil {
			continue
		}

		vec := make([]float32, 0, len(fields)-1)
		ok := true
		for _, tok := range fields[1:] {
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
			vec = append(vec, float32(v))
		}
		if !ok {
			continue
		}

		res.Words = append(res.Words, fields[0])
		res.Vectors = append(res.Vectors, vec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parser: scan text: %w", err)
	}
	if len(res.Words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return res, nil
}
