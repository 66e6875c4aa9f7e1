package wordvec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/wordvec/parser"
)

var (
	// ErrNotFound is returned when a word is not in the vocabulary.
	ErrNotFound = errors.New("word not found")

	// ErrInvalidHeader is returned when a binary header line is malformed.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrTruncated is returned when a binary stream ends mid-record.
	ErrTruncated = errors.New("truncated stream")

	// ErrEmptyVocabulary is returned when an input yields no vocabulary
	// entries.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// ShapeMismatchError indicates that the vocabulary and the vector matrix
// disagree: either the word and row counts differ, or a row's width differs
// from the first row's.
type ShapeMismatchError struct {
	Expected int
	Actual   int
	Row      int // offending row, or -1 when the counts themselves disagree
}

func (e *ShapeMismatchError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("shape mismatch: %d words, %d vector rows", e.Expected, e.Actual)
	}
	return fmt.Sprintf("shape mismatch: row %d has width %d, want %d", e.Row, e.Actual, e.Expected)
}

// ZeroNormError indicates a vocabulary entry whose vector has no positive
// Euclidean norm. Cosine similarity is undefined for such rows.
type ZeroNormError struct {
	Word string
	Row  int
}

func (e *ZeroNormError) Error() string {
	return fmt.Sprintf("vector for %q (row %d) has zero norm", e.Word, e.Row)
}

// translateError lifts parser-level failures into the package taxonomy.
// Plain I/O errors pass through wrapped but unclassified.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, parser.ErrInvalidHeader) {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if errors.Is(err, parser.ErrTruncated) || errors.Is(err, parser.ErrWordTooLong) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if errors.Is(err, parser.ErrEmptyVocabulary) {
		return fmt.Errorf("%w: %w", ErrEmptyVocabulary, err)
	}

	return err
}
