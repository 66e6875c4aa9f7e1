package parser

import "errors"

var (
	// ErrInvalidHeader is returned when the binary header line is missing,
	// overlong, or does not hold exactly two positive integers.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrTruncated is returned when a binary stream ends before the record
	// count declared by its header has been read.
	ErrTruncated = errors.New("truncated stream")

	// ErrEmptyVocabulary is returned when a text stream yields no valid rows.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrWordTooLong is returned when a binary word field exceeds
	// MaxWordBytes, which in practice means the stream is not in the packed
	// layout at all.
	ErrWordTooLong = errors.New("word exceeds size limit")
)

// Result holds the rows decoded from an embedding collection, in input
// order. Duplicate words are kept as separate rows, and text rows may have
// differing widths; both are resolved by the store constructor.
type Result struct {
	Words   []string
	Vectors [][]float32
}
