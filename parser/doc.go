// Package parser decodes pretrained embedding collections into raw rows.
//
// Two layouts are supported: the line-oriented text layout
// ("word v1 v2 ... vD" per line) and the packed binary layout (an ASCII
// "<vocab> <dim>" header line followed by word records carrying
// little-endian float32 vectors).
//
// The parsers stop at rows: they do not build lookup structures,
// deduplicate words, or enforce a uniform row width. Shape and norm
// invariants are checked once, by the store constructor.
package parser
