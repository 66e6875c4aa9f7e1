package snapshot

import (
	"hash"
	"hash/crc32"
	"io"
)

// checksumWriter tees writes into a CRC32-IEEE hash so the trailer can
// be computed without buffering the payload.
type checksumWriter struct {
	w   io.Writer
	crc hash.Hash32
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{
		w:   w,
		crc: crc32.New(crc32.MakeTable(crc32.IEEE)),
	}
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		cw.crc.Write(p[:n])
	}
	return n, err
}

// Sum returns the checksum of everything written so far.
func (cw *checksumWriter) Sum() uint32 {
	return cw.crc.Sum32()
}
