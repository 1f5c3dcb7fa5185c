// Package stream provides the buffered octet source spec.md calls an
// external collaborator of the codec core: a bufio.Reader wrapper that can
// report how many buffered-but-undelivered octets it is holding and undo
// that read-ahead once a consumer (the range decoder) stops needing input.
package stream

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// DefaultBufSize matches the original BufferedStreamReader's 4KB window.
const DefaultBufSize = 4096

// ErrNotSeekable is returned by Undo when the underlying reader cannot be
// rewound.
var ErrNotSeekable = errors.New("stream: underlying reader does not support seek")

// Reader is a buffered io.ByteReader that tracks its own read-ahead.
type Reader struct {
	br *bufio.Reader
	rs io.ReadSeeker
}

// NewReader wraps r with the default buffer size.
func NewReader(r io.Reader) *Reader { return NewReaderSize(r, DefaultBufSize) }

// NewReaderSize wraps r with a buffer of the given size.
func NewReaderSize(r io.Reader, size int) *Reader {
	rd := &Reader{br: bufio.NewReaderSize(r, size)}
	rd.rs, _ = r.(io.ReadSeeker)
	return rd
}

// ReadByte satisfies io.ByteReader.
func (s *Reader) ReadByte() (byte, error) { return s.br.ReadByte() }

// Read satisfies io.Reader, so a Reader also serves callers (such as
// internal/container) that parse a fixed-width header ahead of the octet
// stream the codec core reads one byte at a time.
func (s *Reader) Read(p []byte) (int, error) { return s.br.Read(p) }

// Remain reports how many octets are buffered but not yet delivered via
// ReadByte.
func (s *Reader) Remain() int { return s.br.Buffered() }

// Undo seeks the underlying reader back by Remain() octets, so a later
// consumer picks up exactly where the last ReadByte call left off logically,
// undoing bufio's read-ahead. The underlying reader must implement
// io.Seeker, or Undo returns ErrNotSeekable.
func (s *Reader) Undo() error {
	remain := s.Remain()
	if remain == 0 {
		return nil
	}
	if s.rs == nil {
		return ErrNotSeekable
	}
	_, err := s.rs.Seek(-int64(remain), io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "stream: undo read-ahead")
	}
	s.br.Reset(s.rs)
	return nil
}
