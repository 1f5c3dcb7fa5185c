// Package container defines the on-disk framing this project's CLI wraps
// around a raw range-coded stream so a .wv16 file is self-describing: the
// core codec package itself never reads or writes this header, it only
// ever sees the octets after it.
package container

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic identifies a wv16 container file.
var Magic = [4]byte{'W', 'V', '1', '6'}

// Version is the only container format this package knows how to read.
const Version = 1

// ErrBadMagic is returned by Read when the leading four octets don't match
// Magic.
var ErrBadMagic = errors.New("container: bad magic")

// ErrBadVersion is returned by Read when the version octet is unsupported.
var ErrBadVersion = errors.New("container: unsupported version")

// Header describes the PCM stream that follows it, in enough detail to
// reconstruct an equivalent WAV file after decompression.
type Header struct {
	NumChans   uint8
	SampleRate uint32
	// ByteCount is the total number of raw PCM octets (not frames, not
	// samples) the compressed stream decodes to.
	ByteCount uint64
	// OptVar is carried through to wav16.Options on decode.
	OptVar uint32
}

// Write serializes h to w: magic, version, then the fields of Header in
// little-endian, fixed width.
func Write(w io.Writer, h Header) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return errors.Wrap(err, "container: write magic")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(Version)); err != nil {
		return errors.Wrap(err, "container: write version")
	}
	if err := binary.Write(w, binary.LittleEndian, h.NumChans); err != nil {
		return errors.Wrap(err, "container: write numChans")
	}
	if err := binary.Write(w, binary.LittleEndian, h.SampleRate); err != nil {
		return errors.Wrap(err, "container: write sampleRate")
	}
	if err := binary.Write(w, binary.LittleEndian, h.ByteCount); err != nil {
		return errors.Wrap(err, "container: write byteCount")
	}
	if err := binary.Write(w, binary.LittleEndian, h.OptVar); err != nil {
		return errors.Wrap(err, "container: write optVar")
	}
	return nil
}

// Read parses a Header from the start of r, leaving r positioned at the
// first octet of the compressed stream.
func Read(r io.Reader) (Header, error) {
	var h Header
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return h, errors.Wrap(err, "container: read magic")
	}
	if magic != Magic {
		return h, ErrBadMagic
	}
	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return h, errors.Wrap(err, "container: read version")
	}
	if version != Version {
		return h, ErrBadVersion
	}
	if err := binary.Read(r, binary.LittleEndian, &h.NumChans); err != nil {
		return h, errors.Wrap(err, "container: read numChans")
	}
	if err := binary.Read(r, binary.LittleEndian, &h.SampleRate); err != nil {
		return h, errors.Wrap(err, "container: read sampleRate")
	}
	if err := binary.Read(r, binary.LittleEndian, &h.ByteCount); err != nil {
		return h, errors.Wrap(err, "container: read byteCount")
	}
	if err := binary.Read(r, binary.LittleEndian, &h.OptVar); err != nil {
		return h, errors.Wrap(err, "container: read optVar")
	}
	return h, nil
}
