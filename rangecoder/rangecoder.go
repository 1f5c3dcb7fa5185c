// Package rangecoder implements a carry-propagating binary range coder:
// 32-bit low/range state, byte-at-a-time normalization, and a pending-0xFF
// run that absorbs carries before they are written out. This is the coder
// the codec calls "Range7" — the same family as the carryOut/normalize
// split in a byte-oriented Opus-style range coder, adapted here to a single
// binary-probability interface instead of cumulative-frequency symbols.
package rangecoder

import "io"

const (
	topBits = 24
	top     = uint32(1) << topBits
)

// Encoder is a carry-propagating binary arithmetic encoder writing to an
// io.ByteWriter. The zero value is not usable; construct with NewEncoder.
type Encoder struct {
	w io.ByteWriter

	low       uint64 // bit 32 set means a carry is pending into cache
	rng       uint32
	cache     byte
	cacheSize uint64
}

// NewEncoder returns an Encoder ready to emit octets to w.
func NewEncoder(w io.ByteWriter) *Encoder {
	e := &Encoder{w: w}
	e.Init()
	return e
}

// Init resets the encoder to its starting state: low=0, range=0xFFFFFFFF.
func (e *Encoder) Init() {
	e.low = 0
	e.rng = 0xFFFFFFFF
	e.cache = 0
	e.cacheSize = 1
}

// shiftLow is the single point where octets leave the encoder. It buffers
// one byte (cache) so that a later carry out of the 32-bit low register can
// still be folded in, and counts runs of 0xFF (cacheSize) so a carry
// propagates through the whole run instead of just the most recent byte.
func (e *Encoder) shiftLow() error {
	if uint32(e.low>>32) != 0 || e.low < 0xFF000000 {
		carry := byte(e.low >> 32)
		b := e.cache + carry
		for {
			if err := e.w.WriteByte(b); err != nil {
				return err
			}
			b = 0xFF + carry
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(e.low >> 24)
	}
	e.cacheSize++
	e.low = (e.low << 8) & 0xFFFFFFFF
	return nil
}

func (e *Encoder) normalize() error {
	for e.rng < top {
		if err := e.shiftLow(); err != nil {
			return err
		}
		e.rng <<= 8
	}
	return nil
}

// EncodeBit encodes a single modelled bit. p is the probability that bit==0,
// expressed in 1/(1<<shift) units (must be in [1, 1<<shift - 1]).
func (e *Encoder) EncodeBit(bit int, p uint32, shift uint) error {
	mid := (e.rng >> shift) * p
	if bit == 0 {
		e.rng = mid
	} else {
		e.low += uint64(mid)
		e.rng -= mid
	}
	return e.normalize()
}

// EncodeDirectBit encodes one equal-probability bit, bypassing the adaptive
// model entirely. Used for the noise bits of a residual.
func (e *Encoder) EncodeDirectBit(bit int) error {
	e.rng >>= 1
	if bit != 0 {
		e.low += uint64(e.rng)
	}
	return e.normalize()
}

// Flush emits the trailing octets the decoder needs to finish reading the
// last symbol. After Flush the encoder must not be used without Init.
func (e *Encoder) Flush() error {
	for i := 0; i < 5; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// Decoder is the dual of Encoder, reading from an io.ByteReader.
type Decoder struct {
	r    io.ByteReader
	rng  uint32
	code uint32
}

// NewDecoder constructs a Decoder and preloads its code register, skipping
// the leading sentinel octet the Encoder always writes first.
func NewDecoder(r io.ByteReader) (*Decoder, error) {
	d := &Decoder{r: r}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init resets the decoder and reads the initial five octets the encoder
// produced: a leading sentinel octet (always 0, the Encoder's cache byte
// flushed on its very first shiftLow, before any real data has been
// folded in) followed by the four octets that seed code.
func (d *Decoder) Init() error {
	d.rng = 0xFFFFFFFF
	d.code = 0
	if _, err := d.r.ReadByte(); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		d.code = d.code<<8 | uint32(b)
	}
	return nil
}

func (d *Decoder) normalize() error {
	for d.rng < top {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		d.code = d.code<<8 | uint32(b)
		d.rng <<= 8
	}
	return nil
}

// DecodeBit decodes a single modelled bit for the same p/shift the encoder
// used to produce it.
func (d *Decoder) DecodeBit(p uint32, shift uint) (int, error) {
	mid := (d.rng >> shift) * p
	var bit int
	if d.code < mid {
		d.rng = mid
	} else {
		d.code -= mid
		d.rng -= mid
		bit = 1
	}
	if err := d.normalize(); err != nil {
		return 0, err
	}
	return bit, nil
}

// DecodeDirectBit decodes one equal-probability bit.
func (d *Decoder) DecodeDirectBit() (int, error) {
	d.rng >>= 1
	var bit int
	if d.code >= d.rng {
		d.code -= d.rng
		bit = 1
	}
	if err := d.normalize(); err != nil {
		return 0, err
	}
	return bit, nil
}
