// Package wav16 orchestrates the linear predictor, the adaptive bit model,
// and the range coder into the lossless 16-bit stereo PCM codec: for each
// frame, a predictor value is subtracted from the true sample, and the
// residual is entropy-coded one bit at a time, except for a few
// least-significant "noise" bits which bypass the adaptive model and are
// range-coded directly.
package wav16

import (
	"io"

	"github.com/fumin/wav16/bitmodel"
	"github.com/fumin/wav16/predictor"
	"github.com/fumin/wav16/rangecoder"
)

const (
	noiseBits    = 3
	nonNoiseBits = 16 - noiseBits
	contextBits  = 2
	modelTableSize = 2 << (nonNoiseBits + contextBits)
)

// Options configures a Codec.
type Options struct {
	// OptVar is reserved for offline autotuning experiments. The core
	// accepts and stores it but its value must never alter encoded output.
	OptVar uint32
}

// Codec holds the model table and per-channel predictor state for one
// compress or decompress pass. It is not safe for concurrent use — spec.md
// §5 is explicit that the core is single-threaded and cooperative.
type Codec struct {
	opt    Options
	models []bitmodel.FastBitModel
	chans  [2]*predictor.Channel
}

// New returns a Codec configured with opt. The model table is allocated
// once here and reused (reset) across calls to Compress/Decompress.
func New(opt Options) *Codec {
	c := &Codec{opt: opt}
	c.reset()
	return c
}

func (c *Codec) reset() {
	if c.models == nil {
		c.models = make([]bitmodel.FastBitModel, modelTableSize)
	}
	for i := range c.models {
		c.models[i] = bitmodel.New()
	}
	c.chans[0] = predictor.NewChannel()
	c.chans[1] = predictor.NewChannel()
}

// base returns the model-table offset for channel, with outer_ctx fixed at
// 0 (reserved for future expansion per spec.md §3).
func base(channel int) uint32 { return uint32(channel) << nonNoiseBits }

// encodeResidual walks the context tree for one channel's 16-bit residual,
// coding the non-noise bits through the adaptive model and the noise bits
// raw, left-to-right (most significant first).
func (c *Codec) encodeResidual(enc *rangecoder.Encoder, channel int, residual uint16) error {
	code := uint32(residual) << 16
	b := base(channel)
	ctx := uint32(1)
	for i := 0; i < nonNoiseBits; i++ {
		m := &c.models[b+ctx]
		p := m.P()
		if p == 0 {
			p = 1
		}
		bit := int(code >> 31)
		code <<= 1
		if err := enc.EncodeBit(bit, p, bitmodel.Shift); err != nil {
			return err
		}
		m.Update(bit)
		ctx = ctx*2 + uint32(bit)
	}
	for i := 0; i < noiseBits; i++ {
		bit := int(code >> 31)
		code <<= 1
		if err := enc.EncodeDirectBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// decodeResidual is the dual of encodeResidual.
func (c *Codec) decodeResidual(dec *rangecoder.Decoder, channel int) (uint16, error) {
	b := base(channel)
	ctx := uint32(1)
	for i := 0; i < nonNoiseBits; i++ {
		m := &c.models[b+ctx]
		p := m.P()
		if p == 0 {
			p = 1
		}
		bit, err := dec.DecodeBit(p, bitmodel.Shift)
		if err != nil {
			return 0, err
		}
		m.Update(bit)
		ctx = ctx*2 + uint32(bit)
	}
	for i := 0; i < noiseBits; i++ {
		bit, err := dec.DecodeDirectBit()
		if err != nil {
			return 0, err
		}
		ctx = ctx*2 + uint32(bit)
	}
	return uint16(ctx ^ (1 << 16)), nil
}

// readFrame reads up to 4 octets from src into buf, stopping short on EOF.
// A short read (n < 4) signals end of stream; per spec.md §4.F no partial
// residual is ever encoded for a short frame.
func readFrame(src io.ByteReader, buf *[4]byte) (n int, err error) {
	for n = 0; n < 4; n++ {
		b, e := src.ReadByte()
		if e != nil {
			return n, e
		}
		buf[n] = b
	}
	return n, nil
}

// Compress reads octets from src four at a time (one stereo frame) until a
// short read, predicting, residual-coding, and updating history for each
// frame, then flushes the range coder.
func (c *Codec) Compress(dst io.ByteWriter, src io.ByteReader) error {
	c.reset()
	enc := rangecoder.NewEncoder(dst)
	var buf [4]byte
	for {
		n, err := readFrame(src, &buf)
		if n < 4 {
			if err != nil && err != io.EOF {
				return err
			}
			break
		}
		a := uint16(buf[0]) | uint16(buf[1])<<8
		b := uint16(buf[2]) | uint16(buf[3])<<8

		predA := c.chans[0].Predict()
		predB := c.chans[1].Predict()
		residA := a - predA
		residB := b - predB

		if err := c.encodeResidual(enc, 0, residA); err != nil {
			return err
		}
		if err := c.encodeResidual(enc, 1, residB); err != nil {
			return err
		}

		c.chans[0].Observe(a)
		c.chans[1].Observe(b)
	}
	return enc.Flush()
}

// undoer is satisfied by sources (such as *stream.Reader) that can rewind
// their own buffered read-ahead once the range decoder no longer needs it.
type undoer interface {
	Undo() error
}

// Decompress reconstructs exactly count octets of PCM from a compressed
// src stream, writing them to dst. If src supports Undo, Decompress calls
// it once done so the caller can chain further reads from exactly the octet
// boundary the range decoder actually consumed.
func (c *Codec) Decompress(dst io.ByteWriter, src io.ByteReader, count int64) error {
	c.reset()
	dec, err := rangecoder.NewDecoder(src)
	if err != nil {
		return err
	}
	for count > 0 {
		predA := c.chans[0].Predict()
		predB := c.chans[1].Predict()

		residA, err := c.decodeResidual(dec, 0)
		if err != nil {
			return err
		}
		residB, err := c.decodeResidual(dec, 1)
		if err != nil {
			return err
		}

		a := predA + residA
		b := predB + residB
		c.chans[0].Observe(a)
		c.chans[1].Observe(b)

		out := [4]byte{byte(a), byte(a >> 8), byte(b), byte(b >> 8)}
		for _, o := range out {
			if count == 0 {
				break
			}
			if err := dst.WriteByte(o); err != nil {
				return err
			}
			count--
		}
	}
	if u, ok := src.(undoer); ok {
		return u.Undo()
	}
	return nil
}
