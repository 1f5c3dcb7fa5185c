// Package predictor implements the second-difference linear predictor the
// codec subtracts from each sample before entropy coding.
package predictor

import "github.com/fumin/wav16/ringbuffer"

// historyDepth is the smallest power of two that still holds last1..last3.
const historyDepth = 4

// Channel tracks one audio channel's last three reconstructed samples and
// produces the fixed prediction the codec's residual is taken against. The
// history lives in a ringbuffer.Buffer rather than three scalar fields so
// the cyclic buffer primitive is actually exercised by the core, not just
// defined for its own sake.
type Channel struct {
	history *ringbuffer.Buffer[uint16]
}

// NewChannel returns a Channel with zeroed history, matching the codec's
// "initial value zero on both encoder and decoder" rule.
func NewChannel() *Channel {
	// historyDepth is a fixed power of two; New cannot fail here.
	history, _ := ringbuffer.New[uint16](historyDepth, 0)
	for i := 0; i < historyDepth; i++ {
		history.Push(0)
	}
	return &Channel{history: history}
}

func (c *Channel) last(k uint64) uint16 {
	return c.history.At(c.history.Pos() - k)
}

// Predict returns 2*last1 - last2, mod 2^16 — exact for constant and linear
// signals, the discrete second-difference extrapolator.
func (c *Channel) Predict() uint16 {
	last1 := uint32(c.last(1))
	last2 := uint32(c.last(2))
	return uint16(2*last1 - last2)
}

// Last3 returns the third-most-recent sample. It is not used by Predict:
// spec.md's active predictor only needs last1/last2, but last3 is kept
// available for an alternate predictor family that trains on it (and on the
// other channel's last1) without ever feeding its output to the coder — see
// the dead LinearMixer note. No second predictor is implemented here.
func (c *Channel) Last3() uint16 { return c.last(3) }

// Observe records sample as the newest value in history: the true sample on
// the encoder side, or pred+residual on the decoder side. Must be called
// exactly once per frame, after both channels of the frame have been coded.
func (c *Channel) Observe(sample uint16) {
	c.history.Push(sample)
}
