// Package ringbuffer implements the power-of-two cyclic buffer primitive
// used throughout the codec: a fixed-size array addressed by a monotonic
// position counter masked down to the array's size.
package ringbuffer

import "github.com/pkg/errors"

// defaultPad is the original CyclicBuffer's default padding depth. New and
// Resize take pad explicitly and never fall back to it.
const defaultPad = 4

// Buffer is a fixed power-of-two ring of T, indexed by position & mask.
// A small padding region on both ends of the underlying storage allows
// unmasked reads slightly outside [0, size) without a bounds check; callers
// that never need that (this codec doesn't, see predictor.Channel) can pass
// pad=0 to New.
type Buffer[T any] struct {
	pos     uint64
	mask    uint64
	pad     int
	storage []T
}

// New allocates a ring of size n (must be a power of two) with pad elements
// of slack on each side of the addressable range.
func New[T any](n, pad int) (*Buffer[T], error) {
	b := &Buffer[T]{}
	if err := b.Resize(n, pad); err != nil {
		return nil, err
	}
	return b, nil
}

// Resize reallocates the buffer to size n with the given padding. n must be
// a power of two, or Resize returns a BadConfiguration error and leaves the
// buffer as it was (a buffer that was never sized successfully stays
// unusable).
func (b *Buffer[T]) Resize(n, pad int) error {
	if n <= 0 || n&(n-1) != 0 {
		return errors.Errorf("ringbuffer: size %d is not a power of two", n)
	}
	b.mask = uint64(n - 1)
	b.pad = pad
	b.storage = make([]T, n+2*pad)
	b.pos = 0
	return nil
}

// Pos returns the current write position (monotonically increasing, never
// wrapped explicitly).
func (b *Buffer[T]) Pos() uint64 { return b.pos }

// Mask returns size-1.
func (b *Buffer[T]) Mask() uint64 { return b.mask }

// Size returns mask+1, the ring's capacity.
func (b *Buffer[T]) Size() uint64 { return b.mask + 1 }

// Prev returns (pos-count)&mask, relying on unsigned wraparound.
func (b *Buffer[T]) Prev(pos, count uint64) uint64 { return (pos - count) & b.mask }

// Next returns (pos+count)&mask.
func (b *Buffer[T]) Next(pos, count uint64) uint64 { return (pos + count) & b.mask }

// index maps a logical offset (which may be negative, within pad) to a
// storage slot.
func (b *Buffer[T]) index(offset int) int { return offset + b.pad }

// Push writes v at the current position and advances it by one.
func (b *Buffer[T]) Push(v T) {
	b.storage[b.index(int(b.pos&b.mask))] = v
	b.pos++
}

// PushN writes count elements from src, wrapping across the end of the ring
// in at most two contiguous spans, and always advances pos by len(src)
// regardless of wraparound.
func (b *Buffer[T]) PushN(src []T) {
	masked := int(b.pos & b.mask)
	size := int(b.mask + 1)
	maxSpan := size - masked
	cur := len(src)
	if cur > maxSpan {
		cur = maxSpan
	}
	copy(b.storage[b.index(masked):], src[:cur])
	b.pos += uint64(len(src))
	rest := src[cur:]
	if len(rest) > 0 {
		copy(b.storage[b.index(0):], rest)
	}
}

// At returns the masked element at offset.
func (b *Buffer[T]) At(offset uint64) T {
	return b.storage[b.index(int(offset&b.mask))]
}

// Set writes the masked element at offset.
func (b *Buffer[T]) Set(offset uint64, v T) {
	b.storage[b.index(int(offset&b.mask))] = v
}

// AtUnmasked returns storage[offset] directly, without masking. offset may
// range over [-pad, size+pad) and is the caller's responsibility to keep in
// bounds; it exists for the padded-region reads spec.md §9 describes, and is
// unused by this codec's predictor, which only ever reads through At.
func (b *Buffer[T]) AtUnmasked(offset int) T { return b.storage[b.index(offset)] }

// SetUnmasked writes storage[offset] directly, without masking.
func (b *Buffer[T]) SetUnmasked(offset int, v T) { b.storage[b.index(offset)] = v }

// Fill sets every storage slot, including the padding region, to v.
func (b *Buffer[T]) Fill(v T) {
	for i := range b.storage {
		b.storage[i] = v
	}
}

// CopyStartToEnd mirrors the first k elements into the tail padding region,
// for callers doing LZ-style tail matching against the buffer's wraparound.
func (b *Buffer[T]) CopyStartToEnd(k int) {
	size := int(b.mask + 1)
	for i := 0; i < k; i++ {
		b.storage[b.index(size+i)] = b.storage[b.index(i)]
	}
}

// CopyEndToStart is the dual of CopyStartToEnd.
func (b *Buffer[T]) CopyEndToStart(k int) {
	size := int(b.mask + 1)
	for i := 0; i < k; i++ {
		b.storage[b.index(i)] = b.storage[b.index(size+i)]
	}
}

// Release frees the backing storage and marks the buffer unusable, matching
// the sentinel-mask convention of the original CyclicBuffer.
func (b *Buffer[T]) Release() {
	b.storage = nil
	b.pos = 0
	b.mask = ^uint64(0)
}

// Deque is a CyclicBuffer with explicit front/back bookkeeping, giving FIFO
// semantics with push_back at the ring's write cursor and pop_front
// advancing an independent read cursor.
type Deque[T any] struct {
	Buffer[T]
	frontPos uint64
	size     uint64
}

// NewDeque allocates a deque of capacity n (power of two) with pad elements
// of slack on each side.
func NewDeque[T any](n, pad int) (*Deque[T], error) {
	d := &Deque[T]{}
	if err := d.Resize(n, pad); err != nil {
		return nil, err
	}
	return d, nil
}

// Capacity returns mask+1.
func (d *Deque[T]) Capacity() uint64 { return d.Mask() + 1 }

// Size returns the number of elements currently held.
func (d *Deque[T]) Size() uint64 { return d.size }

// Full reports whether size == capacity.
func (d *Deque[T]) Full() bool { return d.size == d.Capacity() }

// Empty reports whether size == 0.
func (d *Deque[T]) Empty() bool { return d.size == 0 }

// PushBack appends v, requiring the deque not be full.
func (d *Deque[T]) PushBack(v T) error {
	if d.Full() {
		return errors.New("ringbuffer: push_back on full deque")
	}
	d.size++
	d.Push(v)
	return nil
}

// PopFront discards the oldest count elements, requiring size >= count.
func (d *Deque[T]) PopFront(count uint64) error {
	if d.size < count {
		return errors.Errorf("ringbuffer: pop_front(%d) exceeds size %d", count, d.size)
	}
	d.frontPos += count
	d.size -= count
	return nil
}

// Front returns the oldest element.
func (d *Deque[T]) Front() T { return d.Buffer.At(d.frontPos) }

// At returns the element at offset positions after the front.
func (d *Deque[T]) At(offset uint64) T { return d.Buffer.At(d.frontPos + offset) }
