package buffer

import (
	"fmt"
	"iter"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/spliterator"
)

const (
	// MinChunkPower is the log2 size of the first two chunks.
	MinChunkPower = 4
	// MaxChunkPower caps chunk growth.
	MaxChunkPower = 30
)

// Spined is an append-only ordered buffer. Elements live in a list of
// chunks (the spine) whose sizes grow geometrically, so growing never
// copies existing elements.
//
// Spined is not safe for concurrent use; a parallel evaluation gives each
// leaf task its own buffer and publishes it only after the leaf finishes.
type Spined[T any] struct {
	chunks [][]T
	// prior[i] is the number of elements stored in chunks before chunk i.
	prior []int64
	// tail is the number of elements in the last chunk.
	tail       int
	chunkPower int
}

// New returns an empty buffer whose first chunk holds 1<<MinChunkPower
// elements.
func New[T any]() *Spined[T] {
	return &Spined[T]{chunkPower: MinChunkPower}
}

// WithCapacity returns an empty buffer whose first chunk holds at least
// capacity elements.
func WithCapacity[T any](capacity int64) *Spined[T] {
	if capacity < 0 {
		panic(errors.InvalidArgument("capacity", fmt.Sprintf("illegal capacity %d", capacity)))
	}
	power := MinChunkPower
	for power < MaxChunkPower && int64(1)<<power < capacity {
		power++
	}
	return &Spined[T]{chunkPower: power}
}

// chunkSize returns the length of chunk n: the first two chunks share the
// initial size, every later chunk doubles.
func (b *Spined[T]) chunkSize(n int) int {
	power := b.chunkPower
	if n > 1 {
		power = min(b.chunkPower+n-1, MaxChunkPower)
	}
	return 1 << power
}

// Count returns the number of elements appended.
func (b *Spined[T]) Count() int64 {
	if len(b.chunks) == 0 {
		return 0
	}
	last := len(b.chunks) - 1
	return b.prior[last] + int64(b.tail)
}

// Capacity returns the number of elements the allocated chunks can hold.
func (b *Spined[T]) Capacity() int64 {
	if len(b.chunks) == 0 {
		return 0
	}
	last := len(b.chunks) - 1
	return b.prior[last] + int64(len(b.chunks[last]))
}

// ChunkCount returns the number of chunks in the spine.
func (b *Spined[T]) ChunkCount() int { return len(b.chunks) }

func (b *Spined[T]) grow() {
	if len(b.chunks) > 0 {
		if b.Capacity() >= errors.MaxArraySize {
			panic(errors.CapacityExceeded(b.Capacity() + 1))
		}
	}
	n := len(b.chunks)
	var prior int64
	if n > 0 {
		prior = b.prior[n-1] + int64(len(b.chunks[n-1]))
	}
	b.chunks = append(b.chunks, make([]T, b.chunkSize(n)))
	b.prior = append(b.prior, prior)
	b.tail = 0
}

// Accept appends v.
func (b *Spined[T]) Accept(v T) {
	if len(b.chunks) == 0 || b.tail == len(b.chunks[len(b.chunks)-1]) {
		b.grow()
	}
	b.chunks[len(b.chunks)-1][b.tail] = v
	b.tail++
}

// Begin prepares the buffer to receive size more elements (-1 if unknown).
// Together with Accept, End and CancellationRequested it makes Spined a
// sink.Sink.
func (b *Spined[T]) Begin(size int64) {
	if size > 0 && len(b.chunks) == 0 && size > int64(b.chunkSize(0)) {
		*b = *WithCapacity[T](min(size, int64(1)<<MaxChunkPower))
	}
}

// End is a no-op.
func (b *Spined[T]) End() {}

// CancellationRequested always returns false.
func (b *Spined[T]) CancellationRequested() bool { return false }

// Get returns the element at index i.
func (b *Spined[T]) Get(i int64) T {
	if i < 0 || i >= b.Count() {
		panic(errors.InvalidArgument("index", fmt.Sprintf("index %d out of range [0, %d)", i, b.Count())))
	}
	c := b.chunkOf(i)
	return b.chunks[c][i-b.prior[c]]
}

// chunkOf returns the index of the chunk holding element i.
func (b *Spined[T]) chunkOf(i int64) int {
	// chunks grow geometrically, so a linear scan is O(log n)
	c := len(b.chunks) - 1
	for c > 0 && b.prior[c] > i {
		c--
	}
	return c
}

// Range returns a new slice holding the elements at [from, to). Only the
// chunks overlapping the range are visited.
func (b *Spined[T]) Range(from, to int64) []T {
	if from < 0 || from > to || to > b.Count() {
		panic(errors.InvalidArgument("range", fmt.Sprintf("[%d, %d) out of range [0, %d]", from, to, b.Count())))
	}
	out := make([]T, to-from)
	if len(out) == 0 {
		return out
	}
	c := b.chunkOf(from)
	n := copy(out, b.chunks[c][from-b.prior[c]:])
	for n < len(out) {
		c++
		n += copy(out[n:], b.chunks[c])
	}
	return out
}

// CopyInto copies every element into dst starting at offset.
func (b *Spined[T]) CopyInto(dst []T, offset int) {
	end := int64(offset) + b.Count()
	if offset < 0 || end > int64(len(dst)) {
		panic(errors.InvalidArgument("offset", fmt.Sprintf("does not fit: offset %d, count %d, len %d", offset, b.Count(), len(dst))))
	}
	for i, c := range b.chunks {
		n := len(c)
		if i == len(b.chunks)-1 {
			n = b.tail
		}
		offset += copy(dst[offset:], c[:n])
	}
}

// AsSlice returns a new slice holding every element in append order.
func (b *Spined[T]) AsSlice() []T {
	size := b.Count()
	if size >= errors.MaxArraySize {
		panic(errors.CapacityExceeded(size))
	}
	out := make([]T, size)
	b.CopyInto(out, 0)
	return out
}

// ForEach calls fn for every element in append order.
func (b *Spined[T]) ForEach(fn func(T)) {
	for i, c := range b.chunks {
		n := len(c)
		if i == len(b.chunks)-1 {
			n = b.tail
		}
		for _, v := range c[:n] {
			fn(v)
		}
	}
}

// All returns the elements as a range-over-func sequence.
func (b *Spined[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i, c := range b.chunks {
			n := len(c)
			if i == len(b.chunks)-1 {
				n = b.tail
			}
			for _, v := range c[:n] {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Clear removes every element, keeping the first chunk for reuse.
func (b *Spined[T]) Clear() {
	if len(b.chunks) == 0 {
		return
	}
	first := b.chunks[0]
	clear(first)
	b.chunks = [][]T{first}
	b.prior = []int64{0}
	b.tail = 0
}

// Spliterator returns a Sized, Subsized, Ordered spliterator over the
// elements present now. It splits on chunk boundaries first, then halves
// the last chunk.
func (b *Spined[T]) Spliterator() spliterator.Spliterator[T] {
	if len(b.chunks) == 0 {
		return spliterator.Empty[T]()
	}
	return &spinedSpliterator[T]{
		b:         b,
		lastSpine: len(b.chunks) - 1,
		lastFence: b.tail,
	}
}

func (b *Spined[T]) String() string {
	return fmt.Sprintf("Spined[count=%d, chunks=%d]", b.Count(), len(b.chunks))
}
