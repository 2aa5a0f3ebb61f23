package spliterator

import (
	"iter"
	"strings"
)

// Characteristics is a bitset describing structural properties of a
// Spliterator and the elements it yields.
type Characteristics uint32

const (
	// Ordered means encounter order is defined and TrySplit returns a
	// strict prefix of the elements.
	Ordered Characteristics = 1 << iota
	// Distinct means no two yielded elements are equal.
	Distinct
	// Sorted means elements are yielded in sorted order.
	Sorted
	// Sized means EstimateSize is exact before traversal or splitting.
	Sized
	// NonNull means no yielded element is a nil value.
	NonNull
	// Immutable means the element source cannot change during traversal.
	Immutable
	// Concurrent means the element source may be safely modified
	// concurrently without external synchronization.
	Concurrent
	// Subsized means every split, and every split of those, is Sized.
	Subsized
)

var characteristicNames = []struct {
	c    Characteristics
	name string
}{
	{Ordered, "ORDERED"},
	{Distinct, "DISTINCT"},
	{Sorted, "SORTED"},
	{Sized, "SIZED"},
	{NonNull, "NONNULL"},
	{Immutable, "IMMUTABLE"},
	{Concurrent, "CONCURRENT"},
	{Subsized, "SUBSIZED"},
}

// Has reports whether all bits in other are set.
func (c Characteristics) Has(other Characteristics) bool {
	return c&other == other
}

func (c Characteristics) String() string {
	var parts []string
	for _, n := range characteristicNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Spliterator is a cursor over a source of elements that can be traversed
// one element at a time, drained in bulk, or split in two for parallel work.
//
// A Spliterator is not safe for concurrent use. Parallel algorithms split it
// and hand each part to exactly one goroutine.
type Spliterator[T any] interface {
	// TryAdvance feeds the next element to action and returns true, or
	// returns false if no elements remain.
	TryAdvance(action func(T)) bool

	// ForEachRemaining feeds every remaining element to action, in
	// encounter order when the source is Ordered.
	ForEachRemaining(action func(T))

	// TrySplit partitions the remaining elements. When it returns true the
	// returned Spliterator covers a non-empty prefix and the receiver covers
	// the rest. It returns false once any traversal method has been called
	// or when the elements cannot or should not be split.
	TrySplit() (Spliterator[T], bool)

	// EstimateSize returns the number of remaining elements, exact when
	// Sized, or math.MaxInt64 when unknown.
	EstimateSize() int64

	// Characteristics returns the characteristic bits of this Spliterator.
	Characteristics() Characteristics
}

// ExactSizeIfKnown returns EstimateSize if s is Sized, otherwise -1.
func ExactSizeIfKnown[T any](s Spliterator[T]) int64 {
	if s.Characteristics().Has(Sized) {
		return s.EstimateSize()
	}
	return -1
}

// All returns s as a range-over-func sequence. Ranging consumes s.
func All[T any](s Spliterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		more := true
		for more && s.TryAdvance(func(v T) { more = yield(v) }) {
		}
	}
}

// Release frees resources held by s, if any. Spliterators created by OfSeq
// hold a pull iterator that must be stopped when traversal ends early.
func Release[T any](s Spliterator[T]) {
	if r, ok := s.(interface{ release() }); ok {
		r.release()
	}
}
