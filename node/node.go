package node

import (
	"fmt"

	"github.com/kbukum/gostream/buffer"
	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/spliterator"
)

// Node is an immutable, ordered result tree. Leaves hold elements; a conc
// node joins two subtrees and holds no elements of its own.
type Node[T any] interface {
	// Count returns the number of elements in the tree.
	Count() int64
	// Spliterator returns a Sized, Ordered spliterator over the elements.
	Spliterator() spliterator.Spliterator[T]
	// ForEach calls fn for every element in order.
	ForEach(fn func(T))
	// CopyInto copies every element into dst starting at offset.
	CopyInto(dst []T, offset int)
	// AsSlice returns the elements as one slice. For a slice leaf the
	// result shares storage with the node.
	AsSlice() []T
	// ChildCount returns the number of children; 0 for leaves.
	ChildCount() int
	// Child returns child i.
	Child(i int) Node[T]
	// Truncate returns a node holding the elements in [from, to).
	Truncate(from, to int64) Node[T]
}

func checkRange(from, to, count int64) {
	if from < 0 || to > count || from > to {
		panic(errors.InvalidArgument("range", fmt.Sprintf("[%d, %d) out of bounds for count %d", from, to, count)))
	}
}

func checkCopy(offset int, count int64, dst int) {
	if offset < 0 || int64(offset)+count > int64(dst) {
		panic(errors.InvalidArgument("offset", fmt.Sprintf("%d elements do not fit at offset %d of %d", count, offset, dst)))
	}
}

func noChild(i int) {
	panic(errors.InvalidArgument("index", fmt.Sprintf("child %d of a leaf node", i)))
}

// --- slice leaf ---

type sliceNode[T any] struct {
	items []T
}

// OfSlice returns a leaf node over items. The slice is not copied.
func OfSlice[T any](items []T) Node[T] {
	return &sliceNode[T]{items: items}
}

func (n *sliceNode[T]) Count() int64 { return int64(len(n.items)) }

func (n *sliceNode[T]) Spliterator() spliterator.Spliterator[T] {
	return spliterator.OfSlice(n.items)
}

func (n *sliceNode[T]) ForEach(fn func(T)) {
	for _, v := range n.items {
		fn(v)
	}
}

func (n *sliceNode[T]) CopyInto(dst []T, offset int) {
	checkCopy(offset, n.Count(), len(dst))
	copy(dst[offset:], n.items)
}

func (n *sliceNode[T]) AsSlice() []T { return n.items }

func (n *sliceNode[T]) ChildCount() int { return 0 }

func (n *sliceNode[T]) Child(i int) Node[T] {
	noChild(i)
	return nil
}

func (n *sliceNode[T]) Truncate(from, to int64) Node[T] {
	checkRange(from, to, n.Count())
	if from == 0 && to == n.Count() {
		return n
	}
	return &sliceNode[T]{items: n.items[from:to:to]}
}

func (n *sliceNode[T]) String() string {
	return fmt.Sprintf("SliceNode[%d]", len(n.items))
}

// --- buffer leaf ---

type bufferNode[T any] struct {
	buf *buffer.Spined[T]
}

// OfBuffer returns a leaf node over b. b must not be modified afterwards.
func OfBuffer[T any](b *buffer.Spined[T]) Node[T] {
	return &bufferNode[T]{buf: b}
}

func (n *bufferNode[T]) Count() int64 { return n.buf.Count() }

func (n *bufferNode[T]) Spliterator() spliterator.Spliterator[T] { return n.buf.Spliterator() }

func (n *bufferNode[T]) ForEach(fn func(T)) { n.buf.ForEach(fn) }

func (n *bufferNode[T]) CopyInto(dst []T, offset int) {
	checkCopy(offset, n.Count(), len(dst))
	n.buf.CopyInto(dst, offset)
}

func (n *bufferNode[T]) AsSlice() []T { return n.buf.AsSlice() }

func (n *bufferNode[T]) ChildCount() int { return 0 }

func (n *bufferNode[T]) Child(i int) Node[T] {
	noChild(i)
	return nil
}

// Truncate copies the requested range into a slice leaf.
func (n *bufferNode[T]) Truncate(from, to int64) Node[T] {
	checkRange(from, to, n.Count())
	if from == 0 && to == n.Count() {
		return n
	}
	return &sliceNode[T]{items: n.buf.Range(from, to)}
}

func (n *bufferNode[T]) String() string {
	return fmt.Sprintf("BufferNode[%d]", n.buf.Count())
}

// --- empty ---

type emptyNode[T any] struct{}

// Empty returns a node with no elements.
func Empty[T any]() Node[T] { return emptyNode[T]{} }

func (emptyNode[T]) Count() int64 { return 0 }

func (emptyNode[T]) Spliterator() spliterator.Spliterator[T] { return spliterator.Empty[T]() }

func (emptyNode[T]) ForEach(func(T)) {}

func (emptyNode[T]) CopyInto(dst []T, offset int) { checkCopy(offset, 0, len(dst)) }

func (emptyNode[T]) AsSlice() []T { return []T{} }

func (emptyNode[T]) ChildCount() int { return 0 }

func (emptyNode[T]) Child(i int) Node[T] {
	noChild(i)
	return nil
}

func (e emptyNode[T]) Truncate(from, to int64) Node[T] {
	checkRange(from, to, 0)
	return e
}

func (emptyNode[T]) String() string { return "EmptyNode" }

// --- conc ---

type concNode[T any] struct {
	left, right Node[T]
	count       int64
}

// Conc joins left and right, left first. An empty side is elided, so the
// result is only a conc node when both sides hold elements.
func Conc[T any](left, right Node[T]) Node[T] {
	switch {
	case left.Count() == 0:
		return right
	case right.Count() == 0:
		return left
	}
	return &concNode[T]{left: left, right: right, count: left.Count() + right.Count()}
}

func (n *concNode[T]) Count() int64 { return n.count }

func (n *concNode[T]) Spliterator() spliterator.Spliterator[T] {
	return newTreeSpliterator[T](n)
}

func (n *concNode[T]) ForEach(fn func(T)) {
	n.left.ForEach(fn)
	n.right.ForEach(fn)
}

func (n *concNode[T]) CopyInto(dst []T, offset int) {
	checkCopy(offset, n.count, len(dst))
	n.left.CopyInto(dst, offset)
	n.right.CopyInto(dst, offset+int(n.left.Count()))
}

func (n *concNode[T]) AsSlice() []T {
	if n.count >= errors.MaxArraySize {
		panic(errors.CapacityExceeded(n.count))
	}
	out := make([]T, n.count)
	n.CopyInto(out, 0)
	return out
}

func (n *concNode[T]) ChildCount() int { return 2 }

func (n *concNode[T]) Child(i int) Node[T] {
	switch i {
	case 0:
		return n.left
	case 1:
		return n.right
	}
	panic(errors.InvalidArgument("index", fmt.Sprintf("child %d of a conc node", i)))
}

// Truncate recurses only into children that intersect [from, to); a
// range covering a whole child returns that child as is.
func (n *concNode[T]) Truncate(from, to int64) Node[T] {
	checkRange(from, to, n.count)
	if from == 0 && to == n.count {
		return n
	}
	leftCount := n.left.Count()
	switch {
	case from >= leftCount:
		return n.right.Truncate(from-leftCount, to-leftCount)
	case to <= leftCount:
		return n.left.Truncate(from, to)
	}
	return Conc(n.left.Truncate(from, leftCount), n.right.Truncate(0, to-leftCount))
}

func (n *concNode[T]) String() string {
	return fmt.Sprintf("ConcNode[%d](%v, %v)", n.count, n.left, n.right)
}
