package stage

import (
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/spliterator"
)

// Segment is a fused pipeline bound to one (sub)range of its source: the
// source spliterator plus every operation applied to it so far. Terminal
// operations evaluate a Segment sequentially, or split it and evaluate the
// parts in parallel; either way each part is traversed exactly once.
type Segment[T any] interface {
	// Flags returns the combined flags of the source and every operation.
	Flags() Flag

	// SourceCharacteristics returns the characteristics of the underlying
	// source spliterator.
	SourceCharacteristics() spliterator.Characteristics

	// EstimateSize returns the size estimate of the underlying source.
	EstimateSize() int64

	// ExactOutputSize returns the number of elements this segment will push,
	// or -1 if that is not known without traversal.
	ExactOutputSize() int64

	// TrySplit splits the underlying source; the returned segment covers
	// the prefix and carries the same operations.
	TrySplit() (Segment[T], bool)

	// WrapAndCopyInto pushes every output element into s, honoring
	// cancellation when the pipeline is short-circuiting.
	WrapAndCopyInto(s sink.Sink[T])

	// CopyIntoWithCancel pushes output elements into s, polling
	// CancellationRequested between source elements. It reports whether
	// the traversal stopped because cancellation was requested.
	CopyIntoWithCancel(s sink.Sink[T]) bool

	// Pusher wraps s in the fused chain and calls Begin. step advances the
	// source by one element and returns false once the source is exhausted
	// or the chain requests cancellation; finish calls End. Used to
	// traverse a segment incrementally.
	Pusher(s sink.Sink[T]) (step func() bool, finish func())

	copyInto(s sink.Sink[T], cancelable bool) bool
}

// sourceSegment is the head of a pipeline.
type sourceSegment[T any] struct {
	src   spliterator.Spliterator[T]
	flags Flag
}

// Source starts a pipeline over s. The source flags are derived from the
// characteristics of s.
func Source[T any](s spliterator.Spliterator[T]) Segment[T] {
	return &sourceSegment[T]{src: s, flags: FromCharacteristics(s.Characteristics())}
}

func (g *sourceSegment[T]) Flags() Flag { return g.flags }

func (g *sourceSegment[T]) SourceCharacteristics() spliterator.Characteristics {
	return g.src.Characteristics()
}

func (g *sourceSegment[T]) EstimateSize() int64 { return g.src.EstimateSize() }

func (g *sourceSegment[T]) ExactOutputSize() int64 {
	return spliterator.ExactSizeIfKnown(g.src)
}

func (g *sourceSegment[T]) TrySplit() (Segment[T], bool) {
	left, ok := g.src.TrySplit()
	if !ok {
		return nil, false
	}
	return &sourceSegment[T]{src: left, flags: g.flags}, true
}

func (g *sourceSegment[T]) WrapAndCopyInto(s sink.Sink[T]) {
	g.copyInto(s, g.flags.Has(ShortCircuit))
}

func (g *sourceSegment[T]) CopyIntoWithCancel(s sink.Sink[T]) bool {
	return g.copyInto(s, true)
}

func (g *sourceSegment[T]) copyInto(s sink.Sink[T], cancelable bool) bool {
	s.Begin(spliterator.ExactSizeIfKnown(g.src))
	if !cancelable {
		g.src.ForEachRemaining(s.Accept)
		s.End()
		return false
	}
	canceled := false
	for {
		if canceled = s.CancellationRequested(); canceled {
			break
		}
		if !g.src.TryAdvance(s.Accept) {
			break
		}
	}
	s.End()
	return canceled
}

func (g *sourceSegment[T]) Pusher(s sink.Sink[T]) (func() bool, func()) {
	s.Begin(spliterator.ExactSizeIfKnown(g.src))
	return func() bool {
		return !s.CancellationRequested() && g.src.TryAdvance(s.Accept)
	}, s.End
}

// chainedSegment appends one operation to an upstream segment.
type chainedSegment[In, Out any] struct {
	up    Segment[In]
	op    Op[In, Out]
	flags Flag
}

// Then appends op to up. No traversal happens; the operation is fused
// into the chain built when the segment is finally copied into a sink.
func Then[In, Out any](up Segment[In], op Op[In, Out]) Segment[Out] {
	return &chainedSegment[In, Out]{up: up, op: op, flags: op.Flags().Apply(up.Flags())}
}

func (g *chainedSegment[In, Out]) Flags() Flag { return g.flags }

func (g *chainedSegment[In, Out]) SourceCharacteristics() spliterator.Characteristics {
	return g.up.SourceCharacteristics()
}

func (g *chainedSegment[In, Out]) EstimateSize() int64 { return g.up.EstimateSize() }

func (g *chainedSegment[In, Out]) ExactOutputSize() int64 {
	if !g.flags.Has(Sized) {
		return -1
	}
	return g.up.ExactOutputSize()
}

func (g *chainedSegment[In, Out]) TrySplit() (Segment[Out], bool) {
	left, ok := g.up.TrySplit()
	if !ok {
		return nil, false
	}
	return &chainedSegment[In, Out]{up: left, op: g.op, flags: g.flags}, true
}

func (g *chainedSegment[In, Out]) WrapAndCopyInto(s sink.Sink[Out]) {
	g.copyInto(s, g.flags.Has(ShortCircuit))
}

func (g *chainedSegment[In, Out]) CopyIntoWithCancel(s sink.Sink[Out]) bool {
	return g.copyInto(s, true)
}

func (g *chainedSegment[In, Out]) copyInto(s sink.Sink[Out], cancelable bool) bool {
	return g.up.copyInto(g.op.Wrap(g.up.Flags(), s), cancelable)
}

func (g *chainedSegment[In, Out]) Pusher(s sink.Sink[Out]) (func() bool, func()) {
	return g.up.Pusher(g.op.Wrap(g.up.Flags(), s))
}

// SourceWithFlags starts a pipeline over s with explicit flags, used when
// a pipeline resumes from a materialized intermediate result whose flags
// differ from the characteristics of its spliterator.
func SourceWithFlags[T any](s spliterator.Spliterator[T], flags Flag) Segment[T] {
	return &sourceSegment[T]{src: s, flags: flags}
}
