package stage

import (
	"iter"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/sink"
)

// Op is one pipeline operation: a function from the downstream sink to the
// sink its upstream pushes into. flags are the combined flags of every
// stage before this one.
type Op[In, Out any] interface {
	Flags() Flags
	Wrap(flags Flag, downstream sink.Sink[Out]) sink.Sink[In]
}

type funcOp[In, Out any] struct {
	flags Flags
	wrap  func(Flag, sink.Sink[Out]) sink.Sink[In]
}

// NewOp builds an Op from its flag effects and wrap function.
func NewOp[In, Out any](flags Flags, wrap func(Flag, sink.Sink[Out]) sink.Sink[In]) Op[In, Out] {
	return &funcOp[In, Out]{flags: flags, wrap: wrap}
}

func (o *funcOp[In, Out]) Flags() Flags { return o.flags }

func (o *funcOp[In, Out]) Wrap(flags Flag, downstream sink.Sink[Out]) sink.Sink[In] {
	return o.wrap(flags, downstream)
}

// Checked returns op with the sink it wraps enforcing the Begin/Accept/End
// protocol (see sink.Checked). Flags are unchanged.
func Checked[In, Out any](op Op[In, Out]) Op[In, Out] {
	return NewOp(op.Flags(), func(flags Flag, down sink.Sink[Out]) sink.Sink[In] {
		return sink.Checked(op.Wrap(flags, down))
	})
}

// --- stateless operations ---

type mapSink[In, Out any] struct {
	sink.Chained[Out]
	fn func(In) Out
}

func (s *mapSink[In, Out]) Accept(v In) { s.Downstream.Accept(s.fn(v)) }

// Map transforms every element. Panics with an invalid-argument error if fn
// is nil.
func Map[In, Out any](fn func(In) Out) Op[In, Out] {
	mustFunc(fn == nil, "mapper")
	return NewOp(Flags{Clear: Sorted | Distinct}, func(_ Flag, down sink.Sink[Out]) sink.Sink[In] {
		return &mapSink[In, Out]{Chained: sink.Chained[Out]{Downstream: down}, fn: fn}
	})
}

type filterSink[T any] struct {
	sink.Chained[T]
	pred func(T) bool
}

func (s *filterSink[T]) Begin(int64) { s.Downstream.Begin(-1) }

func (s *filterSink[T]) Accept(v T) {
	if s.pred(v) {
		s.Downstream.Accept(v)
	}
}

// Filter keeps the elements matching pred. The output size is unknown.
func Filter[T any](pred func(T) bool) Op[T, T] {
	mustFunc(pred == nil, "predicate")
	return NewOp(Flags{Clear: Sized}, func(_ Flag, down sink.Sink[T]) sink.Sink[T] {
		return &filterSink[T]{Chained: sink.Chained[T]{Downstream: down}, pred: pred}
	})
}

type flatMapSink[In, Out any] struct {
	sink.Chained[Out]
	fn            func(In) iter.Seq[Out]
	cancelPolling bool
}

func (s *flatMapSink[In, Out]) Begin(int64) { s.Downstream.Begin(-1) }

func (s *flatMapSink[In, Out]) Accept(v In) {
	seq := s.fn(v)
	if seq == nil {
		return
	}
	if !s.cancelPolling {
		for out := range seq {
			s.Downstream.Accept(out)
		}
		return
	}
	for out := range seq {
		if s.Downstream.CancellationRequested() {
			return
		}
		s.Downstream.Accept(out)
	}
}

// CancellationRequested is only polled by short-circuiting pipelines; once
// it has been, inner sequences are also cut short between elements.
func (s *flatMapSink[In, Out]) CancellationRequested() bool {
	s.cancelPolling = true
	return s.Downstream.CancellationRequested()
}

// FlatMap replaces every element with the elements of fn(element). A nil
// sequence contributes nothing.
func FlatMap[In, Out any](fn func(In) iter.Seq[Out]) Op[In, Out] {
	mustFunc(fn == nil, "mapper")
	return NewOp(Flags{Clear: Sized | Sorted | Distinct}, func(_ Flag, down sink.Sink[Out]) sink.Sink[In] {
		return &flatMapSink[In, Out]{Chained: sink.Chained[Out]{Downstream: down}, fn: fn}
	})
}

type peekSink[T any] struct {
	sink.Chained[T]
	fn func(T)
}

func (s *peekSink[T]) Accept(v T) {
	s.fn(v)
	s.Downstream.Accept(v)
}

// Peek calls fn on every element as it flows past.
func Peek[T any](fn func(T)) Op[T, T] {
	mustFunc(fn == nil, "action")
	return NewOp(Flags{}, func(_ Flag, down sink.Sink[T]) sink.Sink[T] {
		return &peekSink[T]{Chained: sink.Chained[T]{Downstream: down}, fn: fn}
	})
}

// Unordered drops the encounter-order requirement without touching the
// elements.
func Unordered[T any]() Op[T, T] {
	return NewOp(Flags{Clear: Ordered}, func(_ Flag, down sink.Sink[T]) sink.Sink[T] {
		return down
	})
}

type sliceSink[T any] struct {
	sink.Chained[T]
	skip, limit int64
	n, m        int64
}

func (s *sliceSink[T]) Begin(size int64) {
	s.n, s.m = s.skip, s.limit
	s.Downstream.Begin(slicedSize(size, s.skip, s.limit))
}

func (s *sliceSink[T]) Accept(v T) {
	if s.n > 0 {
		s.n--
		return
	}
	if s.m != 0 {
		if s.m > 0 {
			s.m--
		}
		s.Downstream.Accept(v)
	}
}

func (s *sliceSink[T]) CancellationRequested() bool {
	return s.m == 0 || s.Downstream.CancellationRequested()
}

// Slice skips skip elements and passes at most limit (limit < 0 means
// unlimited) in a single sequential traversal. Parallel evaluation slices
// the source instead; see spliterator.Slice.
func Slice[T any](skip, limit int64) Op[T, T] {
	if skip < 0 {
		panic(errors.InvalidArgument("skip", "skip must not be negative"))
	}
	flags := Flags{Clear: Sized}
	if limit >= 0 {
		flags.Set = ShortCircuit
	}
	return NewOp(flags, func(_ Flag, down sink.Sink[T]) sink.Sink[T] {
		return &sliceSink[T]{Chained: sink.Chained[T]{Downstream: down}, skip: skip, limit: limit}
	})
}

func slicedSize(size, skip, limit int64) int64 {
	if size < 0 {
		return -1
	}
	size = max(size-skip, 0)
	if limit >= 0 {
		size = min(size, limit)
	}
	return size
}

func mustFunc(isNil bool, name string) {
	if isNil {
		panic(errors.NilArgument(name))
	}
}
