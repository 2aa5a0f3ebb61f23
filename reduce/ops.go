package reduce

import (
	"cmp"
	"context"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/stage"
)

// Optional is a value that may be absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, present: true} }

// None returns an absent Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.present }

// IsPresent reports whether a value is present.
func (o Optional[T]) IsPresent() bool { return o.present }

// OrElse returns the value if present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

func mustFunc(isNil bool, name string) {
	if isNil {
		panic(errors.NilArgument(name))
	}
}

// --- fold ---

type foldSink[T, U any] struct {
	seed       U
	state      U
	accumulate func(U, T) U
	combine    func(U, U) U
}

func (s *foldSink[T, U]) Begin(int64)                   { s.state = s.seed }
func (s *foldSink[T, U]) Accept(v T)                    { s.state = s.accumulate(s.state, v) }
func (s *foldSink[T, U]) End()                          {}
func (s *foldSink[T, U]) CancellationRequested() bool   { return false }
func (s *foldSink[T, U]) Combine(other *foldSink[T, U]) { s.state = s.combine(s.state, other.state) }
func (s *foldSink[T, U]) Get() U                        { return s.state }

// Fold reduces with a seed. For parallel results to equal sequential ones
// seed must be an identity of combine and combine must be associative and
// compatible with accumulate.
func Fold[T, U any](seed U, accumulate func(U, T) U, combine func(U, U) U) Op[T, U] {
	mustFunc(accumulate == nil, "accumulator")
	mustFunc(combine == nil, "combiner")
	return New[T, U]("fold", func() *foldSink[T, U] {
		return &foldSink[T, U]{seed: seed, state: seed, accumulate: accumulate, combine: combine}
	})
}

// --- reduce without identity ---

type reduceSink[T any] struct {
	state   Optional[T]
	combine func(T, T) T
}

func (s *reduceSink[T]) Begin(int64) { s.state = None[T]() }

func (s *reduceSink[T]) Accept(v T) {
	if s.state.present {
		s.state.value = s.combine(s.state.value, v)
		return
	}
	s.state = Some(v)
}

func (s *reduceSink[T]) End()                        {}
func (s *reduceSink[T]) CancellationRequested() bool { return false }

func (s *reduceSink[T]) Combine(other *reduceSink[T]) {
	if other.state.present {
		s.Accept(other.state.value)
	}
}

func (s *reduceSink[T]) Get() Optional[T] { return s.state }

// Reduce combines the elements with an associative op. The result is
// absent when there are no elements.
func Reduce[T any](op func(T, T) T) Op[T, Optional[T]] {
	mustFunc(op == nil, "operator")
	return New[T, Optional[T]]("reduce", func() *reduceSink[T] {
		return &reduceSink[T]{combine: op}
	})
}

// Min returns the smallest element.
func Min[T cmp.Ordered]() Op[T, Optional[T]] {
	return Reduce(func(a, b T) T { return min(a, b) })
}

// Max returns the largest element.
func Max[T cmp.Ordered]() Op[T, Optional[T]] {
	return Reduce(func(a, b T) T { return max(a, b) })
}

// --- mutable containers ---

type collectSink[T, C any] struct {
	supplier   func() C
	container  C
	accumulate func(C, T)
	combine    func(C, C)
}

func (s *collectSink[T, C]) Begin(int64)                      { s.container = s.supplier() }
func (s *collectSink[T, C]) Accept(v T)                       { s.accumulate(s.container, v) }
func (s *collectSink[T, C]) End()                             {}
func (s *collectSink[T, C]) CancellationRequested() bool      { return false }
func (s *collectSink[T, C]) Combine(other *collectSink[T, C]) { s.combine(s.container, other.container) }
func (s *collectSink[T, C]) Get() C                           { return s.container }

// CollectInto accumulates into mutable containers made by supplier; each
// leaf fills its own container and combine merges the right container
// into the left one.
func CollectInto[T, C any](supplier func() C, accumulate func(C, T), combine func(C, C)) Op[T, C] {
	mustFunc(supplier == nil, "supplier")
	mustFunc(accumulate == nil, "accumulator")
	mustFunc(combine == nil, "combiner")
	return New[T, C]("collect_into", func() *collectSink[T, C] {
		return &collectSink[T, C]{supplier: supplier, accumulate: accumulate, combine: combine}
	})
}

// Collector describes a reduction into an intermediate A finished into R.
type Collector[T, A, R any] struct {
	Supplier    func() A
	Accumulator func(A, T) A
	Combiner    func(A, A) A
	// Finisher converts the final A; nil requires A and R to be the same
	// type.
	Finisher func(A) R
}

type collectorOp[T, A, R any] struct {
	fold     ParallelOp[T, A]
	finisher func(A) R
}

// Collect returns the reduction described by c.
func Collect[T, A, R any](c Collector[T, A, R]) Op[T, R] {
	mustFunc(c.Supplier == nil, "supplier")
	mustFunc(c.Accumulator == nil, "accumulator")
	mustFunc(c.Combiner == nil, "combiner")
	finisher := c.Finisher
	if finisher == nil {
		finisher = func(a A) R {
			r, ok := any(a).(R)
			if !ok {
				panic(errors.InvalidArgument("finisher", "required when the container and result types differ"))
			}
			return r
		}
	}
	return &collectorOp[T, A, R]{
		fold: New[T, A]("collect", func() *collectorSink[T, A] {
			return &collectorSink[T, A]{c: c.Supplier, acc: c.Accumulator, comb: c.Combiner}
		}),
		finisher: finisher,
	}
}

func (o *collectorOp[T, A, R]) EvaluateSequential(seg stage.Segment[T]) R {
	return o.finisher(o.fold.EvaluateSequential(seg))
}

func (o *collectorOp[T, A, R]) EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (R, error) {
	a, err := o.fold.EvaluateParallel(ctx, cfg, seg)
	if err != nil {
		var zero R
		return zero, err
	}
	var r R
	err = forkjoin.Try(func() { r = o.finisher(a) })
	return r, err
}

type collectorSink[T, A any] struct {
	c     func() A
	acc   func(A, T) A
	comb  func(A, A) A
	state A
}

func (s *collectorSink[T, A]) Begin(int64)                        { s.state = s.c() }
func (s *collectorSink[T, A]) Accept(v T)                         { s.state = s.acc(s.state, v) }
func (s *collectorSink[T, A]) End()                               {}
func (s *collectorSink[T, A]) CancellationRequested() bool        { return false }
func (s *collectorSink[T, A]) Combine(other *collectorSink[T, A]) { s.state = s.comb(s.state, other.state) }
func (s *collectorSink[T, A]) Get() A                             { return s.state }

// ToSlice collects the elements into a slice in encounter order.
func ToSlice[T any]() Collector[T, []T, []T] {
	return Collector[T, []T, []T]{
		Supplier:    func() []T { return nil },
		Accumulator: func(s []T, v T) []T { return append(s, v) },
		Combiner:    func(a, b []T) []T { return append(a, b...) },
	}
}

// GroupBy collects the elements into slices keyed by key.
func GroupBy[T any, K comparable](key func(T) K) Collector[T, map[K][]T, map[K][]T] {
	mustFunc(key == nil, "key")
	return Collector[T, map[K][]T, map[K][]T]{
		Supplier: func() map[K][]T { return make(map[K][]T) },
		Accumulator: func(m map[K][]T, v T) map[K][]T {
			k := key(v)
			m[k] = append(m[k], v)
			return m
		},
		Combiner: func(a, b map[K][]T) map[K][]T {
			for k, vs := range b {
				a[k] = append(a[k], vs...)
			}
			return a
		},
	}
}

// --- count ---

type countSink[T any] struct{ n int64 }

func (s *countSink[T]) Begin(int64)                 { s.n = 0 }
func (s *countSink[T]) Accept(T)                    { s.n++ }
func (s *countSink[T]) End()                        {}
func (s *countSink[T]) CancellationRequested() bool { return false }
func (s *countSink[T]) Combine(other *countSink[T]) { s.n += other.n }
func (s *countSink[T]) Get() int64                  { return s.n }

type countOp[T any] struct {
	ParallelOp[T, int64]
}

// Count counts the elements. When the output size is known it is
// returned without traversing the source.
func Count[T any]() Op[T, int64] {
	return &countOp[T]{ParallelOp: New[T, int64]("count", func() *countSink[T] { return &countSink[T]{} })}
}

func (o *countOp[T]) EvaluateSequential(seg stage.Segment[T]) int64 {
	if n := seg.ExactOutputSize(); n >= 0 {
		return n
	}
	return o.ParallelOp.EvaluateSequential(seg)
}

func (o *countOp[T]) EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (int64, error) {
	if n := seg.ExactOutputSize(); n >= 0 {
		return n, nil
	}
	return o.ParallelOp.EvaluateParallel(ctx, cfg, seg)
}
