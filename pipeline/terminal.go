package pipeline

import (
	"cmp"
	"context"
	"iter"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/match"
	"github.com/kbukum/gostream/node"
	"github.com/kbukum/gostream/reduce"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

// run links s, builds its segment and calls eval. The source is released
// and any source error takes precedence once eval returns.
func run[T, R any](ctx context.Context, s *Stream[T], eval func(seg stage.Segment[T]) (R, error)) (result R, err error) {
	var zero R
	if err := s.link(); err != nil {
		return zero, err
	}
	defer func() {
		if cerr := s.env.close(); err == nil && cerr != nil {
			result, err = zero, cerr
		}
	}()
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	seg, err := s.build(ctx)
	if err == nil {
		result, err = eval(seg)
	}
	if serr := s.env.err(); serr != nil {
		return zero, serr
	}
	if err != nil {
		return zero, err
	}
	return result, nil
}

// evaluate runs a reduce.Op, in parallel when the stream is parallel.
func evaluate[T, R any](ctx context.Context, s *Stream[T], makeOp func() reduce.Op[T, R]) (R, error) {
	var op reduce.Op[T, R]
	if err := forkjoin.Try(func() { op = makeOp() }); err != nil {
		s.linked = true
		var zero R
		return zero, err
	}
	return run(ctx, s, func(seg stage.Segment[T]) (R, error) {
		return reduce.Evaluate(ctx, s.env.cfg, seg, op, s.env.parallel)
	})
}

// ToNode collects the stream into a Node. In parallel mode the node may be
// a tree of per-task results.
func (s *Stream[T]) ToNode(ctx context.Context) (node.Node[T], error) {
	return run(ctx, s, func(seg stage.Segment[T]) (node.Node[T], error) {
		if s.env.parallel {
			return node.Collect(ctx, s.env.cfg.WithOperation("to_node"), seg, false)
		}
		return node.Sequential(seg)
	})
}

// ToSlice collects the stream into a slice in encounter order.
func (s *Stream[T]) ToSlice(ctx context.Context) ([]T, error) {
	return run(ctx, s, func(seg stage.Segment[T]) ([]T, error) {
		var (
			n   node.Node[T]
			err error
		)
		if s.env.parallel {
			n, err = node.Collect(ctx, s.env.cfg.WithOperation("to_slice"), seg, true)
		} else {
			n, err = node.Sequential(seg)
		}
		if err != nil {
			return nil, err
		}
		var out []T
		err = forkjoin.Try(func() { out = n.AsSlice() })
		return out, err
	})
}

// Count returns the number of values. Sized pipelines are counted without
// traversal.
func (s *Stream[T]) Count(ctx context.Context) (int64, error) {
	return evaluate(ctx, s, reduce.Count[T])
}

// Reduce combines the values with the associative function op.
func (s *Stream[T]) Reduce(ctx context.Context, op func(T, T) T) (reduce.Optional[T], error) {
	return evaluate(ctx, s, func() reduce.Op[T, reduce.Optional[T]] { return reduce.Reduce(op) })
}

// AnyMatch reports whether any value matches pred.
func (s *Stream[T]) AnyMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return evaluate(ctx, s, func() reduce.Op[T, bool] { return match.AnyMatch(pred) })
}

// AllMatch reports whether every value matches pred.
func (s *Stream[T]) AllMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return evaluate(ctx, s, func() reduce.Op[T, bool] { return match.AllMatch(pred) })
}

// NoneMatch reports whether no value matches pred.
func (s *Stream[T]) NoneMatch(ctx context.Context, pred func(T) bool) (bool, error) {
	return evaluate(ctx, s, func() reduce.Op[T, bool] { return match.NoneMatch(pred) })
}

// FindFirst returns the first value in encounter order, if any.
func (s *Stream[T]) FindFirst(ctx context.Context) (reduce.Optional[T], error) {
	return evaluate(ctx, s, match.FindFirst[T])
}

// FindAny returns any value, if there is one.
func (s *Stream[T]) FindAny(ctx context.Context) (reduce.Optional[T], error) {
	return evaluate(ctx, s, match.FindAny[T])
}

// ForEach calls fn for every value. In a parallel pipeline fn is called
// concurrently and in no particular order.
func (s *Stream[T]) ForEach(ctx context.Context, fn func(T)) error {
	if fn == nil {
		s.linked = true
		return errors.NilArgument("fn")
	}
	_, err := run(ctx, s, func(seg stage.Segment[T]) (struct{}, error) {
		if !s.env.parallel {
			return struct{}{}, forkjoin.Try(func() { seg.WrapAndCopyInto(sink.Func(fn)) })
		}
		return forkjoin.Run(ctx, s.env.cfg.WithOperation("for_each"), seg, forkjoin.Handler[stage.Segment[T], struct{}]{
			Leaf: func(_ *forkjoin.Task, part stage.Segment[T]) struct{} {
				part.WrapAndCopyInto(sink.Func(fn))
				return struct{}{}
			},
			Merge: func(*forkjoin.Task, struct{}, struct{}) struct{} { return struct{}{} },
		})
	})
	return err
}

// ForEachOrdered calls fn for every value in encounter order, from one
// goroutine at a time.
func (s *Stream[T]) ForEachOrdered(ctx context.Context, fn func(T)) error {
	if fn == nil {
		s.linked = true
		return errors.NilArgument("fn")
	}
	_, err := run(ctx, s, func(seg stage.Segment[T]) (struct{}, error) {
		if !s.env.parallel {
			return struct{}{}, forkjoin.Try(func() { seg.WrapAndCopyInto(sink.Func(fn)) })
		}
		n, err := node.Collect(ctx, s.env.cfg.WithOperation("for_each_ordered"), seg, false)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, forkjoin.Try(func() { n.ForEach(fn) })
	})
	return err
}

// Iter returns the values as a sequence. Stages that must see their whole
// input first, such as an ordered parallel TakeWhile, run before Iter
// returns; everything after them runs as the sequence is ranged over.
// The sequence can be ranged over once; ranging releases the source.
func (s *Stream[T]) Iter(ctx context.Context) (iter.Seq[T], error) {
	if err := s.link(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		_ = s.env.close()
		return nil, err
	}
	seg, err := s.build(ctx)
	if err != nil {
		_ = s.env.close()
		return nil, err
	}
	src := stage.AsSpliterator(seg)
	return func(yield func(T) bool) {
		defer s.env.close()
		for v := range spliterator.All(src) {
			if ctx.Err() != nil || !yield(v) {
				return
			}
		}
	}, nil
}

// --- Generic terminals ---

// Fold accumulates the values into a U. In parallel mode every leaf task
// folds from seed and the partial results are joined with combine.
func Fold[T, U any](ctx context.Context, s *Stream[T], seed U, accumulate func(U, T) U, combine func(U, U) U) (U, error) {
	return evaluate(ctx, s, func() reduce.Op[T, U] { return reduce.Fold(seed, accumulate, combine) })
}

// CollectInto accumulates the values into containers made by supplier.
func CollectInto[T, C any](ctx context.Context, s *Stream[T], supplier func() C, accumulate func(C, T), combine func(C, C)) (C, error) {
	return evaluate(ctx, s, func() reduce.Op[T, C] { return reduce.CollectInto(supplier, accumulate, combine) })
}

// Collect runs a Collector over the values.
func Collect[T, A, R any](ctx context.Context, s *Stream[T], c reduce.Collector[T, A, R]) (R, error) {
	return evaluate(ctx, s, func() reduce.Op[T, R] { return reduce.Collect(c) })
}

// GroupBy groups the values by key, keeping encounter order within groups.
func GroupBy[T any, K comparable](ctx context.Context, s *Stream[T], key func(T) K) (map[K][]T, error) {
	return evaluate(ctx, s, func() reduce.Op[T, map[K][]T] { return reduce.Collect(reduce.GroupBy(key)) })
}

// Min returns the smallest value, if any.
func Min[T cmp.Ordered](ctx context.Context, s *Stream[T]) (reduce.Optional[T], error) {
	return evaluate(ctx, s, reduce.Min[T])
}

// Max returns the largest value, if any.
func Max[T cmp.Ordered](ctx context.Context, s *Stream[T]) (reduce.Optional[T], error) {
	return evaluate(ctx, s, reduce.Max[T])
}
