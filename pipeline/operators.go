package pipeline

import (
	"context"
	"iter"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/logger"
	"github.com/kbukum/gostream/node"
	"github.com/kbukum/gostream/prefix"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

// Map transforms each value using fn.
func Map[T, R any](s *Stream[T], fn func(T) R) *Stream[R] {
	return then(s, func() stage.Op[T, R] { return stage.Map(fn) })
}

// FlatMap replaces each value with the values of the sequence fn returns.
func FlatMap[T, R any](s *Stream[T], fn func(T) iter.Seq[R]) *Stream[R] {
	return then(s, func() stage.Op[T, R] { return stage.FlatMap(fn) })
}

// Filter keeps only values that satisfy pred.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	return then(s, func() stage.Op[T, T] { return stage.Filter(pred) })
}

// Peek calls fn for each value as it passes. In a parallel pipeline fn
// may be called concurrently.
func (s *Stream[T]) Peek(fn func(T)) *Stream[T] {
	return then(s, func() stage.Op[T, T] { return stage.Peek(fn) })
}

// TakeWhile keeps the longest prefix of values matching pred. After
// Unordered, a parallel pipeline may instead keep any subset of the
// matching values that precede a non-matching one in their split.
func (s *Stream[T]) TakeWhile(pred func(T) bool) *Stream[T] {
	return whileOp(s, func() prefix.Op[T] { return prefix.TakeWhile(pred) })
}

// DropWhile drops the longest prefix of values matching pred.
func (s *Stream[T]) DropWhile(pred func(T) bool) *Stream[T] {
	return whileOp(s, func() prefix.Op[T] { return prefix.DropWhile(pred) })
}

// Skip drops the first n values.
func (s *Stream[T]) Skip(n int64) *Stream[T] {
	if n < 0 {
		s.linked = true
		return &Stream[T]{env: s.env, err: errors.InvalidArgument("n", "must not be negative")}
	}
	if n == 0 {
		return derive(s, passThrough[T])
	}
	return slice(s, n, -1)
}

// Limit keeps at most n values.
func (s *Stream[T]) Limit(n int64) *Stream[T] {
	if n < 0 {
		s.linked = true
		return &Stream[T]{env: s.env, err: errors.InvalidArgument("n", "must not be negative")}
	}
	return slice(s, 0, n)
}

func passThrough[T any](_ context.Context, _ *env, up stage.Segment[T]) (stage.Segment[T], error) {
	return up, nil
}

// window is the skip/limit a sliced stream applies to the output of build.
type window[T any] struct {
	build       func(ctx context.Context) (stage.Segment[T], error)
	skip, limit int64
}

// slice applies skip and limit. A slice of a slice becomes one window over
// the original upstream, so Skip(a).Limit(b) stops early like Limit does.
func slice[T any](s *Stream[T], skip, limit int64) *Stream[T] {
	if w := s.window; w != nil && s.err == nil && !s.linked {
		s.linked = true
		skip, limit = w.skip+skip, narrow(w.limit, skip, limit)
		s = &Stream[T]{env: s.env, build: w.build}
	}
	out := sliceOf(s, skip, limit)
	if out.err == nil {
		out.window = &window[T]{build: s.build, skip: skip, limit: limit}
	}
	return out
}

// narrow returns the limit left after skipping skip elements of a window
// of size outer and then keeping at most limit of them.
func narrow(outer, skip, limit int64) int64 {
	if outer < 0 {
		return limit
	}
	remaining := max(outer-skip, 0)
	if limit < 0 {
		return remaining
	}
	return min(remaining, limit)
}

func sliceOf[T any](s *Stream[T], skip, limit int64) *Stream[T] {
	return derive(s, func(ctx context.Context, e *env, up stage.Segment[T]) (stage.Segment[T], error) {
		if !e.parallel {
			return fuse(e, up, stage.Slice[T](skip, limit)), nil
		}
		flags := up.Flags() &^ (stage.Sized | stage.ShortCircuit)
		if !up.Flags().Has(stage.Ordered) {
			src := spliterator.UnorderedSlice(stage.AsSpliterator(up), skip, limit, e.cfg.LeafTarget(up.EstimateSize()))
			return stage.SourceWithFlags(src, flags), nil
		}
		if up.ExactOutputSize() >= 0 && up.SourceCharacteristics().Has(spliterator.Subsized) {
			src := spliterator.Slice(stage.AsSpliterator(up), skip, limit)
			return stage.SourceWithFlags(src, flags|stage.FromCharacteristics(src.Characteristics())&stage.Sized), nil
		}
		if limit < 0 {
			// the window needs exact split sizes
			n, err := barrier(ctx, e, up, "skip")
			if err != nil {
				return nil, err
			}
			src := spliterator.Slice(n.Spliterator(), skip, limit)
			return stage.SourceWithFlags(src, flags|stage.Sized), nil
		}
		n, err := node.CollectSlice(ctx, e.cfg.WithOperation("limit"), up, skip, limit)
		if err != nil {
			return nil, err
		}
		debugBarrier("limit", n)
		return stage.SourceWithFlags(n.Spliterator(), flags|stage.Sized), nil
	})
}

// applyWhile evaluates a prefix operation according to the mode: fused
// sequentially, materialized when ordered and parallel, and as a lazy
// wrapper when unordered and parallel.
func applyWhile[T any](ctx context.Context, e *env, up stage.Segment[T], op prefix.Op[T]) (stage.Segment[T], error) {
	if !e.parallel {
		return fuse(e, up, stage.Op[T, T](op)), nil
	}
	flags := op.Flags().Apply(up.Flags()) &^ stage.ShortCircuit
	if !up.Flags().Has(stage.Ordered) {
		return stage.SourceWithFlags(op.Unordered(stage.AsSpliterator(up), e.checkInterval), flags), nil
	}
	n, err := op.EvaluateOrdered(ctx, e.cfg, up)
	if err != nil {
		return nil, err
	}
	debugBarrier(op.Name(), n)
	return stage.SourceWithFlags(n.Spliterator(), flags|stage.Sized), nil
}

// barrier materializes up so the stages after it see a sized source.
func barrier[T any](ctx context.Context, e *env, up stage.Segment[T], name string) (node.Node[T], error) {
	n, err := node.Collect(ctx, e.cfg.WithOperation(name), up, false)
	if err != nil {
		return nil, err
	}
	debugBarrier(name, n)
	return n, nil
}

func debugBarrier[T any](name string, n node.Node[T]) {
	if log := logger.Get("pipeline"); log.DebugEnabled() {
		log.Debug("stage materialized", logger.Fields(
			logger.FieldOperation, name,
			logger.FieldCount, n.Count(),
		))
	}
}
