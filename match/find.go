package match

import (
	"context"

	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/reduce"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/stage"
)

type findOp[T any] struct {
	first bool
}

// FindFirst returns the first element in encounter order, if any.
func FindFirst[T any]() reduce.Op[T, reduce.Optional[T]] { return &findOp[T]{first: true} }

// FindAny returns some element, if any. A parallel evaluation returns
// whichever element a leaf reaches first.
func FindAny[T any]() reduce.Op[T, reduce.Optional[T]] { return &findOp[T]{} }

func (o *findOp[T]) name() string {
	if o.first {
		return "find_first"
	}
	return "find_any"
}

type findSink[T any] struct {
	sink.Terminal
	shared *forkjoin.SharedResult[T]
	result reduce.Optional[T]
}

func (s *findSink[T]) Accept(v T) {
	if !s.result.IsPresent() {
		s.result = reduce.Some(v)
	}
}

func (s *findSink[T]) CancellationRequested() bool {
	return s.result.IsPresent() || (s.shared != nil && s.shared.IsSet())
}

func (o *findOp[T]) EvaluateSequential(seg stage.Segment[T]) reduce.Optional[T] {
	s := &findSink[T]{}
	seg.CopyIntoWithCancel(s)
	return s.result
}

func (o *findOp[T]) EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (reduce.Optional[T], error) {
	if o.first {
		return o.findFirst(ctx, cfg, seg)
	}
	var shared forkjoin.SharedResult[T]
	_, err := forkjoin.Run(ctx, cfg.WithOperation(o.name()), seg, forkjoin.Handler[stage.Segment[T], struct{}]{
		Leaf: func(_ *forkjoin.Task, part stage.Segment[T]) struct{} {
			s := &findSink[T]{shared: &shared}
			part.CopyIntoWithCancel(s)
			if v, ok := s.result.Get(); ok {
				shared.TrySet(v)
			}
			return struct{}{}
		},
		Merge: func(*forkjoin.Task, struct{}, struct{}) struct{} { return struct{}{} },
		Done:  shared.IsSet,
	})
	if err != nil {
		return reduce.None[T](), err
	}
	if v, ok := shared.Get(); ok {
		return reduce.Some(v), nil
	}
	return reduce.None[T](), nil
}

// findFirst keeps encounter order: a hit on the leftmost path is final
// and stops the evaluation, any other hit cancels the tasks after it and
// competes with earlier hits at the joins.
func (o *findOp[T]) findFirst(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (reduce.Optional[T], error) {
	var shared forkjoin.SharedResult[T]
	found := func(t *forkjoin.Task, v T) {
		if t.IsLeftmost() {
			shared.TrySet(v)
		} else {
			t.CancelLaterNodes()
		}
	}
	res, err := forkjoin.Run(ctx, cfg.WithOperation(o.name()), seg, forkjoin.Handler[stage.Segment[T], reduce.Optional[T]]{
		Leaf: func(t *forkjoin.Task, part stage.Segment[T]) reduce.Optional[T] {
			s := &findSink[T]{}
			part.CopyIntoWithCancel(s)
			if v, ok := s.result.Get(); ok {
				found(t, v)
			}
			return s.result
		},
		Merge: func(t *forkjoin.Task, l, r reduce.Optional[T]) reduce.Optional[T] {
			for _, res := range [2]reduce.Optional[T]{l, r} {
				if v, ok := res.Get(); ok {
					found(t, v)
					return res
				}
			}
			return reduce.None[T]()
		},
		Empty: reduce.None[T],
		Done:  shared.IsSet,
	})
	if err != nil {
		return reduce.None[T](), err
	}
	if v, ok := shared.Get(); ok {
		return reduce.Some(v), nil
	}
	return res, nil
}
