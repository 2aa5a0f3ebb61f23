package match

import (
	"context"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/reduce"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/stage"
)

// Kind selects which quantifier a match evaluates.
type Kind int

const (
	// Any is satisfied by the first matching element.
	Any Kind = iota
	// All is refuted by the first non-matching element.
	All
	// None is refuted by the first matching element.
	None
)

func (k Kind) String() string {
	switch k {
	case Any:
		return "any_match"
	case All:
		return "all_match"
	case None:
		return "none_match"
	}
	return "unknown"
}

// stopOn is the predicate outcome that decides the match early.
func (k Kind) stopOn() bool { return k != All }

// decided is the result once an element decided the match early.
func (k Kind) decided() bool { return k == Any }

type matchOp[T any] struct {
	kind Kind
	pred func(T) bool
}

// AnyMatch reports whether any element matches pred. It is false for an
// empty input.
func AnyMatch[T any](pred func(T) bool) reduce.Op[T, bool] { return newMatch(Any, pred) }

// AllMatch reports whether every element matches pred. It is true for an
// empty input.
func AllMatch[T any](pred func(T) bool) reduce.Op[T, bool] { return newMatch(All, pred) }

// NoneMatch reports whether no element matches pred. It is true for an
// empty input.
func NoneMatch[T any](pred func(T) bool) reduce.Op[T, bool] { return newMatch(None, pred) }

func newMatch[T any](kind Kind, pred func(T) bool) *matchOp[T] {
	if pred == nil {
		panic(errors.NilArgument("predicate"))
	}
	return &matchOp[T]{kind: kind, pred: pred}
}

type matchSink[T any] struct {
	sink.Terminal
	op     *matchOp[T]
	shared *forkjoin.SharedResult[bool]
	stop   bool
}

func (s *matchSink[T]) Accept(v T) {
	if !s.stop && s.op.pred(v) == s.op.kind.stopOn() {
		s.stop = true
	}
}

func (s *matchSink[T]) CancellationRequested() bool {
	return s.stop || (s.shared != nil && s.shared.IsSet())
}

func (o *matchOp[T]) EvaluateSequential(seg stage.Segment[T]) bool {
	s := &matchSink[T]{op: o}
	seg.CopyIntoWithCancel(s)
	if s.stop {
		return o.kind.decided()
	}
	return !o.kind.decided()
}

// EvaluateParallel stops every task as soon as one leaf decides the
// match. Leaves also poll the shared result between elements.
func (o *matchOp[T]) EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (bool, error) {
	var shared forkjoin.SharedResult[bool]
	_, err := forkjoin.Run(ctx, cfg.WithOperation(o.kind.String()), seg, forkjoin.Handler[stage.Segment[T], struct{}]{
		Leaf: func(_ *forkjoin.Task, part stage.Segment[T]) struct{} {
			s := &matchSink[T]{op: o, shared: &shared}
			part.CopyIntoWithCancel(s)
			if s.stop {
				shared.TrySet(o.kind.decided())
			}
			return struct{}{}
		},
		Merge: func(*forkjoin.Task, struct{}, struct{}) struct{} { return struct{}{} },
		Done:  shared.IsSet,
	})
	if err != nil {
		return false, err
	}
	if v, ok := shared.Get(); ok {
		return v, nil
	}
	return !o.kind.decided(), nil
}
