package prefix

import (
	"context"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/node"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

// Op is a take-while or drop-while operation. It can run three ways:
// fused into a sequential sink chain (as a stage.Op), as an ordered
// parallel evaluation that materializes a Node (EvaluateOrdered), or as a
// lazy spliterator wrapper for unordered parallel pipelines (Unordered).
type Op[T any] interface {
	stage.Op[T, T]
	// Name returns "take_while" or "drop_while".
	Name() string
	// EvaluateOrdered applies the operation to the output of seg in
	// parallel, preserving encounter order.
	EvaluateOrdered(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (node.Node[T], error)
	// Unordered wraps s so that splits of it cooperate through one shared
	// flag, polled every checkInterval elements (a power of two).
	Unordered(s spliterator.Spliterator[T], checkInterval int) spliterator.Spliterator[T]
}

// TakeWhile returns the longest prefix whose elements all match pred. On
// an unordered pipeline any subset of matching elements may be returned
// instead, as long as it stops being extended once a non-matching element
// is seen.
func TakeWhile[T any](pred func(T) bool) Op[T] {
	if pred == nil {
		panic(errors.NilArgument("predicate"))
	}
	return &takeWhile[T]{pred: pred}
}

// DropWhile returns what remains after the longest prefix of matching
// elements is removed.
func DropWhile[T any](pred func(T) bool) Op[T] {
	if pred == nil {
		panic(errors.NilArgument("predicate"))
	}
	return &dropWhile[T]{pred: pred}
}

// --- take-while ---

type takeWhile[T any] struct {
	pred func(T) bool
}

func (o *takeWhile[T]) Name() string { return "take_while" }

func (o *takeWhile[T]) Flags() stage.Flags {
	return stage.Flags{Set: stage.ShortCircuit, Clear: stage.Sized}
}

func (o *takeWhile[T]) Wrap(_ stage.Flag, down sink.Sink[T]) sink.Sink[T] {
	return &takeWhileSink[T]{Chained: sink.Chained[T]{Downstream: down}, pred: o.pred}
}

type taken[T any] struct {
	n              node.Node[T]
	shortCircuited bool
}

// EvaluateOrdered runs one take-while per leaf. A leaf whose predicate
// fails cancels every task after it. Joins are left-biased: once the left
// side short-circuited the right side cannot contribute.
func (o *takeWhile[T]) EvaluateOrdered(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (node.Node[T], error) {
	res, err := forkjoin.Run(ctx, cfg.WithOperation(o.Name()), seg, forkjoin.Handler[stage.Segment[T], taken[T]]{
		Leaf: func(t *forkjoin.Task, part stage.Segment[T]) taken[T] {
			b := node.MustNewBuilder[T](-1)
			shortCircuited := part.CopyIntoWithCancel(o.Wrap(part.Flags(), b))
			if shortCircuited {
				t.CancelLaterNodes()
			}
			n, err := b.Build()
			if err != nil {
				panic(err)
			}
			return taken[T]{n: n, shortCircuited: shortCircuited}
		},
		Merge: func(t *forkjoin.Task, l, r taken[T]) taken[T] {
			shortCircuited := l.shortCircuited || r.shortCircuited
			switch {
			case t.Canceled():
				return taken[T]{n: node.Empty[T](), shortCircuited: shortCircuited}
			case l.shortCircuited:
				return taken[T]{n: l.n, shortCircuited: true}
			}
			return taken[T]{n: node.Conc(l.n, r.n), shortCircuited: shortCircuited}
		},
		Empty: func() taken[T] { return taken[T]{n: node.Empty[T]()} },
	})
	if err != nil {
		return nil, err
	}
	return res.n, nil
}

func (o *takeWhile[T]) Unordered(s spliterator.Spliterator[T], checkInterval int) spliterator.Spliterator[T] {
	return &unorderedTake[T]{unorderedWhile: newUnorderedWhile(s, o.pred, checkInterval)}
}

// --- drop-while ---

type dropWhile[T any] struct {
	pred func(T) bool
}

func (o *dropWhile[T]) Name() string { return "drop_while" }

func (o *dropWhile[T]) Flags() stage.Flags {
	return stage.Flags{Clear: stage.Sized}
}

func (o *dropWhile[T]) Wrap(_ stage.Flag, down sink.Sink[T]) sink.Sink[T] {
	return o.wrap(down, false)
}

func (o *dropWhile[T]) wrap(down sink.Sink[T], retain bool) *dropWhileSink[T] {
	return &dropWhileSink[T]{Chained: sink.Chained[T]{Downstream: down}, pred: o.pred, retain: retain}
}

// dropped is a partial drop-while result: every element of the part, of
// which the first index were matched by the predicate.
type dropped[T any] struct {
	n     node.Node[T]
	index int64
}

// EvaluateOrdered runs every leaf to completion, keeping all elements and
// counting leading drops. A join extends the drop index of its left side
// into the right side only when the left side was dropped entirely. The
// root truncates once.
func (o *dropWhile[T]) EvaluateOrdered(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (node.Node[T], error) {
	res, err := forkjoin.Run(ctx, cfg.WithOperation(o.Name()), seg, forkjoin.Handler[stage.Segment[T], dropped[T]]{
		Leaf: func(t *forkjoin.Task, part stage.Segment[T]) dropped[T] {
			retain := !t.IsRoot()
			size := int64(-1)
			if retain {
				size = part.ExactOutputSize()
			}
			b := node.MustNewBuilder[T](size)
			s := o.wrap(b, retain)
			part.WrapAndCopyInto(s)
			n, err := b.Build()
			if err != nil {
				panic(err)
			}
			return dropped[T]{n: n, index: s.dropped}
		},
		Merge: func(t *forkjoin.Task, l, r dropped[T]) dropped[T] {
			index := l.index
			if index == l.n.Count() {
				index += r.index
			}
			n := node.Conc(l.n, r.n)
			if t.IsRoot() {
				return dropped[T]{n: n.Truncate(index, n.Count())}
			}
			return dropped[T]{n: n, index: index}
		},
		Empty: func() dropped[T] { return dropped[T]{n: node.Empty[T]()} },
	})
	if err != nil {
		return nil, err
	}
	return res.n, nil
}

func (o *dropWhile[T]) Unordered(s spliterator.Spliterator[T], checkInterval int) spliterator.Spliterator[T] {
	return &unorderedDrop[T]{unorderedWhile: newUnorderedWhile(s, o.pred, checkInterval)}
}
