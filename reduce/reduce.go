package reduce

import (
	"context"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/sink"
	"github.com/kbukum/gostream/stage"
)

// AccumulatingSink folds a traversal into a result. S is the concrete
// sink type, so Combine can read the state of a sibling sink directly.
type AccumulatingSink[T, R, S any] interface {
	sink.Sink[T]
	// Combine folds the state of other, which covers the elements after
	// those of the receiver, into the receiver.
	Combine(other S)
	// Get returns the result.
	Get() R
}

// Op is a terminal operation producing an R from the output of a segment.
type Op[T, R any] interface {
	EvaluateSequential(seg stage.Segment[T]) R
}

// ParallelOp is an Op with a parallel strategy. Evaluate uses
// EvaluateSequential for operations that do not implement it.
type ParallelOp[T, R any] interface {
	Op[T, R]
	EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (R, error)
}

// Evaluate runs op over seg, in parallel when parallel is set and op
// supports it. Panics raised during traversal are returned as errors.
func Evaluate[T, R any](ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T], op Op[T, R], parallel bool) (R, error) {
	var r R
	if parallel {
		if p, ok := op.(ParallelOp[T, R]); ok {
			return p.EvaluateParallel(ctx, cfg, seg)
		}
	}
	if err := ctx.Err(); err != nil {
		return r, err
	}
	err := forkjoin.Try(func() { r = op.EvaluateSequential(seg) })
	return r, err
}

// sinkOp evaluates by copying each part into a fresh accumulating sink
// and combining sibling sinks left to right.
type sinkOp[T, R any, S AccumulatingSink[T, R, S]] struct {
	name     string
	makeSink func() S
}

// New returns a reduction over the sinks made by makeSink.
func New[T, R any, S AccumulatingSink[T, R, S]](name string, makeSink func() S) ParallelOp[T, R] {
	if makeSink == nil {
		panic(errors.NilArgument("makeSink"))
	}
	return &sinkOp[T, R, S]{name: name, makeSink: makeSink}
}

func (o *sinkOp[T, R, S]) EvaluateSequential(seg stage.Segment[T]) R {
	s := o.makeSink()
	seg.WrapAndCopyInto(s)
	return s.Get()
}

func (o *sinkOp[T, R, S]) EvaluateParallel(ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T]) (R, error) {
	s, err := forkjoin.Run(ctx, cfg.WithOperation(o.name), seg, forkjoin.Handler[stage.Segment[T], S]{
		Leaf: func(_ *forkjoin.Task, part stage.Segment[T]) S {
			s := o.makeSink()
			part.WrapAndCopyInto(s)
			return s
		},
		Merge: func(_ *forkjoin.Task, l, r S) S {
			l.Combine(r)
			return l
		},
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return s.Get(), nil
}
