package node

import (
	"context"

	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/stage"
)

// CollectSlice evaluates seg in parallel and returns the elements of its
// output at positions [skip, skip+limit) in encounter order. A negative
// limit keeps everything after skip.
//
// Each leaf builds a node and records its size. Once the completed tasks
// up to a task cover skip+limit elements, every later task is canceled, so
// an unbounded source stops being split and traversed. Joins concatenate
// and the root truncates once.
func CollectSlice[T any](ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T], skip, limit int64) (Node[T], error) {
	target := int64(-1)
	if limit >= 0 {
		target = skip + limit
	}
	complete := func(t *forkjoin.Task, size int64) {
		t.Complete(size)
		if target >= 0 && t.LeftCompleted(target) {
			t.CancelLaterNodes()
		}
	}
	return forkjoin.Run(ctx, cfg.WithOperation(operation(cfg, "slice")), seg, forkjoin.Handler[stage.Segment[T], Node[T]]{
		Leaf: func(t *forkjoin.Task, part stage.Segment[T]) Node[T] {
			b := MustNewBuilder[T](-1)
			switch {
			case t.IsRoot():
				part.CopyIntoWithCancel(stage.Slice[T](skip, limit).Wrap(part.Flags(), b))
			case skip == 0:
				// no leaf contributes more than limit elements
				part.CopyIntoWithCancel(stage.Slice[T](0, limit).Wrap(part.Flags(), b))
			default:
				part.WrapAndCopyInto(b)
			}
			n, err := b.Build()
			if err != nil {
				panic(err)
			}
			if !t.IsRoot() {
				complete(t, n.Count())
			}
			return n
		},
		Merge: func(t *forkjoin.Task, l, r Node[T]) Node[T] {
			n := Empty[T]()
			if !t.Canceled() {
				n = Conc(l, r)
			}
			if t.IsRoot() {
				return truncate(n, skip, target)
			}
			complete(t, n.Count())
			return n
		},
		Empty: Empty[T],
	})
}

func truncate[T any](n Node[T], skip, target int64) Node[T] {
	to := n.Count()
	if target >= 0 {
		to = min(to, target)
	}
	return n.Truncate(min(skip, to), to)
}
