package node

import (
	"context"
	"fmt"

	"github.com/kbukum/gostream/errors"
	"github.com/kbukum/gostream/forkjoin"
	"github.com/kbukum/gostream/spliterator"
	"github.com/kbukum/gostream/stage"
)

// Sequential collects seg with a single builder on the calling goroutine.
func Sequential[T any](seg stage.Segment[T]) (Node[T], error) {
	var n Node[T]
	err := forkjoin.Try(func() {
		b := MustNewBuilder[T](seg.ExactOutputSize())
		seg.WrapAndCopyInto(b)
		var err error
		if n, err = b.Build(); err != nil {
			panic(err)
		}
	})
	return n, err
}

// Collect evaluates seg in parallel into a Node.
//
// When the output size is known and every split of the source is sized,
// one slice is allocated up front and each leaf writes its own disjoint
// range of it. Otherwise each leaf builds a node, joins combine them with
// Conc, and flatten copies the tree into one slice leaf afterwards.
func Collect[T any](ctx context.Context, cfg forkjoin.Config, seg stage.Segment[T], flatten bool) (Node[T], error) {
	size := seg.ExactOutputSize()
	if size >= 0 && seg.SourceCharacteristics().Has(spliterator.Subsized) {
		if size >= errors.MaxArraySize {
			return nil, errors.CapacityExceeded(size)
		}
		items := make([]T, size)
		_, err := forkjoin.Run(ctx, cfg.WithOperation(operation(cfg, "collect_sized")), &sizedPart[T]{seg: seg, fence: size}, forkjoin.Handler[*sizedPart[T], struct{}]{
			Leaf: func(_ *forkjoin.Task, p *sizedPart[T]) struct{} {
				p.seg.WrapAndCopyInto(&sliceWriter[T]{items: items, index: p.offset, fence: p.fence})
				return struct{}{}
			},
			Merge: func(*forkjoin.Task, struct{}, struct{}) struct{} { return struct{}{} },
		})
		if err != nil {
			return nil, err
		}
		return OfSlice(items), nil
	}

	n, err := forkjoin.Run(ctx, cfg.WithOperation(operation(cfg, "collect")), seg, forkjoin.Handler[stage.Segment[T], Node[T]]{
		Leaf: func(_ *forkjoin.Task, part stage.Segment[T]) Node[T] {
			b := MustNewBuilder[T](part.ExactOutputSize())
			part.WrapAndCopyInto(b)
			n, err := b.Build()
			if err != nil {
				panic(err)
			}
			return n
		},
		Merge: func(_ *forkjoin.Task, l, r Node[T]) Node[T] { return Conc(l, r) },
		Empty: Empty[T],
	})
	if err != nil {
		return nil, err
	}
	if flatten {
		return Flatten(ctx, cfg, n)
	}
	return n, nil
}

func operation(cfg forkjoin.Config, def string) string {
	if cfg.Operation != "" {
		return cfg.Operation
	}
	return def
}

// sizedPart is a segment together with the range of the destination slice
// its output occupies.
type sizedPart[T any] struct {
	seg    stage.Segment[T]
	offset int64
	fence  int64
}

func (p *sizedPart[T]) TrySplit() (*sizedPart[T], bool) {
	left, ok := p.seg.TrySplit()
	if !ok {
		return nil, false
	}
	mid := p.offset + left.ExactOutputSize()
	l := &sizedPart[T]{seg: left, offset: p.offset, fence: mid}
	p.offset = mid
	return l, true
}

func (p *sizedPart[T]) EstimateSize() int64 { return p.seg.EstimateSize() }

// sliceWriter writes a traversal into items[index:fence].
type sliceWriter[T any] struct {
	items        []T
	index, fence int64
}

func (w *sliceWriter[T]) Begin(size int64) {
	if size > w.fence-w.index {
		panic(errors.IllegalState(fmt.Sprintf("begin size %d exceeds range of %d", size, w.fence-w.index)))
	}
}

func (w *sliceWriter[T]) Accept(v T) {
	if w.index >= w.fence {
		panic(errors.IllegalState(fmt.Sprintf("accept past fence %d", w.fence)))
	}
	w.items[w.index] = v
	w.index++
}

func (w *sliceWriter[T]) End() {}

func (w *sliceWriter[T]) CancellationRequested() bool { return false }

// Flatten copies n into a single slice leaf. Subtrees are copied in
// parallel; each subtree's destination offset is the sum of the counts
// of the subtrees before it, computed top-down before any copying.
func Flatten[T any](ctx context.Context, cfg forkjoin.Config, n Node[T]) (Node[T], error) {
	if n.ChildCount() == 0 {
		return n, nil
	}
	size := n.Count()
	if size >= errors.MaxArraySize {
		return nil, errors.CapacityExceeded(size)
	}
	items := make([]T, size)
	_, err := forkjoin.Run(ctx, cfg.WithOperation(operation(cfg, "flatten")), &subtree[T]{n: n}, forkjoin.Handler[*subtree[T], struct{}]{
		Leaf: func(_ *forkjoin.Task, p *subtree[T]) struct{} {
			p.n.CopyInto(items, int(p.offset))
			return struct{}{}
		},
		Merge: func(*forkjoin.Task, struct{}, struct{}) struct{} { return struct{}{} },
	})
	if err != nil {
		return nil, err
	}
	return OfSlice(items), nil
}

// subtree is a node and its offset in the flattened slice. It splits
// along the tree: the first child becomes the prefix.
type subtree[T any] struct {
	n      Node[T]
	offset int64
}

func (p *subtree[T]) TrySplit() (*subtree[T], bool) {
	if p.n.ChildCount() != 2 {
		return nil, false
	}
	left := &subtree[T]{n: p.n.Child(0), offset: p.offset}
	p.offset += left.n.Count()
	p.n = p.n.Child(1)
	return left, true
}

func (p *subtree[T]) EstimateSize() int64 { return p.n.Count() }
