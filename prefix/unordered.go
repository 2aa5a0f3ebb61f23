package prefix

import (
	"sync/atomic"

	"github.com/kbukum/gostream/spliterator"
)

// DefaultCheckInterval is how many elements pass between polls of the
// shared cancel flag.
const DefaultCheckInterval = 64

// unorderedWhile is the state shared by the unordered take-while and
// drop-while spliterators. Every split shares cancel with its parent.
type unorderedWhile[T any] struct {
	s      spliterator.Spliterator[T]
	pred   func(T) bool
	cancel *atomic.Bool
	mask   int

	active bool
	count  int
	cur    T
}

func newUnorderedWhile[T any](s spliterator.Spliterator[T], pred func(T) bool, checkInterval int) *unorderedWhile[T] {
	if checkInterval <= 0 || checkInterval&(checkInterval-1) != 0 {
		checkInterval = DefaultCheckInterval
	}
	return &unorderedWhile[T]{
		s:      s,
		pred:   pred,
		cancel: new(atomic.Bool),
		mask:   checkInterval - 1,
		active: true,
	}
}

func (u *unorderedWhile[T]) child(s spliterator.Spliterator[T]) *unorderedWhile[T] {
	return &unorderedWhile[T]{s: s, pred: u.pred, cancel: u.cancel, mask: u.mask, active: true}
}

func (u *unorderedWhile[T]) accept(v T) {
	u.count = (u.count + 1) & u.mask
	u.cur = v
}

// proceed polls the shared flag whenever the element counter wraps.
func (u *unorderedWhile[T]) proceed() bool {
	return u.count != 0 || !u.cancel.Load()
}

func (u *unorderedWhile[T]) EstimateSize() int64 { return u.s.EstimateSize() }

func (u *unorderedWhile[T]) Characteristics() spliterator.Characteristics {
	return u.s.Characteristics() &^ (spliterator.Sized | spliterator.Subsized)
}

func (u *unorderedWhile[T]) release() { spliterator.Release(u.s) }

type unorderedTake[T any] struct {
	*unorderedWhile[T]
}

func (t *unorderedTake[T]) TryAdvance(action func(T)) bool {
	test := true
	if t.active && t.proceed() && t.s.TryAdvance(t.accept) {
		if test = t.pred(t.cur); test {
			action(t.cur)
			return true
		}
	}
	t.active = false
	// only a failed test stops the other splits
	if !test {
		t.cancel.Store(true)
	}
	return false
}

func (t *unorderedTake[T]) ForEachRemaining(action func(T)) {
	for t.TryAdvance(action) {
	}
}

func (t *unorderedTake[T]) TrySplit() (spliterator.Spliterator[T], bool) {
	if t.cancel.Load() {
		return nil, false
	}
	left, ok := t.s.TrySplit()
	if !ok {
		return nil, false
	}
	return &unorderedTake[T]{unorderedWhile: t.child(left)}, true
}

type unorderedDrop[T any] struct {
	*unorderedWhile[T]
}

func (d *unorderedDrop[T]) TryAdvance(action func(T)) bool {
	if !d.active {
		return d.s.TryAdvance(action)
	}
	d.active = false
	advanced, droppedAny := false, false
	for {
		if advanced = d.s.TryAdvance(d.accept); !advanced {
			break
		}
		if !d.proceed() || !d.pred(d.cur) {
			break
		}
		droppedAny = true
	}
	if advanced {
		// a split that dropped and then found its first survivor lets the
		// others stop dropping
		if droppedAny {
			d.cancel.Store(true)
		}
		action(d.cur)
	}
	return advanced
}

func (d *unorderedDrop[T]) ForEachRemaining(action func(T)) {
	if d.TryAdvance(action) {
		d.s.ForEachRemaining(action)
	}
}

func (d *unorderedDrop[T]) TrySplit() (spliterator.Spliterator[T], bool) {
	left, ok := d.s.TrySplit()
	if !ok {
		return nil, false
	}
	return &unorderedDrop[T]{unorderedWhile: d.child(left)}, true
}
