package spliterator

import "math"

// windowSpliterator restricts a Subsized source to the absolute index window
// [sliceOrigin, sliceFence). index and fence are absolute positions of the
// underlying source s, which shrink as s is split.
type windowSpliterator[T any] struct {
	s           Spliterator[T]
	sliceOrigin int64
	sliceFence  int64
	index       int64
	fence       int64
}

// Slice returns a Spliterator over the elements of s after skipping skip
// elements and yielding at most limit of them (limit < 0 means unlimited).
// s must be Subsized, since split positions are derived from exact sizes.
// Ordered, non-Subsized sources must be materialized first; unordered ones
// can use UnorderedSlice.
func Slice[T any](s Spliterator[T], skip, limit int64) Spliterator[T] {
	return &windowSpliterator[T]{
		s:           s,
		sliceOrigin: skip,
		sliceFence:  sliceFence(skip, limit),
		index:       0,
		fence:       minInt64(s.EstimateSize(), sliceFence(skip, limit)),
	}
}

// sliceFence returns skip+limit, or math.MaxInt64 when unlimited or on
// overflow.
func sliceFence(skip, limit int64) int64 {
	if limit < 0 {
		return math.MaxInt64
	}
	if f := skip + limit; f >= 0 {
		return f
	}
	return math.MaxInt64
}

func (w *windowSpliterator[T]) TrySplit() (Spliterator[T], bool) {
	if w.sliceOrigin >= w.fence || w.index >= w.fence {
		return nil, false
	}
	// Keep splitting until a candidate split intersects the window so split
	// sizes strictly decrease and no split is empty.
	for {
		left, ok := w.s.TrySplit()
		if !ok {
			return nil, false
		}
		leftFenceUnbounded := w.index + left.EstimateSize()
		leftFence := minInt64(leftFenceUnbounded, w.sliceFence)
		switch {
		case w.sliceOrigin >= leftFence:
			// left split lies wholly before the window: drop it
			w.index = leftFence
		case leftFence >= w.sliceFence:
			// right part lies wholly after the window: continue with the left
			w.s = left
			w.fence = leftFence
		case w.index >= w.sliceOrigin && leftFenceUnbounded <= w.sliceFence:
			// left split is wholly inside the window
			w.index = leftFence
			return left, true
		default:
			// left split straddles the window origin
			split := &windowSpliterator[T]{
				s:           left,
				sliceOrigin: w.sliceOrigin,
				sliceFence:  w.sliceFence,
				index:       w.index,
				fence:       leftFence,
			}
			w.index = leftFence
			return split, true
		}
	}
}

func (w *windowSpliterator[T]) skipToOrigin() {
	for w.sliceOrigin > w.index {
		w.s.TryAdvance(func(T) {})
		w.index++
	}
}

func (w *windowSpliterator[T]) TryAdvance(action func(T)) bool {
	if w.sliceOrigin >= w.fence {
		return false
	}
	w.skipToOrigin()
	if w.index >= w.fence {
		return false
	}
	w.index++
	return w.s.TryAdvance(action)
}

func (w *windowSpliterator[T]) ForEachRemaining(action func(T)) {
	if w.sliceOrigin >= w.fence || w.index >= w.fence {
		return
	}
	if w.index >= w.sliceOrigin && w.index+w.s.EstimateSize() <= w.sliceFence {
		// wholly inside the window
		w.s.ForEachRemaining(action)
		w.index = w.fence
		return
	}
	w.skipToOrigin()
	for ; w.index < w.fence; w.index++ {
		w.s.TryAdvance(action)
	}
}

func (w *windowSpliterator[T]) EstimateSize() int64 {
	if w.sliceOrigin < w.fence {
		return w.fence - maxInt64(w.sliceOrigin, w.index)
	}
	return 0
}

func (w *windowSpliterator[T]) Characteristics() Characteristics {
	return w.s.Characteristics()
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
