package spliterator

// sliceSpliterator covers s[index:fence].
type sliceSpliterator[T any] struct {
	items   []T
	index   int
	fence   int
	chars   Characteristics
	started bool
}

// OfSlice returns a Sized, Subsized, Ordered, Immutable Spliterator over
// items. The slice is not copied and must not be modified while in use.
func OfSlice[T any](items []T) Spliterator[T] {
	return OfSliceRange(items, 0, len(items), 0)
}

// OfSliceRange returns a Spliterator over items[from:to] with extra
// characteristics added to Sized|Subsized|Ordered|Immutable.
func OfSliceRange[T any](items []T, from, to int, extra Characteristics) Spliterator[T] {
	return &sliceSpliterator[T]{
		items: items,
		index: from,
		fence: to,
		chars: Sized | Subsized | Ordered | Immutable | extra,
	}
}

func (s *sliceSpliterator[T]) TrySplit() (Spliterator[T], bool) {
	if s.started {
		return nil, false
	}
	lo := s.index
	mid := int(uint(lo+s.fence) >> 1)
	if lo >= mid {
		return nil, false
	}
	s.index = mid
	return &sliceSpliterator[T]{items: s.items, index: lo, fence: mid, chars: s.chars}, true
}

func (s *sliceSpliterator[T]) TryAdvance(action func(T)) bool {
	s.started = true
	if s.index >= s.fence {
		return false
	}
	v := s.items[s.index]
	s.index++
	action(v)
	return true
}

func (s *sliceSpliterator[T]) ForEachRemaining(action func(T)) {
	s.started = true
	i, hi := s.index, s.fence
	s.index = hi
	for ; i < hi; i++ {
		action(s.items[i])
	}
}

func (s *sliceSpliterator[T]) EstimateSize() int64 { return int64(s.fence - s.index) }

func (s *sliceSpliterator[T]) Characteristics() Characteristics { return s.chars }
