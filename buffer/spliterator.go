package buffer

import "github.com/kbukum/gostream/spliterator"

// spinedSpliterator covers chunks [spine, lastSpine], starting at elem in
// the first and ending before lastFence in the last.
type spinedSpliterator[T any] struct {
	b         *Spined[T]
	spine     int
	elem      int
	lastSpine int
	lastFence int
	started   bool
}

func (s *spinedSpliterator[T]) chunkEnd(i int) int {
	if i == s.lastSpine {
		return s.lastFence
	}
	return len(s.b.chunks[i])
}

func (s *spinedSpliterator[T]) EstimateSize() int64 {
	switch {
	case s.spine > s.lastSpine:
		return 0
	case s.spine == s.lastSpine:
		return int64(s.lastFence - s.elem)
	default:
		return s.b.prior[s.lastSpine] + int64(s.lastFence) - s.b.prior[s.spine] - int64(s.elem)
	}
}

func (s *spinedSpliterator[T]) Characteristics() spliterator.Characteristics {
	return spliterator.Sized | spliterator.Subsized | spliterator.Ordered
}

func (s *spinedSpliterator[T]) TryAdvance(action func(T)) bool {
	s.started = true
	if s.spine > s.lastSpine || (s.spine == s.lastSpine && s.elem >= s.lastFence) {
		return false
	}
	v := s.b.chunks[s.spine][s.elem]
	s.elem++
	if s.elem == len(s.b.chunks[s.spine]) {
		s.elem = 0
		s.spine++
	}
	action(v)
	return true
}

func (s *spinedSpliterator[T]) ForEachRemaining(action func(T)) {
	s.started = true
	for ; s.spine <= s.lastSpine; s.spine++ {
		chunk := s.b.chunks[s.spine]
		end := s.chunkEnd(s.spine)
		for i := s.elem; i < end; i++ {
			action(chunk[i])
		}
		s.elem = 0
	}
}

func (s *spinedSpliterator[T]) TrySplit() (spliterator.Spliterator[T], bool) {
	if s.started {
		return nil, false
	}
	switch {
	case s.spine < s.lastSpine:
		// Split just before the last chunk; with a full last chunk this is
		// roughly half of the elements.
		left := &spinedSpliterator[T]{
			b:         s.b,
			spine:     s.spine,
			elem:      s.elem,
			lastSpine: s.lastSpine - 1,
			lastFence: len(s.b.chunks[s.lastSpine-1]),
		}
		s.spine = s.lastSpine
		s.elem = 0
		return left, true
	case s.spine == s.lastSpine:
		half := (s.lastFence - s.elem) / 2
		if half == 0 {
			return nil, false
		}
		lo := s.elem
		s.elem += half
		return spliterator.OfSliceRange(s.b.chunks[s.spine], lo, lo+half, 0), true
	default:
		return nil, false
	}
}
