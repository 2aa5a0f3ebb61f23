package spliterator

import (
	"iter"
	"math"
)

const (
	batchUnit = 1 << 10
	maxBatch  = 1 << 25
)

// seqSpliterator adapts an iter.Seq. It is unsized; splitting copies an
// arithmetically growing batch of elements into a slice-backed prefix.
type seqSpliterator[T any] struct {
	seq     iter.Seq[T]
	next    func() (T, bool)
	stop    func()
	chars   Characteristics
	batch   int
	started bool
	done    bool
}

// OfSeq returns an Ordered Spliterator over seq. Call Release when a
// traversal may stop before seq is exhausted.
func OfSeq[T any](seq iter.Seq[T]) Spliterator[T] {
	return &seqSpliterator[T]{seq: seq, chars: Ordered}
}

func (s *seqSpliterator[T]) pull() bool {
	if s.done {
		return false
	}
	if s.next == nil {
		s.next, s.stop = iter.Pull(s.seq)
	}
	return true
}

func (s *seqSpliterator[T]) advance() (T, bool) {
	if !s.pull() {
		var zero T
		return zero, false
	}
	v, ok := s.next()
	if !ok {
		s.release()
	}
	return v, ok
}

func (s *seqSpliterator[T]) release() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.done = true
}

func (s *seqSpliterator[T]) TryAdvance(action func(T)) bool {
	s.started = true
	v, ok := s.advance()
	if !ok {
		return false
	}
	action(v)
	return true
}

func (s *seqSpliterator[T]) ForEachRemaining(action func(T)) {
	s.started = true
	if s.done {
		return
	}
	if s.next == nil {
		// Nothing pulled yet: push directly without a coroutine.
		s.done = true
		for v := range s.seq {
			action(v)
		}
		return
	}
	for {
		v, ok := s.advance()
		if !ok {
			return
		}
		action(v)
	}
}

func (s *seqSpliterator[T]) TrySplit() (Spliterator[T], bool) {
	if s.started || s.done {
		return nil, false
	}
	n := s.batch + batchUnit
	if n > maxBatch {
		n = maxBatch
	}
	buf := make([]T, 0, n)
	for len(buf) < n {
		v, ok := s.advance()
		if !ok {
			break
		}
		buf = append(buf, v)
	}
	if len(buf) == 0 {
		return nil, false
	}
	s.batch = len(buf)
	return OfSliceRange(buf, 0, len(buf), 0), true
}

func (s *seqSpliterator[T]) EstimateSize() int64 {
	if s.done {
		return 0
	}
	return math.MaxInt64
}

func (s *seqSpliterator[T]) Characteristics() Characteristics { return s.chars }
