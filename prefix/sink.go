package prefix

import "github.com/kbukum/gostream/sink"

type takeWhileSink[T any] struct {
	sink.Chained[T]
	pred func(T) bool
	take bool
}

func (s *takeWhileSink[T]) Begin(int64) {
	s.take = true
	s.Downstream.Begin(-1)
}

func (s *takeWhileSink[T]) Accept(v T) {
	if s.take {
		if s.take = s.pred(v); s.take {
			s.Downstream.Accept(v)
		}
	}
}

func (s *takeWhileSink[T]) CancellationRequested() bool {
	return !s.take || s.Downstream.CancellationRequested()
}

// dropWhileSink drops the leading elements matching pred. When retain is
// set it passes every element on and only counts the leading drops, so a
// later merge can decide where the surviving suffix starts.
type dropWhileSink[T any] struct {
	sink.Chained[T]
	pred    func(T) bool
	retain  bool
	take    bool
	dropped int64
}

func (s *dropWhileSink[T]) Begin(size int64) {
	s.take = false
	s.dropped = 0
	if !s.retain {
		size = -1
	}
	s.Downstream.Begin(size)
}

func (s *dropWhileSink[T]) Accept(v T) {
	if !s.take {
		s.take = !s.pred(v)
	}
	if !s.take && s.retain {
		s.dropped++
	}
	if s.take || s.retain {
		s.Downstream.Accept(v)
	}
}
