package forkjoin

import "sync/atomic"

// SharedResult is a result slot shared by every task of one evaluation.
// The first writer wins; later writes are ignored.
type SharedResult[R any] struct {
	v atomic.Pointer[R]
}

// TrySet stores v if no result is set yet and reports whether it did.
func (s *SharedResult[R]) TrySet(v R) bool {
	return s.v.CompareAndSwap(nil, &v)
}

// Get returns the stored result, if any.
func (s *SharedResult[R]) Get() (R, bool) {
	if p := s.v.Load(); p != nil {
		return *p, true
	}
	var zero R
	return zero, false
}

// IsSet reports whether a result has been stored.
func (s *SharedResult[R]) IsSet() bool { return s.v.Load() != nil }
