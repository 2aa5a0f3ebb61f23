package node

import "github.com/kbukum/gostream/spliterator"

// treeSpliterator traverses an internal node. It splits by handing out
// whole children and, once a single child remains, descends into it.
type treeSpliterator[T any] struct {
	cur   Node[T]
	child int
	// leaf takes over when splitting reaches a leaf.
	leaf spliterator.Spliterator[T]

	// traversal state for TryAdvance
	started  bool
	stack    []Node[T]
	tryLeaf  spliterator.Spliterator[T]
	consumed int64
}

func newTreeSpliterator[T any](n Node[T]) *treeSpliterator[T] {
	return &treeSpliterator[T]{cur: n}
}

func (s *treeSpliterator[T]) TrySplit() (spliterator.Spliterator[T], bool) {
	if s.started {
		return nil, false
	}
	if s.leaf != nil {
		return s.leaf.TrySplit()
	}
	for s.cur.ChildCount()-s.child == 1 {
		s.cur, s.child = s.cur.Child(s.child), 0
		if s.cur.ChildCount() == 0 {
			s.leaf = s.cur.Spliterator()
			return s.leaf.TrySplit()
		}
	}
	if s.child >= s.cur.ChildCount() {
		return nil, false
	}
	ret := s.cur.Child(s.child).Spliterator()
	s.child++
	return ret, true
}

func (s *treeSpliterator[T]) EstimateSize() int64 {
	if s.leaf != nil {
		return s.leaf.EstimateSize()
	}
	var size int64
	for i := s.child; i < s.cur.ChildCount(); i++ {
		size += s.cur.Child(i).Count()
	}
	return size - s.consumed
}

func (s *treeSpliterator[T]) Characteristics() spliterator.Characteristics {
	return spliterator.Sized | spliterator.Subsized | spliterator.Ordered
}

func (s *treeSpliterator[T]) ForEachRemaining(action func(T)) {
	if s.leaf != nil {
		s.leaf.ForEachRemaining(action)
		return
	}
	if !s.started {
		s.started = true
		for ; s.child < s.cur.ChildCount(); s.child++ {
			s.cur.Child(s.child).ForEach(action)
		}
		return
	}
	for s.TryAdvance(action) {
	}
}

func (s *treeSpliterator[T]) TryAdvance(action func(T)) bool {
	if s.leaf != nil {
		return s.leaf.TryAdvance(action)
	}
	if !s.started {
		s.started = true
		for i := s.cur.ChildCount() - 1; i >= s.child; i-- {
			s.stack = append(s.stack, s.cur.Child(i))
		}
	}
	for {
		if s.tryLeaf != nil && s.tryLeaf.TryAdvance(action) {
			s.consumed++
			return true
		}
		s.tryLeaf = nil
		n, ok := s.pop()
		if !ok {
			return false
		}
		if n.ChildCount() == 0 {
			s.tryLeaf = n.Spliterator()
			continue
		}
		for i := n.ChildCount() - 1; i >= 0; i-- {
			s.stack = append(s.stack, n.Child(i))
		}
	}
}

// pop returns the next non-empty node of the traversal stack.
func (s *treeSpliterator[T]) pop() (Node[T], bool) {
	for len(s.stack) > 0 {
		n := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		if n.Count() > 0 {
			return n, true
		}
	}
	return nil, false
}
