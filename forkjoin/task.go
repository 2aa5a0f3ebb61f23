package forkjoin

import "sync/atomic"

// Splitter is a unit of work that can be split in two. TrySplit returns a
// prefix of the work and keeps the remainder, like a spliterator.
type Splitter[P any] interface {
	TrySplit() (P, bool)
	EstimateSize() int64
}

// Task is one node of the computation tree built by Run. Handlers receive
// the task they run in so short-circuiting operations can inspect their
// position and cancel work to their right.
type Task struct {
	parent      *Task
	left, right atomic.Pointer[Task]
	leaf        bool
	canceled    atomic.Bool
	cancels     *atomic.Int64

	// output size, valid once completed is set
	size      atomic.Int64
	completed atomic.Bool
}

func (t *Task) child() *Task {
	return &Task{parent: t, cancels: t.cancels}
}

// split creates the two children of t.
func (t *Task) split() (left, right *Task) {
	left, right = t.child(), t.child()
	t.left.Store(left)
	t.right.Store(right)
	return left, right
}

// IsRoot reports whether t is the root of the computation.
func (t *Task) IsRoot() bool { return t.parent == nil }

// IsLeaf reports whether t runs a leaf computation instead of splitting.
func (t *Task) IsLeaf() bool { return t.leaf }

// IsLeftmost reports whether t is on the leftmost path of the tree, that
// is, it covers the first element of the source in encounter order.
func (t *Task) IsLeftmost() bool {
	for node := t; node.parent != nil; node = node.parent {
		if node.parent.left.Load() != node {
			return false
		}
	}
	return true
}

// Cancel marks t as canceled. Canceled tasks that have not started yet
// produce the empty result; running tasks observe it through Canceled.
func (t *Task) Cancel() {
	if t.canceled.CompareAndSwap(false, true) {
		t.cancels.Add(1)
	}
}

// Canceled reports whether t or any of its ancestors is canceled.
func (t *Task) Canceled() bool {
	for node := t; node != nil; node = node.parent {
		if node.canceled.Load() {
			return true
		}
	}
	return false
}

// CancelLaterNodes cancels every task that follows t in encounter order:
// for each ancestor reached from its left child, the right child is
// canceled.
func (t *Task) CancelLaterNodes() {
	for node, parent := t, t.parent; parent != nil; node, parent = parent, parent.parent {
		if parent.left.Load() == node {
			if sibling := parent.right.Load(); !sibling.canceled.Load() {
				sibling.Cancel()
			}
		}
	}
}

// Complete records that t produced size output elements. Operations that
// only need a bounded prefix of their output use it with LeftCompleted.
func (t *Task) Complete(size int64) {
	t.size.Store(size)
	t.completed.Store(true)
}

// LeftCompleted reports whether the completed tasks up to and including t
// in encounter order have produced at least target elements. When they
// have, the output of every later task lies past target.
func (t *Task) LeftCompleted(target int64) bool {
	size := t.completedSize(target)
	if size >= target {
		return true
	}
	for node, parent := t, t.parent; parent != nil; node, parent = parent, parent.parent {
		if parent.right.Load() == node {
			size += parent.left.Load().completedSize(target)
			if size >= target {
				return true
			}
		}
	}
	return false
}

// completedSize sums the sizes of the completed parts of t's subtree,
// stopping early once target is reached.
func (t *Task) completedSize(target int64) int64 {
	if t.completed.Load() {
		return t.size.Load()
	}
	left, right := t.left.Load(), t.right.Load()
	if left == nil || right == nil {
		return 0
	}
	size := left.completedSize(target)
	if size < target {
		size += right.completedSize(target)
	}
	return size
}
