// Package match provides the short-circuiting terminal operations:
// AnyMatch, AllMatch, NoneMatch, FindFirst and FindAny.
//
// Each is a reduce.ParallelOp. Sequentially a single sink stops the
// traversal at the deciding element. In parallel, leaves publish a
// decision to a forkjoin.SharedResult that every other task polls;
// FindFirst additionally cancels tasks later in encounter order and
// prefers the leftmost hit when joining.
package match
