// Package forkjoin runs divide-and-conquer computations over splittable
// work on goroutines.
//
// Run splits the root until parts fall below the leaf target
// (max(1, estimate / (parallelism * LeafFactor))), computes leaves with
// Handler.Leaf and combines sibling results with Handler.Merge, always in
// left-then-right order so ordered operations keep encounter order.
//
// Short-circuiting operations use the Task passed to each handler call:
// CancelLaterNodes stops work to the right of a task, Canceled reports
// cancellation of the task or any ancestor, and SharedResult publishes a
// single answer that lets every other task stop early.
package forkjoin
