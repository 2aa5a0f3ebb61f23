// Package stage fuses pipeline operations into a single sink chain.
//
// An Op turns a downstream sink into the sink its upstream pushes into. A
// Segment is a source spliterator plus the operations appended with Then;
// copying a segment into a terminal sink wraps the terminal sink once per
// operation and then traverses the source a single time.
//
// Flags track what is known about the elements after each operation
// (Sized, Ordered, Distinct, Sorted) and whether any operation may stop
// early (ShortCircuit), which makes sources poll CancellationRequested.
//
//	seg := stage.Then(stage.Then(stage.Source(spliterator.OfSlice(xs)),
//		stage.Filter(isEven)), stage.Map(square))
//	seg.WrapAndCopyInto(sink.Func(consume))
package stage
