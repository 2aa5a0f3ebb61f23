// Package pipeline is the typed facade over the engine: a lazy,
// single-use Stream[T] with fused intermediate operations and
// terminal operations that run sequentially or in parallel.
//
// Stateless operations (Map, FlatMap, Filter, Peek) are fused into one
// sink chain and never materialize data. TakeWhile, DropWhile, Skip and
// Limit are fused as well in a sequential stream; in a parallel stream
// they are evaluated over fork-join tasks, materializing their input only
// when encounter order must be kept and the input size is not known.
//
// # Usage
//
//	evens, err := pipeline.Map(pipeline.Range(0, 1_000_000).Parallel(), func(v int64) int64 {
//	    return v * v
//	}).Filter(func(v int64) bool { return v%2 == 0 }).Limit(10).ToSlice(ctx)
//
// Terminal operations take a context. Cancelling it stops tasks that
// have not started yet and the terminal returns ctx.Err(). Panics raised
// by user functions are returned as errors.
package pipeline
