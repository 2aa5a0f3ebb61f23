// Package reduce implements terminal reductions over pipeline segments.
//
// A reduction is driven by an AccumulatingSink: sequentially one sink
// consumes the whole segment; in parallel each leaf task fills its own
// sink and sibling sinks are combined left to right, so any associative
// combiner yields the sequential result.
//
//	sum := reduce.Fold(0, func(acc, v int) int { return acc + v },
//		func(a, b int) int { return a + b })
//	total, err := reduce.Evaluate(ctx, cfg, seg, sum, true)
package reduce
