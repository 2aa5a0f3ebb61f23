// Package node holds materialized pipeline results.
//
// A Node is an immutable tree: slice and buffer leaves hold elements,
// conc nodes join two subtrees in order. Parallel evaluation builds one
// leaf per task and joins them with Conc, so no element is copied while
// results are combined; Flatten copies a tree into a single slice when a
// flat result is needed.
//
// Builders collect one traversal into a leaf. A fixed builder is backed by
// a slice of the exact output size; a growable builder by a
// buffer.Spined. Builder protocol violations panic with an illegal-state
// *errors.AppError, which the evaluation entry points return as errors.
package node
