// Package prefix implements take-while and drop-while, the two
// operations whose result depends on where in encounter order a
// predicate first fails.
//
// Sequentially both are plain sinks. In an ordered parallel pipeline each
// leaf task evaluates its part independently and joins reconcile the
// partial results: take-while keeps the left side alone once it
// short-circuited and cancels tasks to its right; drop-while keeps every
// element until the root, which truncates once at the merged drop index.
// In an unordered parallel pipeline the operations wrap the source
// spliterator lazily, and splits stop early through one shared atomic
// flag.
package prefix
