// Package sink defines the push-side contract of a pipeline: a Sink
// receives Begin, a run of Accept calls and End, and can ask its upstream
// to stop early through CancellationRequested.
//
// Operations are expressed as sinks that wrap their downstream (see
// Chained), so a pipeline of any length is one nested chain of calls and
// costs a single traversal of its source.
package sink
