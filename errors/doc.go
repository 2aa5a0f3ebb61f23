// Package errors provides the error type shared by every gostream package.
// Failures carry a machine-readable code so callers can tell resource limits
// (capacity) from contract violations (illegal state, invalid argument).
//
// Code that runs per element (sink Accept calls) cannot return errors; it
// panics with an *AppError instead, and every evaluation boundary recovers
// the panic and returns the AppError to the caller.
package errors
