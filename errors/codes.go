package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource limit errors
const (
	// ErrCodeCapacityExceeded indicates a materialization would exceed the
	// maximum number of elements a slice can hold.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
)

// Contract violations
const (
	// ErrCodeIllegalState indicates a lifecycle or protocol violation, such as
	// accepting into a sink after End or building a builder twice.
	ErrCodeIllegalState ErrorCode = "ILLEGAL_STATE"
	// ErrCodeInvalidArgument indicates a nil or otherwise invalid behavioral
	// parameter.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Evaluation errors
const (
	// ErrCodeCanceled indicates the evaluation context was canceled before
	// the evaluation completed.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeInternal indicates an unexpected failure, typically a panic
	// raised by user code inside a task.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Every failure in the engine is either a resource limit or a contract
// violation. None of them is retryable.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeCapacityExceeded: false,
	ErrCodeIllegalState:     false,
	ErrCodeInvalidArgument:  false,
	ErrCodeCanceled:         false,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
