package errors

import (
	stderrors "errors"
	"fmt"
)

// MaxArraySize is the largest element count a materialized result may hold.
// A few slots are reserved below the platform limit for slice headers.
const MaxArraySize = int64(int(^uint(0)>>1)) - 8

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code, so
// errors.Is(err, errors.IllegalState("")) matches any illegal-state error.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// CapacityExceeded reports that a result of the given size cannot be
// materialized into a single slice.
func CapacityExceeded(size int64) *AppError {
	return &AppError{
		Code:    ErrCodeCapacityExceeded,
		Message: fmt.Sprintf("Stream size %d exceeds max array size %d", size, MaxArraySize),
		Details: map[string]any{"size": size, "max": MaxArraySize},
	}
}

// IllegalState reports a protocol violation by the caller.
func IllegalState(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeIllegalState,
		Message: reason,
	}
}

// InvalidArgument reports an invalid behavioral parameter.
func InvalidArgument(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("Invalid argument: %s", reason),
		Details: details,
	}
}

// NilArgument reports a required function or value that was nil.
func NilArgument(name string) *AppError {
	return InvalidArgument(name, name+" must not be nil")
}

// Validation creates an invalid-argument error from a validation summary.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: message,
	}
}

// Canceled wraps a context error.
func Canceled(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCanceled,
		Message: "The evaluation was canceled.",
		Cause:   cause,
	}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred during evaluation.",
		Cause:   cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
