package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_NotRetryable(t *testing.T) {
	err := New(ErrCodeIllegalState, "bad state")
	if err.Code != ErrCodeIllegalState {
		t.Errorf("expected code %s, got %s", ErrCodeIllegalState, err.Code)
	}
	if err.Message != "bad state" {
		t.Errorf("expected message 'bad state', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("ILLEGAL_STATE should not be retryable")
	}
}

func TestAppError_CapacityExceeded(t *testing.T) {
	err := CapacityExceeded(MaxArraySize + 1)
	if err.Code != ErrCodeCapacityExceeded {
		t.Errorf("expected CAPACITY_EXCEEDED, got %s", err.Code)
	}
	if err.Details["size"] != MaxArraySize+1 {
		t.Errorf("expected size detail, got %v", err.Details["size"])
	}
	if !strings.Contains(err.Error(), "exceeds max array size") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_InvalidArgument_EmptyField(t *testing.T) {
	err := InvalidArgument("", "negative skip")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", err.Code)
	}
}

func TestAppError_NilArgument(t *testing.T) {
	err := NilArgument("predicate")
	if err.Details["field"] != "predicate" {
		t.Errorf("expected field=predicate, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Message, "predicate must not be nil") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_Internal_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "cause: boom") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", IllegalState("already built"))
	if !stderrors.Is(err, IllegalState("")) {
		t.Error("expected wrapped illegal-state error to match by code")
	}
	if stderrors.Is(err, CapacityExceeded(0)) {
		t.Error("illegal-state error must not match capacity error")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Canceled(nil))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeCanceled {
		t.Errorf("expected CANCELED, got %s", appErr.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain error should not convert")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", IllegalState("x"), ErrCodeIllegalState, true},
		{"other code", IllegalState("x"), ErrCodeInternal, false},
		{"wrapped", fmt.Errorf("w: %w", CapacityExceeded(1)), ErrCodeCapacityExceeded, true},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCode(tc.err, tc.code); got != tc.want {
				t.Errorf("IsCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := IllegalState("x").WithDetail("sink", "fixed").WithCause(fmt.Errorf("c"))
	if err.Details["sink"] != "fixed" {
		t.Errorf("expected detail, got %v", err.Details)
	}
	if err.Unwrap() == nil {
		t.Error("expected cause")
	}
}

func TestIsRetryableCode_NeverRetryable(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeCapacityExceeded, ErrCodeIllegalState, ErrCodeInvalidArgument, ErrCodeCanceled, ErrCodeInternal} {
		if IsRetryableCode(code) {
			t.Errorf("%s should not be retryable", code)
		}
	}
}
