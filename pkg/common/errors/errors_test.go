package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrQueueFull", ErrQueueFull, "queue is full"},
		{"ErrUsedAfterClose", ErrUsedAfterClose, "used after close"},
		{"ErrAlreadyClosed", ErrAlreadyClosed, "already closed"},
		{"ErrAlreadyRetrieved", ErrAlreadyRetrieved, "result already retrieved"},
		{"ErrEncodingFailure", ErrEncodingFailure, "encoding failure"},
		{"ErrNoFrames", ErrNoFrames, "no frames"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "channel",
				Field:  "capacity",
				Value:  -1,
				Reason: "must be positive",
			},
			want: "channel: invalid capacity=-1 (must be positive)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "gif",
				Field:  "pixels",
				Value:  12,
				Reason: "length mismatch",
				Hint:   "expected width*height*4 bytes",
			},
			want: "gif: invalid pixels=12 (length mismatch) - expected width*height*4 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test").WithHint("hint")

	if verr.Unwrap() != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", verr.Unwrap())
	}
	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}
	if verr.Hint != "hint" {
		t.Errorf("Hint = %q, want %q", verr.Hint, "hint")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("sink refused")
	err := NewOperationError("gif", "Write", cause).WithContext("frame 3")

	if got, want := err.Error(), "gif.Write failed: sink refused (frame 3)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap the cause error")
	}
}

func TestEncodingFailure(t *testing.T) {
	if EncodingFailure(nil) != ErrEncodingFailure {
		t.Error("nil cause should yield the bare sentinel")
	}

	err := EncodingFailure(ErrNoFrames)
	if !errors.Is(err, ErrEncodingFailure) || !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected both sentinels in chain, got %v", err)
	}

	// Wrapping twice does not stack the prefix.
	again := EncodingFailure(err)
	if strings.Count(again.Error(), "encoding failure") != 1 {
		t.Errorf("prefix duplicated: %q", again.Error())
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		retryable   bool
		programming bool
	}{
		{"queue full", ErrQueueFull, true, false},
		{"wrapped queue full", NewOperationError("gif", "AddFrame", ErrQueueFull), true, false},
		{"used after close", ErrUsedAfterClose, false, true},
		{"already closed", ErrAlreadyClosed, false, true},
		{"already retrieved", ErrAlreadyRetrieved, false, true},
		{"already resolved", ErrAlreadyResolved, false, true},
		{"encoding failure", ErrEncodingFailure, false, false},
		{"nil error", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsProgrammingError(tt.err); got != tt.programming {
				t.Errorf("IsProgrammingError() = %v, want %v", got, tt.programming)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("test", "field", 0, "test"), true},
		{"wrapped validation error", NewOperationError("test", "op", NewValidationError("test", "field", 0, "test")), true},
		{"standard error", errors.New("test"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}
