package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the framepipe library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrQueueFull indicates that a bounded queue rejected an item because it
	// is at capacity. The caller should retry later.
	ErrQueueFull = errors.New("queue is full")

	// ErrUsedAfterClose indicates a submission to a pipeline that is no longer open
	ErrUsedAfterClose = errors.New("used after close")

	// ErrAlreadyClosed indicates that close was called more than once
	ErrAlreadyClosed = errors.New("already closed")

	// ErrAlreadyRetrieved indicates that a one-shot result was read twice
	ErrAlreadyRetrieved = errors.New("result already retrieved")

	// ErrAlreadyResolved indicates that a one-shot result was written twice
	ErrAlreadyResolved = errors.New("result already resolved")

	// ErrEncodingFailure indicates that the encoding engine did not produce an
	// artifact. It is terminal for the pipeline instance.
	ErrEncodingFailure = errors.New("encoding failure")

	// ErrWorkerAborted indicates an unexpected internal failure inside a
	// background worker. It is always wrapped in ErrEncodingFailure before it
	// reaches the owner of a pipeline.
	ErrWorkerAborted = errors.New("worker aborted")

	// ErrWorkerFailed is the aggregated failure reported by a scope when at
	// least one of its workers failed.
	ErrWorkerFailed = errors.New("a scoped worker failed")

	// ErrNoFrames indicates that a pipeline was finalized without any frames
	ErrNoFrames = errors.New("no frames")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrQueueFull)
}

// IsProgrammingError returns true if the error reports misuse of an API by
// its caller rather than a runtime condition.
func IsProgrammingError(err error) bool {
	return errors.Is(err, ErrUsedAfterClose) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, ErrAlreadyRetrieved) ||
		errors.Is(err, ErrAlreadyResolved)
}

// EncodingFailure wraps cause so that it matches both ErrEncodingFailure and
// cause with errors.Is.
func EncodingFailure(cause error) error {
	if cause == nil {
		return ErrEncodingFailure
	}
	if errors.Is(cause, ErrEncodingFailure) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrEncodingFailure, cause)
}

// ValidationError describes a rejected configuration or argument value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError for module.field.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the receiver.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration so callers can match any
// validation failure with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OperationError records which operation of which module failed.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError wrapping cause.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches additional detail and returns the receiver.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err (or any error in its chain) is a
// *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
