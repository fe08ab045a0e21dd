package scope

import (
	"errors"
	"fmt"
)

// TaskError wraps a worker failure together with the TaskInfo of the worker
// that produced it, so an aggregated scope failure can be attributed.
type TaskError struct {
	Task TaskInfo
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// IsPanic reports whether err (or any error in its chain) is a *PanicError.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// AllTaskErrors recursively collects every *TaskError from err's chain,
// including errors wrapped via errors.Join. Returns nil if none are found.
func AllTaskErrors(err error) []*TaskError {
	if err == nil {
		return nil
	}

	var out []*TaskError
	collectTaskErrors(err, &out)
	return out
}

func collectTaskErrors(err error, out *[]*TaskError) {
	switch e := err.(type) {
	case *TaskError:
		*out = append(*out, e)

	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectTaskErrors(sub, out)
		}

	case interface{ Unwrap() error }:
		if next := e.Unwrap(); next != nil {
			collectTaskErrors(next, out)
		}
	}
}
