package completion

import (
	"context"
	"sync"
	"sync/atomic"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
)

// ErrAlreadyResolved is returned by Resolve and Fail after the first write.
var ErrAlreadyResolved = gferrors.ErrAlreadyResolved

// ErrAlreadyRetrieved is returned by Take and TryTake after the first read.
var ErrAlreadyRetrieved = gferrors.ErrAlreadyRetrieved

// Bridge is a one-shot result slot carrying one outcome from a background
// worker to its owner. The first write wins; later writes are rejected with
// ErrAlreadyResolved and leave the slot unchanged. The outcome can be taken
// exactly once.
type Bridge[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
	err      error

	done  chan struct{}
	taken atomic.Bool
}

// New creates an unresolved Bridge.
func New[T any]() *Bridge[T] {
	return &Bridge[T]{
		done: make(chan struct{}),
	}
}

// Resolve stores a successful outcome.
func (b *Bridge[T]) Resolve(value T) error {
	return b.set(value, nil)
}

// Fail stores a failure outcome. A nil err is recorded as
// errors.ErrWorkerAborted so a failure is never mistaken for success.
func (b *Bridge[T]) Fail(err error) error {
	if err == nil {
		err = gferrors.ErrWorkerAborted
	}
	var zero T
	return b.set(zero, err)
}

// FailPending stores err only if the bridge is still unresolved. It reports
// whether it did. Owners call it after a worker has exited to make sure the
// bridge resolves even when the worker never got to it.
func (b *Bridge[T]) FailPending(err error) bool {
	return b.Fail(err) == nil
}

func (b *Bridge[T]) set(value T, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.resolved {
		return ErrAlreadyResolved
	}
	b.resolved = true
	b.value = value
	b.err = err
	close(b.done)
	return nil
}

// Done returns a channel that is closed once the bridge is resolved.
func (b *Bridge[T]) Done() <-chan struct{} {
	return b.done
}

// Resolved reports whether an outcome has been stored.
func (b *Bridge[T]) Resolved() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Take waits for the outcome and returns it. Waiting is cooperative: it ends
// when the bridge resolves or ctx is done, and a cancelled Take does not
// consume the outcome. Once an outcome has been returned, every later call
// returns ErrAlreadyRetrieved.
func (b *Bridge[T]) Take(ctx context.Context) (T, error) {
	var zero T

	if b.taken.Load() {
		return zero, ErrAlreadyRetrieved
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	value, ok, err := b.take()
	if !ok {
		return zero, ErrAlreadyRetrieved
	}
	return value, err
}

// TryTake returns the outcome without waiting. ok is false while the bridge
// is unresolved.
func (b *Bridge[T]) TryTake() (value T, ok bool, err error) {
	if b.taken.Load() {
		return value, false, ErrAlreadyRetrieved
	}
	if !b.Resolved() {
		return value, false, nil
	}
	value, ok, err = b.take()
	if !ok {
		return value, false, ErrAlreadyRetrieved
	}
	return value, true, err
}

// take hands out the stored outcome to the first caller only; ok is false
// for every later caller.
func (b *Bridge[T]) take() (value T, ok bool, err error) {
	if !b.taken.CompareAndSwap(false, true) {
		return value, false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	value, err = b.value, b.err
	var zero T
	b.value = zero
	return value, true, err
}
