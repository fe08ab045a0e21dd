package scope

import "context"

// Handle is the join capability for one scoped worker. It is the only way to
// observe the worker's own value and error; the scope's aggregated failure
// only says that some worker failed.
type Handle[T any] struct {
	info TaskInfo
	done chan struct{}
	val  T
	err  error
}

// Join blocks until the worker has returned and yields its value and error.
// A worker that panicked yields a *PanicError. Join may be called any number
// of times, including after the scope has finished.
func (h *Handle[T]) Join() (T, error) {
	<-h.done
	return h.val, h.err
}

// JoinContext is like Join but gives up when ctx is done.
func (h *Handle[T]) JoinContext(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed when the worker has returned.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Name returns the name the worker was spawned with.
func (h *Handle[T]) Name() string {
	return h.info.Name
}
