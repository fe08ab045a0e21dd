/*
Package scope provides scoped workers: goroutines whose lifetime is bounded by
an enclosing call.

Run creates a Scope, hands it to a body function, and does not return until
every worker spawned into the scope has exited. Because of that guarantee a
worker may safely use data owned by the caller of Run for as long as it runs.

	artifact, err := scope.Run(ctx, func(s *scope.Scope) (string, error) {
		h := scope.Spawn(s, "consumer", func(ctx context.Context) (string, error) {
			return drain(ctx, rx)
		})
		s.Go("audit", func(ctx context.Context) error {
			return audit(ctx)
		})
		return h.Join()
	})

Scope state:

The scope tracks the number of running workers with an atomic counter that
is incremented before a worker goroutine starts and decremented when it
exits, and a sticky failed flag. A worker that returns an error or panics
sets the flag; the panic is recovered into a *PanicError and never
propagates out of the worker goroutine.

Waiting:

Run waits with a bounded-interval poll over the counter (one millisecond by
default, see WithPollInterval). Exiting workers also nudge the waiter so
that it normally returns as soon as the last worker is gone. Run blocks the
calling goroutine; call it from a goroutine that can afford to block, never
from one a worker needs in order to finish.

Failure precedence:

A panic in the body wins, then an error returned by the body, then the
aggregated worker failure (matching errors.ErrWorkerFailed, with every
*TaskError joined in). Every outcome is reported only after all workers have
exited. Use Handle.Join to observe an individual worker's result.
*/
package scope
