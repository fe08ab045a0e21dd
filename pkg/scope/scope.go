package scope

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gfcontext "github.com/vnykmshr/framepipe/pkg/common/context"
	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
)

// state is shared by the scope owner and every worker goroutine.
// running and failed are the only fields written from more than one goroutine
// without the mutex. The closed check in Spawn and the close in shutdown
// both hold mu.
type state struct {
	running atomic.Int64
	spawned atomic.Int64
	failed  atomic.Bool // sticky
	closed  atomic.Bool

	// wake is the owner's wake-up signal. Exiting workers send on it
	// without blocking so the wait loop can return before its next tick.
	wake chan struct{}

	mu   sync.Mutex
	errs []*TaskError
}

// Scope is a region of execution that does not return until every worker
// spawned into it has exited. Create one with Run; spawn workers with Spawn
// or Scope.Go.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config
	st     *state
}

// Run creates a Scope, invokes body with it, then blocks until every worker
// spawned into the scope has exited.
//
// Precedence of the outcome once all workers are done:
//   - a panic in body is re-raised;
//   - an error returned by body is returned;
//   - if any worker failed, an error matching errors.ErrWorkerFailed that
//     joins every *TaskError is returned;
//   - otherwise body's value is returned.
//
// Run blocks its calling goroutine. It must not be called from a goroutine
// that a spawned worker depends on to make progress.
func Run[T any](ctx context.Context, body func(s *Scope) (T, error), opts ...Option) (T, error) {
	s := newScope(ctx, opts...)

	result, bodyPanic, err := runBody(s, body)

	s.shutdown()
	s.cancel()

	if bodyPanic != nil {
		panic(bodyPanic)
	}
	if err != nil {
		return result, err
	}
	if ferr := s.failure(); ferr != nil {
		var zero T
		return zero, ferr
	}
	return result, nil
}

func newScope(parent context.Context, opts ...Option) *Scope {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	return &Scope{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		st: &state{
			wake: make(chan struct{}, 1),
		},
	}
}

// runBody calls body, capturing a panic instead of letting it unwind past
// the wait.
func runBody[T any](s *Scope, body func(*Scope) (T, error)) (result T, panicked any, err error) {
	defer func() {
		panicked = recover()
	}()
	result, err = body(s)
	return result, nil, err
}

// shutdown waits for the workers, then marks the scope closed. The final
// zero check and the closed flag are taken under st.mu so a concurrent Spawn
// either lands before the close and is waited for, or panics.
func (s *Scope) shutdown() {
	for {
		s.wait()
		s.st.mu.Lock()
		if s.st.running.Load() == 0 {
			s.st.closed.Store(true)
			s.st.mu.Unlock()
			return
		}
		s.st.mu.Unlock()
	}
}

// wait polls the running counter until it reaches zero.
func (s *Scope) wait() {
	for s.st.running.Load() != 0 {
		gfcontext.SleepOrWake(context.Background(), s.cfg.pollInterval, s.st.wake)
	}
}

func (s *Scope) failure() error {
	if !s.st.failed.Load() {
		return nil
	}

	s.st.mu.Lock()
	errs := make([]error, 0, len(s.st.errs))
	for _, te := range s.st.errs {
		errs = append(errs, te)
	}
	s.st.mu.Unlock()

	return fmt.Errorf("%w: %w", gferrors.ErrWorkerFailed, errors.Join(errs...))
}

// Spawn starts fn on a new goroutine owned by s and returns its Handle.
// The running counter is incremented before the goroutine starts and
// decremented on every exit path, including panics.
//
// Workers may call Spawn on the same scope while they are running. Spawn
// panics if the scope has already finished waiting. A worker that exits
// through runtime.Goexit fails with errors.ErrWorkerAborted.
func Spawn[T any](s *Scope, name string, fn func(ctx context.Context) (T, error)) *Handle[T] {
	s.st.mu.Lock()
	if s.st.closed.Load() {
		s.st.mu.Unlock()
		panic("scope: Spawn called after scope shutdown")
	}
	s.st.running.Add(1)
	s.st.spawned.Add(1)
	s.st.mu.Unlock()

	h := &Handle[T]{
		info: TaskInfo{Name: name},
		done: make(chan struct{}),
	}
	s.cfg.logger.Debug("scoped worker spawned", "task", name)

	go execute(s, h, fn)
	return h
}

// Go spawns a worker that produces no value.
func (s *Scope) Go(name string, fn func(ctx context.Context) error) *Handle[struct{}] {
	return Spawn(s, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

func execute[T any](s *Scope, h *Handle[T], fn func(context.Context) (T, error)) {
	start := time.Now()
	completed := false
	defer s.release()
	defer func() {
		if r := recover(); r != nil {
			h.err = newPanicError(r)
		} else if !completed {
			// runtime.Goexit unwound the worker.
			h.err = gferrors.ErrWorkerAborted
		}
		close(h.done)
		s.exit(h.info, h.err, time.Since(start))
	}()

	if s.cfg.onStart != nil {
		s.cfg.onStart(h.info)
	}
	h.val, h.err = fn(s.ctx)
	completed = true
}

func (s *Scope) exit(info TaskInfo, err error, elapsed time.Duration) {
	if err != nil {
		s.st.mu.Lock()
		s.st.errs = append(s.st.errs, &TaskError{Task: info, Err: err})
		s.st.mu.Unlock()
		s.st.failed.Store(true)

		s.cfg.logger.Error("scoped worker failed",
			"task", info.Name,
			"panic", IsPanic(err),
			"error", err,
		)
	} else {
		s.cfg.logger.Debug("scoped worker finished", "task", info.Name, "elapsed", elapsed)
	}

	if s.cfg.onDone != nil {
		s.cfg.onDone(info, err, elapsed)
	}
}

func (s *Scope) release() {
	if s.st.running.Add(-1) == 0 {
		select {
		case s.st.wake <- struct{}{}:
		default:
		}
	}
}

// Context returns the context handed to every worker. It is cancelled once
// the scope has finished waiting, or earlier if the parent is cancelled.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Running returns the number of workers that have not exited yet.
func (s *Scope) Running() int64 {
	return s.st.running.Load()
}

// TotalSpawned returns the number of workers spawned into the scope.
func (s *Scope) TotalSpawned() int64 {
	return s.st.spawned.Load()
}

// Failed reports whether any worker has failed. Once true it stays true.
func (s *Scope) Failed() bool {
	return s.st.failed.Load()
}
