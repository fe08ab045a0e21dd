package scope

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/framepipe/internal/testutil"
	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
)

func TestRunReturnsBodyValue(t *testing.T) {
	got, err := Run(context.Background(), func(s *Scope) (int, error) {
		return 42, nil
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, 42)
}

func TestRunWaitsForAllWorkers(t *testing.T) {
	var finished atomic.Int32

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		for i := 0; i < 10; i++ {
			s.Go("sleeper", func(ctx context.Context) error {
				time.Sleep(time.Duration(i) * time.Millisecond)
				finished.Add(1)
				return nil
			})
		}
		return struct{}{}, nil
	})

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, finished.Load(), int32(10))
}

// Two workers, one fails: the scope waits for the slow successful one too
// and still reports the aggregated failure.
func TestRunAggregatesWorkerFailure(t *testing.T) {
	var slowDone atomic.Bool
	workerErr := errors.New("bad frame")

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		s.Go("ok", func(ctx context.Context) error {
			return nil
		})
		s.Go("failing", func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			slowDone.Store(true)
			return workerErr
		})
		return struct{}{}, nil
	})

	testutil.AssertErrorIs(t, err, gferrors.ErrWorkerFailed)
	testutil.AssertErrorIs(t, err, workerErr)
	testutil.AssertEqual(t, slowDone.Load(), true)

	tasks := AllTaskErrors(err)
	testutil.AssertEqual(t, len(tasks), 1)
	testutil.AssertEqual(t, tasks[0].Task.Name, "failing")
}

func TestRunCapturesWorkerPanic(t *testing.T) {
	var h *Handle[struct{}]

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		h = s.Go("panicky", func(ctx context.Context) error {
			panic("boom")
		})
		return struct{}{}, nil
	})

	testutil.AssertErrorIs(t, err, gferrors.ErrWorkerFailed)
	if !IsPanic(err) {
		t.Fatalf("expected a PanicError in the chain, got %v", err)
	}

	_, joinErr := h.Join()
	var pe *PanicError
	if !errors.As(joinErr, &pe) {
		t.Fatalf("Join should yield *PanicError, got %T", joinErr)
	}
	testutil.AssertEqual(t, pe.Value, any("boom"))
	if !strings.Contains(pe.Stack, "goroutine") {
		t.Error("PanicError should carry a stack trace")
	}
}

func TestBodyErrorTakesPrecedence(t *testing.T) {
	bodyErr := errors.New("body failed")
	var workerRan atomic.Bool

	_, err := Run(context.Background(), func(s *Scope) (int, error) {
		s.Go("failing", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			workerRan.Store(true)
			return errors.New("worker failed")
		})
		return 0, bodyErr
	})

	if err != bodyErr {
		t.Fatalf("got %v, want body error", err)
	}
	testutil.AssertEqual(t, workerRan.Load(), true)
}

func TestBodyPanicReraisedAfterWait(t *testing.T) {
	var workerDone atomic.Bool

	defer func() {
		r := recover()
		testutil.AssertEqual(t, r, any("body panic"))
		testutil.AssertEqual(t, workerDone.Load(), true)
	}()

	_, _ = Run(context.Background(), func(s *Scope) (int, error) {
		s.Go("slow", func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			workerDone.Store(true)
			return nil
		})
		panic("body panic")
	})

	t.Fatal("Run should have re-panicked")
}

func TestSpawnReturnsValueThroughHandle(t *testing.T) {
	got, err := Run(context.Background(), func(s *Scope) (string, error) {
		h := Spawn(s, "producer", func(ctx context.Context) (string, error) {
			return "artifact", nil
		})
		testutil.AssertEqual(t, h.Name(), "producer")
		return h.Join()
	})

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, "artifact")
}

func TestBorrowedDataOutlivesWorkers(t *testing.T) {
	data := make([]int, 100)

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		for i := range data {
			s.Go("writer", func(ctx context.Context) error {
				time.Sleep(time.Millisecond)
				data[i] = i * i
				return nil
			})
		}
		return struct{}{}, nil
	})
	testutil.AssertNoError(t, err)

	for i, v := range data {
		if v != i*i {
			t.Fatalf("data[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestNestedSpawnFromWorker(t *testing.T) {
	var leaves atomic.Int32
	var sc *Scope

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		sc = s
		s.Go("parent", func(ctx context.Context) error {
			for i := 0; i < 3; i++ {
				s.Go("child", func(ctx context.Context) error {
					time.Sleep(5 * time.Millisecond)
					leaves.Add(1)
					return nil
				})
			}
			return nil
		})
		return struct{}{}, nil
	})

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, leaves.Load(), int32(3))
	testutil.AssertEqual(t, sc.TotalSpawned(), int64(4))
	testutil.AssertEqual(t, sc.Running(), int64(0))
}

func TestSpawnAfterShutdownPanics(t *testing.T) {
	var sc *Scope
	_, _ = Run(context.Background(), func(s *Scope) (struct{}, error) {
		sc = s
		return struct{}{}, nil
	})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	sc.Go("late", func(ctx context.Context) error { return nil })
}

func TestFailedIsSticky(t *testing.T) {
	var sc *Scope
	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		sc = s
		h := s.Go("failing", func(ctx context.Context) error {
			return errors.New("x")
		})
		_, _ = h.Join()
		testutil.AssertEventually(t, s.Failed, "failed flag should be set")

		s.Go("ok", func(ctx context.Context) error { return nil })
		return struct{}{}, nil
	})

	testutil.AssertError(t, err)
	testutil.AssertEqual(t, sc.Failed(), true)
}

func TestWorkerContextCancelledAfterRun(t *testing.T) {
	var sc *Scope
	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		sc = s
		if s.Context().Err() != nil {
			t.Error("context should be live inside the body")
		}
		return struct{}{}, nil
	})
	testutil.AssertNoError(t, err)
	testutil.AssertErrorIs(t, sc.Context().Err(), context.Canceled)
}

func TestHooks(t *testing.T) {
	var mu sync.Mutex
	var started, done []string
	var failures int

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		s.Go("a", func(ctx context.Context) error { return nil })
		s.Go("b", func(ctx context.Context) error { return errors.New("b failed") })
		return struct{}{}, nil
	},
		WithOnStart(func(info TaskInfo) {
			mu.Lock()
			started = append(started, info.Name)
			mu.Unlock()
		}),
		WithOnDone(func(info TaskInfo, err error, d time.Duration) {
			mu.Lock()
			done = append(done, info.Name)
			if err != nil {
				failures++
			}
			mu.Unlock()
		}),
	)

	testutil.AssertError(t, err)
	testutil.AssertEqual(t, len(started), 2)
	testutil.AssertEqual(t, len(done), 2)
	testutil.AssertEqual(t, failures, 1)
}

func TestLoggerReceivesFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _ = Run(context.Background(), func(s *Scope) (struct{}, error) {
		s.Go("encoder", func(ctx context.Context) error { return errors.New("sink closed") })
		return struct{}{}, nil
	}, WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "scoped worker failed") || !strings.Contains(out, "task=encoder") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestPollIntervalBoundsWait(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		s.Go("quick", func(ctx context.Context) error {
			time.Sleep(2 * time.Millisecond)
			return nil
		})
		return struct{}{}, nil
	}, WithPollInterval(time.Hour))

	testutil.AssertNoError(t, err)
	// The exiting worker wakes the waiter; the hour-long tick is never sat out.
	if time.Since(start) > time.Second {
		t.Fatalf("wait did not observe the wake signal, took %v", time.Since(start))
	}
}

func TestWithPollIntervalRejectsNonPositive(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	WithPollInterval(0)(&config{})
}

func TestJoinContext(t *testing.T) {
	release := make(chan struct{})

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		h := s.Go("blocked", func(ctx context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		_, err := h.JoinContext(ctx)
		testutil.AssertErrorIs(t, err, context.DeadlineExceeded)

		close(release)
		<-h.Done()
		return struct{}{}, nil
	})
	testutil.AssertNoError(t, err)
}

func TestHooksChain(t *testing.T) {
	var calls []string
	var mu sync.Mutex
	record := func(tag string) func(TaskInfo, error, time.Duration) {
		return func(TaskInfo, error, time.Duration) {
			mu.Lock()
			calls = append(calls, tag)
			mu.Unlock()
		}
	}

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		s.Go("only", func(ctx context.Context) error { return nil })
		return struct{}{}, nil
	}, WithOnDone(record("first")), WithOnDone(record("second")))

	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(calls), 2)
	testutil.AssertEqual(t, calls[0], "first")
	testutil.AssertEqual(t, calls[1], "second")
}

func TestRunCapturesWorkerGoexit(t *testing.T) {
	var h *Handle[int]
	var sc *Scope

	_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
		sc = s
		h = Spawn(s, "exiting", func(ctx context.Context) (int, error) {
			runtime.Goexit()
			return 1, nil
		})
		return struct{}{}, nil
	})

	testutil.AssertErrorIs(t, err, gferrors.ErrWorkerFailed)
	testutil.AssertErrorIs(t, err, gferrors.ErrWorkerAborted)
	testutil.AssertEqual(t, sc.Failed(), true)
	testutil.AssertEqual(t, sc.Running(), int64(0))

	_, joinErr := h.Join()
	testutil.AssertErrorIs(t, joinErr, gferrors.ErrWorkerAborted)

	tasks := AllTaskErrors(err)
	testutil.AssertEqual(t, len(tasks), 1)
	testutil.AssertEqual(t, tasks[0].Task.Name, "exiting")
}

// A goroutine outside the scope races Spawn against shutdown. Either Spawn
// panics, or the worker it started is waited for before Run returns.
func TestSpawnRacingShutdown(t *testing.T) {
	for i := 0; i < 200; i++ {
		var accepted, ran atomic.Bool
		outside := make(chan struct{})

		_, err := Run(context.Background(), func(s *Scope) (struct{}, error) {
			go func() {
				defer close(outside)
				defer func() { _ = recover() }()
				s.Go("late", func(ctx context.Context) error {
					time.Sleep(time.Millisecond)
					ran.Store(true)
					return nil
				})
				accepted.Store(true)
			}()
			return struct{}{}, nil
		})
		ranBeforeReturn := ran.Load()
		<-outside

		testutil.AssertNoError(t, err)
		if accepted.Load() && !ranBeforeReturn {
			t.Fatalf("iteration %d: accepted worker outlived Run", i)
		}
	}
}
