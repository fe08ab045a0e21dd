package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vnykmshr/framepipe/pkg/artifact/blobstore"
	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
	"github.com/vnykmshr/framepipe/pkg/metrics"
	"github.com/vnykmshr/framepipe/pkg/scope"
	"github.com/vnykmshr/framepipe/pkg/streaming/completion"
)

// consumerName is the name of the scoped worker that drains the queue.
const consumerName = "consumer"

// Encoder turns submitted RGBA frames into a published GIF.
//
// SubmitFrame and Close are meant to be called from a single owner
// goroutine; the query methods are safe from any goroutine. Encoding runs on
// a background worker owned by a scope; the scope's blocking wait runs on a
// supervisor goroutine, never on the owner's.
type Encoder struct {
	config Config
	p      *pipeline

	mu         sync.Mutex
	collector  *gif.Collector
	frameIndex int
	closed     bool
	completion *Completion
}

// pipeline is the part of an Encoder the supervisor goroutine shares. It
// holds no reference to the Collector, so an Encoder dropped without Close
// lets the queue's producer end be collected, which closes the queue.
type pipeline struct {
	opts   options
	logger *slog.Logger
	bridge *completion.Bridge[string]
	done   chan struct{}

	mu      sync.Mutex
	closed  bool
	settled State
}

// New creates an Encoder with the default configuration and starts its
// consumer worker.
func New(opts ...Option) (*Encoder, error) {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewWithConfig creates an Encoder with the given configuration and starts
// its consumer worker.
func NewWithConfig(config Config, opts ...Option) (*Encoder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := options{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.progress == nil {
		o.progress = gif.NoopReporter{}
	}
	if o.publisher == nil {
		store, err := blobstore.New(blobstore.Config{Name: "encoder"}, blobstore.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.publisher = store
	}

	collector, writer, err := gif.New(config.Settings)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		opts:   o,
		logger: o.logger,
		bridge: completion.New[string](),
		done:   make(chan struct{}),
	}
	if o.registry != nil {
		o.registry.QueueCapacity.WithLabelValues(o.metricsName).Set(float64(collector.Cap()))
	}

	go p.supervise(config.PollInterval, writer)

	p.logger.Debug("encoder started",
		"queue_capacity", config.Settings.QueueCapacity,
		"rate", config.Rate,
	)

	return &Encoder{
		config:     config,
		p:          p,
		collector:  collector,
		completion: &Completion{bridge: p.bridge},
	}, nil
}

// SubmitFrame offers one frame to the encoder without blocking. pixels must
// hold width*height*4 bytes of interleaved RGBA and must not be modified
// afterwards. The frame's timestamp is its index divided by rate; a
// non-positive rate falls back to Config.Rate.
//
// It returns (true, nil) when the frame was queued. Otherwise it returns
// false and:
//   - errors.ErrQueueFull when the queue is at capacity; retry later,
//   - errors.ErrUsedAfterClose after Close,
//   - a *errors.ValidationError for a malformed buffer,
//   - an errors.ErrEncodingFailure error if the worker has already failed.
//
// Only an accepted frame advances the frame index.
func (e *Encoder) SubmitFrame(pixels []byte, width, height int, rate float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.p.count(func(r *metrics.Registry, name string) {
		r.FramesSubmitted.WithLabelValues(name).Inc()
	})

	if e.closed {
		e.p.reject("closed")
		return false, gferrors.ErrUsedAfterClose
	}
	if e.p.bridge.Resolved() {
		e.p.reject("failed")
		return false, gferrors.EncodingFailure(gferrors.ErrWorkerAborted)
	}

	if rate <= 0 {
		rate = e.config.Rate
	}
	index := e.frameIndex
	err := e.collector.AddFrameRGBA(index, pixels, width, height, float64(index)/rate)
	switch {
	case errors.Is(err, gferrors.ErrQueueFull):
		e.p.reject("queue_full")
		e.p.logger.Debug("frame rejected, queue full", "index", index, "queue_size", e.collector.Len())
		return false, err
	case err != nil:
		e.p.reject("invalid")
		return false, err
	}

	e.frameIndex++
	e.p.count(func(r *metrics.Registry, name string) {
		r.FramesAccepted.WithLabelValues(name).Inc()
		r.QueueDepth.WithLabelValues(name).Set(float64(e.collector.Len()))
	})
	e.p.logger.Debug("frame accepted", "index", index, "width", width, "height", height)
	return true, nil
}

// Close stops accepting frames and returns the completion handle. Frames
// already queued are still encoded. A second call returns
// errors.ErrAlreadyClosed and changes nothing.
func (e *Encoder) Close() (*Completion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, gferrors.ErrAlreadyClosed
	}
	e.closed = true

	e.p.mu.Lock()
	e.p.closed = true
	e.p.mu.Unlock()

	_ = e.collector.Close()
	e.p.logger.Debug("encoder closed", "frames", e.frameIndex, "queued", e.collector.Len())
	return e.completion, nil
}

// IsClosed reports whether Close has been called.
func (e *Encoder) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// QueueSize returns the number of frames waiting to be encoded.
func (e *Encoder) QueueSize() int {
	return e.collector.Len()
}

// FrameIndex returns the index the next accepted frame will get, which is
// also the number of frames accepted so far.
func (e *Encoder) FrameIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameIndex
}

// State returns the current lifecycle state.
func (e *Encoder) State() State {
	return e.p.state()
}

// Done returns a channel that is closed once the consumer worker and its
// scope have fully exited.
func (e *Encoder) Done() <-chan struct{} {
	return e.p.done
}

func (p *pipeline) state() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.closed:
		return StateOpen
	case p.settled.Terminal():
		return p.settled
	default:
		return StateClosed
	}
}

// supervise owns the scope. It runs the consumer, waits for it and makes
// sure the bridge resolves however the consumer exited.
func (p *pipeline) supervise(pollInterval time.Duration, writer *gif.Writer) {
	defer close(p.done)

	_, err := scope.Run(context.Background(), func(s *scope.Scope) (struct{}, error) {
		scope.Spawn(s, consumerName, func(ctx context.Context) (string, error) {
			return p.consume(ctx, writer)
		})
		return struct{}{}, nil
	}, p.scopeOptions(pollInterval)...)

	if p.bridge.Resolved() {
		return
	}

	// The consumer left without settling: it panicked or was unwound by
	// runtime.Goexit.
	cause := error(gferrors.ErrWorkerAborted)
	switch {
	case errors.Is(err, gferrors.ErrWorkerAborted):
		cause = err
	case err != nil:
		cause = fmt.Errorf("%w: %w", gferrors.ErrWorkerAborted, err)
	}
	p.settle("", gferrors.EncodingFailure(cause))
}

// consume is the consumer worker: drain, encode, publish, resolve. It never
// retries.
func (p *pipeline) consume(ctx context.Context, writer *gif.Writer) (string, error) {
	if p.opts.gate != nil {
		<-p.opts.gate
	}

	var buf bytes.Buffer
	stats, err := writer.Write(ctx, &buf, p.opts.progress)
	if err != nil {
		err = gferrors.EncodingFailure(err)
		p.settle("", err)
		return "", err
	}

	locator, err := p.opts.publisher.Publish(ctx, buf.Bytes(), ContentType)
	if err != nil {
		err = gferrors.EncodingFailure(gferrors.NewOperationError("encoder", "Publish", err))
		p.settle("", err)
		return "", err
	}

	p.count(func(r *metrics.Registry, name string) {
		r.EncodeDuration.WithLabelValues(name).Observe(stats.Duration.Seconds())
		r.ArtifactBytes.WithLabelValues(name).Add(float64(stats.Bytes))
	})
	p.logger.Info("artifact published",
		"locator", locator,
		"frames", stats.Frames,
		"dimensions", fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		"size", humanize.Bytes(uint64(stats.Bytes)),
		"elapsed", stats.Duration,
	)
	p.settle(locator, nil)
	return locator, nil
}

// settle records the final outcome, then resolves the bridge. The state is
// set first so an owner woken by the bridge observes the terminal state.
func (p *pipeline) settle(locator string, err error) {
	outcome := StateFinished
	if err != nil {
		outcome = StateFailed
	}

	p.mu.Lock()
	if p.settled.Terminal() {
		p.mu.Unlock()
		p.logger.Warn("completion already settled, outcome dropped", "error", err)
		return
	}
	p.settled = outcome
	p.mu.Unlock()

	if err != nil {
		if !p.bridge.FailPending(err) {
			p.logger.Warn("completion already settled, failure dropped", "error", err)
		}
		p.logger.Error("encoding failed", "error", err)
	} else if rerr := p.bridge.Resolve(locator); rerr != nil {
		p.logger.Warn("completion already settled, result dropped", "error", rerr)
	}

	p.count(func(r *metrics.Registry, name string) {
		r.Outcomes.WithLabelValues(name, outcome.String()).Inc()
		r.QueueDepth.WithLabelValues(name).Set(0)
	})
}

func (p *pipeline) scopeOptions(pollInterval time.Duration) []scope.Option {
	opts := []scope.Option{
		scope.WithPollInterval(pollInterval),
		scope.WithLogger(p.logger),
	}
	if reg := p.opts.registry; reg != nil {
		name := p.opts.metricsName
		opts = append(opts,
			scope.WithOnStart(func(scope.TaskInfo) {
				reg.ScopeWorkersActive.WithLabelValues(name).Inc()
			}),
			scope.WithOnDone(func(_ scope.TaskInfo, err error, d time.Duration) {
				reg.ScopeWorkersActive.WithLabelValues(name).Dec()
				reg.ScopeWorkerDuration.WithLabelValues(name).Observe(d.Seconds())
				if err != nil {
					reg.ScopeWorkerFailures.WithLabelValues(name).Inc()
				}
			}),
		)
	}
	return append(opts, p.opts.scopeOpts...)
}

func (p *pipeline) count(fn func(r *metrics.Registry, name string)) {
	if p.opts.registry != nil {
		fn(p.opts.registry, p.opts.metricsName)
	}
}

func (p *pipeline) reject(reason string) {
	p.count(func(r *metrics.Registry, name string) {
		r.FramesRejected.WithLabelValues(name, reason).Inc()
	})
}
