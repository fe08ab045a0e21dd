package encoder

import (
	"context"
	"log/slog"
	"time"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/common/validation"
	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
	"github.com/vnykmshr/framepipe/pkg/metrics"
	"github.com/vnykmshr/framepipe/pkg/scope"
)

// ContentType is the media type artifacts are published with.
const ContentType = "image/gif"

// Publisher makes an encoded artifact available and returns its locator.
type Publisher interface {
	Publish(ctx context.Context, data []byte, contentType string) (string, error)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, data []byte, contentType string) (string, error)

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, data []byte, contentType string) (string, error) {
	return f(ctx, data, contentType)
}

// Config holds configuration for an Encoder.
type Config struct {
	// Settings configures the GIF engine, including the queue capacity.
	Settings gif.Settings

	// Rate is the frame rate, in frames per second, used to derive frame
	// timestamps when SubmitFrame is given a non-positive rate.
	Rate float64

	// PollInterval bounds how long the supervisor sleeps between checks of
	// the worker count.
	PollInterval time.Duration
}

// DefaultConfig returns a default encoder configuration.
func DefaultConfig() Config {
	return Config{
		Settings:     gif.DefaultSettings(),
		Rate:         10,
		PollInterval: scope.DefaultPollInterval,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if err := validation.ValidatePositiveFloat("encoder", "rate", c.Rate); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return gferrors.NewValidationError("encoder", "poll_interval", c.PollInterval, "must be positive")
	}
	return nil
}

// Option configures an Encoder.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	registry    *metrics.Registry
	metricsName string
	publisher   Publisher
	progress    gif.ProgressReporter
	scopeOpts   []scope.Option

	// gate, when set, holds the consumer back until it is closed.
	gate <-chan struct{}
}

// WithLogger sets the logger used by the encoder and its scope.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records encoder and worker metrics in reg under name.
func WithMetrics(reg *metrics.Registry, name string) Option {
	return func(o *options) {
		o.registry = reg
		o.metricsName = name
	}
}

// WithPublisher sets where finished artifacts are published. The default is
// a private in-memory blob store.
func WithPublisher(p Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithProgress sets the reporter told about every encoded frame. A reporter
// returning false aborts the encode.
func WithProgress(r gif.ProgressReporter) Option {
	return func(o *options) {
		o.progress = r
	}
}

// WithScopeOptions passes extra options to the scope that owns the consumer.
func WithScopeOptions(opts ...scope.Option) Option {
	return func(o *options) {
		o.scopeOpts = append(o.scopeOpts, opts...)
	}
}
