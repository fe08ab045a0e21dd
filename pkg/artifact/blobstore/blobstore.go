package blobstore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/common/validation"
	"github.com/vnykmshr/framepipe/pkg/metrics"
)

// Scheme prefixes every locator handed out by a Store.
const Scheme = "blob:"

// ErrNotFound is returned for a locator the store does not hold, either
// because it never existed or because it was revoked or expired.
var ErrNotFound = errors.New("blobstore: blob not found")

// Blob is one published artifact.
type Blob struct {
	Locator     string
	ContentType string
	Data        []byte
	Created     time.Time
}

// Config holds configuration for a Store.
type Config struct {
	// Name labels the store in logs and metrics.
	Name string

	// TTL is how long a blob lives before Sweep revokes it. Zero keeps blobs
	// until they are revoked explicitly.
	TTL time.Duration

	// JanitorSpec is the cron schedule on which Start runs Sweep, for
	// example "@every 1m". Empty disables the janitor.
	JanitorSpec string
}

// DefaultConfig returns a default store configuration.
func DefaultConfig() Config {
	return Config{
		Name:        "default",
		TTL:         10 * time.Minute,
		JanitorSpec: "@every 1m",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.TTL < 0 {
		return gferrors.NewValidationError("blobstore", "ttl", c.TTL, "cannot be negative")
	}
	if c.JanitorSpec != "" {
		if _, err := cron.ParseStandard(c.JanitorSpec); err != nil {
			return gferrors.NewValidationError("blobstore", "janitor_spec", c.JanitorSpec, err.Error()).
				WithHint(`use a cron expression or a descriptor such as "@every 1m"`)
		}
	}
	return nil
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records blob counts in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Store) {
		s.metrics = reg
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is an in-memory artifact store handing out opaque "blob:<uuid>"
// locators. It is safe for concurrent use.
type Store struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Registry
	now     func() time.Time

	mu    sync.RWMutex
	blobs map[string]Blob

	cronMu sync.Mutex
	cron   *cron.Cron
}

// New creates a Store.
func New(config Config, opts ...Option) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		config: config,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		blobs:  make(map[string]Blob),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("store", config.Name)
	return s, nil
}

// Publish stores a copy of data and returns its locator.
func (s *Store) Publish(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validation.ValidatePositive("blobstore", "size", len(data)); err != nil {
		return "", err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", gferrors.NewOperationError("blobstore", "Publish", err)
	}
	locator := Scheme + id.String()

	blob := Blob{
		Locator:     locator,
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
		Created:     s.now(),
	}

	s.mu.Lock()
	s.blobs[locator] = blob
	n := len(s.blobs)
	s.mu.Unlock()

	s.gauge(n)
	s.logger.Debug("blob published",
		"locator", locator,
		"content_type", contentType,
		"size", humanize.Bytes(uint64(len(data))),
	)
	return locator, nil
}

// Get returns the blob behind locator.
func (s *Store) Get(locator string) (Blob, error) {
	if !strings.HasPrefix(locator, Scheme) {
		return Blob{}, gferrors.NewValidationError("blobstore", "locator", locator, "missing blob: scheme")
	}

	s.mu.RLock()
	blob, ok := s.blobs[locator]
	s.mu.RUnlock()
	if !ok {
		return Blob{}, ErrNotFound
	}
	return blob, nil
}

// Revoke releases the blob behind locator. Revoking an unknown locator
// returns ErrNotFound.
func (s *Store) Revoke(locator string) error {
	s.mu.Lock()
	_, ok := s.blobs[locator]
	delete(s.blobs, locator)
	n := len(s.blobs)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.gauge(n)
	s.revoked("revoked", 1)
	s.logger.Debug("blob revoked", "locator", locator)
	return nil
}

// Sweep revokes every blob older than the configured TTL and returns how
// many it removed. It does nothing when TTL is zero.
func (s *Store) Sweep() int {
	if s.config.TTL == 0 {
		return 0
	}
	cutoff := s.now().Add(-s.config.TTL)

	s.mu.Lock()
	removed := 0
	for locator, blob := range s.blobs {
		if blob.Created.Before(cutoff) {
			delete(s.blobs, locator)
			removed++
		}
	}
	n := len(s.blobs)
	s.mu.Unlock()

	if removed > 0 {
		s.gauge(n)
		s.revoked("expired", removed)
		s.logger.Info("expired blobs revoked", "count", removed, "remaining", n)
	}
	return removed
}

// Len returns the number of blobs held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Start runs Sweep on the configured JanitorSpec until Stop. It is a no-op
// when JanitorSpec is empty or the janitor is already running.
func (s *Store) Start() error {
	if s.config.JanitorSpec == "" {
		return nil
	}

	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.config.JanitorSpec, func() { s.Sweep() }); err != nil {
		return gferrors.NewOperationError("blobstore", "Start", err)
	}
	c.Start()
	s.cron = c
	s.logger.Debug("janitor started", "schedule", s.config.JanitorSpec)
	return nil
}

// Stop stops the janitor and waits for a running sweep to finish, or for
// ctx to be done.
func (s *Store) Stop(ctx context.Context) error {
	s.cronMu.Lock()
	c := s.cron
	s.cron = nil
	s.cronMu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) gauge(n int) {
	if s.metrics != nil {
		s.metrics.BlobsStored.WithLabelValues(s.config.Name).Set(float64(n))
	}
}

func (s *Store) revoked(reason string, n int) {
	if s.metrics != nil {
		s.metrics.BlobsRevoked.WithLabelValues(s.config.Name, reason).Add(float64(n))
	}
}
