package testutil

import (
	"bytes"
	"sync"
	"time"
)

// MockClock is a manually advanced time source, shaped to fit
// blobstore.WithClock.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock returns a clock stopped at start, or at the current time when
// start is zero.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// MockWriter is an encoder sink that keeps what it is given until Fail is
// called; from then on every write is refused with the stored error.
type MockWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes int
	err    error
}

func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

func (w *MockWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writes++
	if w.err != nil {
		return 0, w.err
	}
	return w.buf.Write(p)
}

// Fail makes every later write return err.
func (w *MockWriter) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Bytes returns a copy of everything accepted so far.
func (w *MockWriter) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.buf.Bytes())
}

// Writes counts Write calls, refused ones included.
func (w *MockWriter) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
