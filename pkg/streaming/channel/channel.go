package channel

import (
	"context"
	"runtime"
	"sync"
	"time"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/common/validation"
)

// ErrQueueFull is returned by TrySend when the queue is at capacity.
var ErrQueueFull = gferrors.ErrQueueFull

// ErrClosed is returned by TrySend after Close, and by Receive once the
// queue is closed and fully drained.
var ErrClosed = gferrors.ErrClosed

// Stats holds statistics about queue usage.
type Stats struct {
	// SendCount is the total number of accepted items.
	SendCount int64

	// ReceiveCount is the total number of drained items.
	ReceiveCount int64

	// RejectedCount is the number of TrySend calls refused because the queue was full.
	RejectedCount int64

	// BufferUtilization is the current buffer utilization (0.0 to 1.0).
	BufferUtilization float64

	// LastSendTime is the timestamp of the last accepted item.
	LastSendTime time.Time

	// LastReceiveTime is the timestamp of the last drained item.
	LastReceiveTime time.Time
}

// Config holds configuration for a bounded queue.
type Config struct {
	// Capacity is the fixed number of items the queue can hold.
	Capacity int

	// OnReject is called when TrySend refuses an item because the queue is full.
	OnReject func()

	// OnClose is called once, when the queue transitions to closed.
	OnClose func()
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Capacity: 16,
	}
}

// queue is the storage shared by one Sender and one Receiver.
type queue[T any] struct {
	config Config

	mu     sync.Mutex
	buffer []T
	head   int
	tail   int
	count  int
	closed bool

	// notify wakes a receiver waiting for an item or for closure.
	notify chan struct{}

	stats Stats
}

// Sender is the producer capability of a bounded queue. It is not safe for
// use by more than one producer goroutine.
type Sender[T any] struct {
	q *queue[T]
}

// Receiver is the consumer capability of a bounded queue. It is not safe for
// use by more than one consumer goroutine.
type Receiver[T any] struct {
	q *queue[T]
}

// New creates a bounded queue of the given capacity and returns its two ends.
func New[T any](capacity int) (*Sender[T], *Receiver[T], error) {
	config := DefaultConfig()
	config.Capacity = capacity
	return NewWithConfig[T](config)
}

// NewWithConfig creates a bounded queue with the specified configuration.
//
// If the Sender becomes unreachable without Close having been called, the
// queue is closed when the garbage collector reclaims it, so a Receiver never
// waits forever on a queue nobody can close. Code should still close
// explicitly, or use Produce.
func NewWithConfig[T any](config Config) (*Sender[T], *Receiver[T], error) {
	if err := validation.ValidatePositive("channel", "capacity", config.Capacity); err != nil {
		return nil, nil, err
	}

	q := &queue[T]{
		config: config,
		buffer: make([]T, config.Capacity),
		notify: make(chan struct{}, 1),
	}

	tx := &Sender[T]{q: q}
	runtime.AddCleanup(tx, func(q *queue[T]) { q.close() }, q)

	return tx, &Receiver[T]{q: q}, nil
}

// Produce runs fn with tx and closes tx on every exit path, including a panic
// in fn.
func Produce[T any](tx *Sender[T], fn func(tx *Sender[T]) error) error {
	defer tx.Close()
	return fn(tx)
}

// TrySend enqueues value without blocking. It returns ErrQueueFull, leaving
// the queue untouched, when the queue is at capacity, and ErrClosed after
// Close.
func (tx *Sender[T]) TrySend(value T) error {
	q := tx.q
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}

	if q.count >= len(q.buffer) {
		q.stats.RejectedCount++
		q.mu.Unlock()
		if q.config.OnReject != nil {
			q.config.OnReject()
		}
		return ErrQueueFull
	}

	q.addToBufferLocked(value)
	q.stats.SendCount++
	q.stats.LastSendTime = time.Now()
	q.mu.Unlock()

	q.signal()
	return nil
}

// Close marks the queue closed. Items already queued stay available to the
// Receiver. Close is idempotent and always returns nil.
func (tx *Sender[T]) Close() error {
	tx.q.close()
	return nil
}

// IsClosed returns true if the queue is closed.
func (tx *Sender[T]) IsClosed() bool {
	return tx.q.isClosed()
}

// Len returns the current number of queued items.
func (tx *Sender[T]) Len() int {
	return tx.q.len()
}

// Cap returns the queue capacity.
func (tx *Sender[T]) Cap() int {
	return len(tx.q.buffer)
}

// IsFull reports whether the next TrySend would be rejected for lack of space.
func (tx *Sender[T]) IsFull() bool {
	return tx.q.len() >= len(tx.q.buffer)
}

// Stats returns queue statistics.
func (tx *Sender[T]) Stats() Stats {
	return tx.q.snapshot()
}

// Receive returns the next item. While the queue is empty and open it waits
// for an item, for closure, or for ctx to be done. Once the queue is closed
// and empty it returns ErrClosed.
func (rx *Receiver[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	q := rx.q

	for {
		value, ok, err := rx.TryReceive()
		if ok || err != nil {
			return value, err
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryReceive returns the next item without waiting. ok is false when the
// queue is empty; err is ErrClosed when it is also closed.
func (rx *Receiver[T]) TryReceive() (value T, ok bool, err error) {
	q := rx.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		if q.closed {
			return value, false, ErrClosed
		}
		return value, false, nil
	}

	value = q.removeFromBufferLocked()
	q.stats.ReceiveCount++
	q.stats.LastReceiveTime = time.Now()
	return value, true, nil
}

// Len returns the current number of queued items.
func (rx *Receiver[T]) Len() int {
	return rx.q.len()
}

// IsClosed returns true if the queue is closed.
func (rx *Receiver[T]) IsClosed() bool {
	return rx.q.isClosed()
}

func (q *queue[T]) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.signal()
	if q.config.OnClose != nil {
		q.config.OnClose()
	}
}

func (q *queue[T]) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

func (q *queue[T]) snapshot() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.BufferUtilization = float64(q.count) / float64(len(q.buffer))
	return stats
}

// signal wakes the receiver without blocking; one pending token is enough
// because the receiver re-checks the buffer after every wake-up.
func (q *queue[T]) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// addToBufferLocked adds a value to the buffer (must hold lock).
func (q *queue[T]) addToBufferLocked(value T) {
	q.buffer[q.tail] = value
	q.tail = (q.tail + 1) % len(q.buffer)
	q.count++
}

// removeFromBufferLocked removes a value from the buffer (must hold lock).
func (q *queue[T]) removeFromBufferLocked() T {
	value := q.buffer[q.head]
	var zero T
	q.buffer[q.head] = zero // Clear reference
	q.head = (q.head + 1) % len(q.buffer)
	q.count--
	return value
}
