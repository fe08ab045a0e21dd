package gif

import (
	"fmt"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/common/validation"
	"github.com/vnykmshr/framepipe/pkg/streaming/channel"
)

// MaxDimension is the largest width or height a GIF logical screen can hold.
const MaxDimension = 1<<16 - 1

// Frame is one RGBA image queued for encoding.
type Frame struct {
	// Index is the position of the frame in the animation, starting at 0.
	Index int

	// Pixels holds interleaved 8-bit RGBA, row-major, Width*Height*4 bytes.
	Pixels []byte

	Width  int
	Height int

	// Timestamp is the presentation time in seconds.
	Timestamp float64
}

// Collector is the producer handle of the engine. It never blocks: a full
// queue is reported as ErrQueueFull so the caller can apply backpressure.
type Collector struct {
	tx *channel.Sender[Frame]
}

// AddFrameRGBA queues a frame. pixels is retained, not copied; the caller
// must not modify it afterwards.
//
// It returns a *errors.ValidationError for a malformed buffer or for
// dimensions beyond MaxDimension, ErrQueueFull
// when the queue is at capacity and ErrClosed after Close.
func (c *Collector) AddFrameRGBA(index int, pixels []byte, width, height int, timestamp float64) error {
	if err := validation.ValidateRGBA("gif", len(pixels), width, height); err != nil {
		return err
	}
	if width > MaxDimension || height > MaxDimension {
		return gferrors.NewValidationError("gif", "dimensions", fmt.Sprintf("%dx%d", width, height),
			"exceeds GIF limit").WithHint("width and height must be at most 65535")
	}

	return c.tx.TrySend(Frame{
		Index:     index,
		Pixels:    pixels,
		Width:     width,
		Height:    height,
		Timestamp: timestamp,
	})
}

// IsFull reports whether the next AddFrameRGBA would be rejected for lack of space.
func (c *Collector) IsFull() bool {
	return c.tx.IsFull()
}

// Len returns the number of frames waiting to be encoded.
func (c *Collector) Len() int {
	return c.tx.Len()
}

// Cap returns the queue capacity.
func (c *Collector) Cap() int {
	return c.tx.Cap()
}

// Close signals that no more frames will be added. Frames already queued are
// still encoded. Close is idempotent.
func (c *Collector) Close() error {
	return c.tx.Close()
}

// IsClosed reports whether Close has been called.
func (c *Collector) IsClosed() bool {
	return c.tx.IsClosed()
}

// Stats returns statistics of the underlying queue.
func (c *Collector) Stats() channel.Stats {
	return c.tx.Stats()
}
