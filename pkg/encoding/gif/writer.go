package gif

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	stdgif "image/gif"
	"io"
	"math"
	"sync/atomic"
	"time"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/streaming/channel"
)

// ErrAborted is returned by Writer.Write when the ProgressReporter asks to stop.
var ErrAborted = errors.New("gif: aborted by progress reporter")

// minDelay is the smallest frame delay, in 1/100 s, that browsers honour.
const minDelay = 2

// defaultDelay is used for a single-frame animation, in 1/100 s.
const defaultDelay = 10

// ProgressReporter is told about every encoded frame. Returning false from
// Increase aborts the write.
type ProgressReporter interface {
	Increase() bool
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func() bool

// Increase implements ProgressReporter.
func (f ProgressFunc) Increase() bool {
	return f()
}

// NoopReporter accepts every frame.
type NoopReporter struct{}

// Increase implements ProgressReporter.
func (NoopReporter) Increase() bool { return true }

// Stats describes a finished write.
type Stats struct {
	Frames   int
	Width    int
	Height   int
	Bytes    int64
	Duration time.Duration
}

// Writer is the consumer handle of the engine.
type Writer struct {
	rx       *channel.Receiver[Frame]
	settings Settings
	used     atomic.Bool
}

// New creates the engine's producer and consumer handles.
func New(settings Settings) (*Collector, *Writer, error) {
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	tx, rx, err := channel.New[Frame](settings.QueueCapacity)
	if err != nil {
		return nil, nil, err
	}

	return &Collector{tx: tx}, &Writer{rx: rx, settings: settings}, nil
}

// Write drains frames until the Collector is closed and the queue is empty,
// then encodes them as an animated GIF into sink. It blocks for the whole
// drain and may be called once.
//
// Frames must arrive with consecutive indices starting at 0 and share the
// first frame's dimensions. A drain that ends with no frames fails with
// errors.ErrNoFrames.
func (w *Writer) Write(ctx context.Context, sink io.Writer, reporter ProgressReporter) (Stats, error) {
	if !w.used.CompareAndSwap(false, true) {
		return Stats{}, gferrors.NewOperationError("gif", "Write", gferrors.ErrClosed).
			WithContext("writer already used")
	}
	if reporter == nil {
		reporter = NoopReporter{}
	}

	start := time.Now()
	anim := &stdgif.GIF{LoopCount: w.settings.Repeat}
	var timestamps []float64
	var bounds image.Rectangle

	for next := 0; ; next++ {
		frame, err := w.rx.Receive(ctx)
		if errors.Is(err, channel.ErrClosed) {
			break
		}
		if err != nil {
			return Stats{}, err
		}

		if frame.Index != next {
			return Stats{}, gferrors.NewOperationError("gif", "Write",
				fmt.Errorf("frame %d arrived out of order, expected %d", frame.Index, next))
		}
		rect := image.Rect(0, 0, frame.Width, frame.Height)
		if next == 0 {
			bounds = rect
		} else if rect != bounds {
			return Stats{}, gferrors.NewOperationError("gif", "Write",
				fmt.Errorf("frame %d is %dx%d, animation is %dx%d",
					frame.Index, frame.Width, frame.Height, bounds.Dx(), bounds.Dy()))
		}

		anim.Image = append(anim.Image, w.quantize(frame))
		timestamps = append(timestamps, frame.Timestamp)

		if !reporter.Increase() {
			return Stats{}, ErrAborted
		}
	}

	if len(anim.Image) == 0 {
		return Stats{}, gferrors.ErrNoFrames
	}
	anim.Delay = delays(timestamps)

	cw := &countingWriter{w: sink}
	if err := stdgif.EncodeAll(cw, anim); err != nil {
		return Stats{}, gferrors.NewOperationError("gif", "Write", err)
	}

	return Stats{
		Frames:   len(anim.Image),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Bytes:    cw.n,
		Duration: time.Since(start),
	}, nil
}

// quantize maps a frame onto the configured palette.
func (w *Writer) quantize(f Frame) *image.Paletted {
	rect := image.Rect(0, 0, f.Width, f.Height)
	src := &image.NRGBA{
		Pix:    f.Pixels,
		Stride: f.Width * 4,
		Rect:   rect,
	}

	dst := image.NewPaletted(rect, w.settings.colors())
	if w.settings.Dither {
		draw.FloydSteinberg.Draw(dst, rect, src, image.Point{})
	} else {
		draw.Draw(dst, rect, src, image.Point{}, draw.Src)
	}
	return dst
}

// delays converts presentation timestamps into per-frame GIF delays. The last
// frame repeats the delay of the one before it.
func delays(timestamps []float64) []int {
	out := make([]int, len(timestamps))
	for i := range timestamps {
		var d int
		switch {
		case i+1 < len(timestamps):
			d = int(math.Round((timestamps[i+1] - timestamps[i]) * 100))
		case i > 0:
			d = out[i-1]
		default:
			d = defaultDelay
		}
		out[i] = max(d, minDelay)
	}
	return out
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
