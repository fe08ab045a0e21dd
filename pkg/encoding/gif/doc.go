// Package gif is the encoding engine behind the frame pipeline: it turns a
// stream of RGBA frames into an animated GIF.
//
// New returns two handles over one bounded queue. The Collector is the
// producer side and never blocks; the Writer is the consumer side and blocks
// in Write until the Collector is closed and every queued frame has been
// encoded.
//
//	collector, writer, err := gif.New(gif.DefaultSettings())
//	go func() {
//		_, err := writer.Write(ctx, out, gif.NoopReporter{})
//		...
//	}()
//	err = collector.AddFrameRGBA(0, pixels, 320, 240, 0)
//	_ = collector.Close()
//
// Frames are quantized to a fixed palette (Plan 9 or web-safe), optionally
// with Floyd-Steinberg dithering, and their delays are derived from the
// differences between consecutive timestamps.
package gif
