// Package encoder turns a stream of RGBA frames into a published animated GIF
// without ever blocking the caller.
//
// An Encoder moves through four states:
//
//	Open --Close--> Closed --artifact published--> Finished
//	                       \--any failure---------> Failed
//
// While Open, SubmitFrame queues frames for a background consumer worker.
// The queue is bounded; a full queue is reported as errors.ErrQueueFull and
// the caller is expected to retry later. Close hands out a Completion, which
// later yields the artifact locator or an error matching
// errors.ErrEncodingFailure. Frames are encoded in submission order and
// Close flushes every accepted frame.
//
//	enc, err := encoder.New(encoder.WithPublisher(store))
//	if err != nil { ... }
//	for _, frame := range frames {
//		for {
//			ok, err := enc.SubmitFrame(frame, w, h, 25)
//			if ok { break }
//			if !errors.IsRetryable(err) { return err }
//			time.Sleep(5 * time.Millisecond)
//		}
//	}
//	completion, _ := enc.Close()
//	locator, err := completion.Wait(ctx)
//
// The consumer runs inside a scope (package scope) owned by a supervisor
// goroutine, so a panicking worker resolves the completion with a failure
// instead of crashing the process or leaving Wait hanging.
package encoder
