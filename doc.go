/*
Package framepipe encodes streams of RGBA frames into animated GIFs on a
background worker, without ever blocking the producer.

Scoped concurrency (pkg/scope):
  - Run: spawn workers that may borrow the caller's data; wait for all of them
  - Handle: join a single worker and observe its own value or panic

Streaming (pkg/streaming):
  - channel: bounded single-producer single-consumer queue with non-blocking send
  - completion: one-shot result slot, written once and read once

Encoding (pkg/encoding):
  - gif: frame collector and GIF writer over a bounded queue
  - encoder: Open, Closed, Finished and Failed state machine over the above

Artifacts (pkg/artifact):
  - blobstore: in-memory artifact store with blob: locators and TTL expiry

Example usage:

	import "github.com/vnykmshr/framepipe/pkg/encoding/encoder"

	enc, _ := encoder.New()
	ok, err := enc.SubmitFrame(pixels, 320, 240, 25)
	if !ok && errors.IsRetryable(err) {
		// queue full, try again later
	}
	completion, _ := enc.Close()
	locator, err := completion.Wait(ctx)
*/
package framepipe
