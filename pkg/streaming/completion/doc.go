// Package completion provides a one-shot result bridge from a blocking
// background worker to an owner that must stay responsive.
//
// The worker resolves the Bridge once, with a value or a failure. The owner
// observes it without blocking through Done, TryTake, or a context-bounded
// Take, and can read the outcome exactly once; a second read is reported as
// ErrAlreadyRetrieved instead of repeating the value.
//
//	b := completion.New[string]()
//	go func() { _ = b.Resolve(encode()) }()
//
//	locator, err := b.Take(ctx)
package completion
