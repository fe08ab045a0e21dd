package encoder

import (
	"context"

	"github.com/vnykmshr/framepipe/pkg/streaming/completion"
)

// Completion is the owner's read capability for an Encoder's outcome: the
// artifact locator, or an error matching errors.ErrEncodingFailure.
type Completion struct {
	bridge *completion.Bridge[string]
}

// Wait returns the outcome once it is available, or ctx.Err() if ctx is done
// first. A cancelled Wait can be retried. After the outcome has been
// returned once, Wait returns errors.ErrAlreadyRetrieved.
func (c *Completion) Wait(ctx context.Context) (string, error) {
	return c.bridge.Take(ctx)
}

// Done returns a channel that is closed once the outcome is available.
func (c *Completion) Done() <-chan struct{} {
	return c.bridge.Done()
}

// TryResult returns the outcome without waiting; ok is false while it is
// pending.
func (c *Completion) TryResult() (locator string, ok bool, err error) {
	return c.bridge.TryTake()
}
