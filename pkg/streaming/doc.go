/*
Package streaming holds the plumbing between a producer and a background
consumer.

  - channel: bounded queue with separate Sender and Receiver capabilities.
    TrySend never blocks; a full queue is reported as ErrQueueFull.
  - completion: one-shot Bridge carrying a single outcome from a worker back
    to its owner.

Basic usage:

	tx, rx, err := channel.New[Frame](16)
	bridge := completion.New[string]()

	go func() {
		for {
			frame, err := rx.Receive(ctx)
			if errors.Is(err, channel.ErrClosed) {
				break
			}
			...
		}
		_ = bridge.Resolve("done")
	}()

	_ = tx.TrySend(frame)
	_ = tx.Close()
	result, err := bridge.Take(ctx)
*/
package streaming
