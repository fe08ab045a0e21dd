/*
Package channel provides a bounded single-producer/single-consumer queue with
explicit backpressure and an explicit close protocol.

A queue is created as a pair of capabilities: a Sender for the producer and a
Receiver for the consumer. Neither end touches the other's side directly; the
ring buffer behind them is owned by the queue.

	tx, rx, err := channel.New[Frame](16)
	if err != nil {
		return err
	}

Backpressure:

The producer never blocks. TrySend either enqueues the item or returns
ErrQueueFull without changing anything, so the producer can slow down and
retry. Len, Cap and IsFull expose occupancy for the producer's own decisions.

	if err := tx.TrySend(frame); errors.Is(err, channel.ErrQueueFull) {
		// retry later
	}

Closing:

Close is a one-way, idempotent transition. After it, TrySend returns
ErrClosed, while items already queued remain available. Receive drains them
in order and returns ErrClosed only once the queue is both closed and empty.

	for {
		frame, err := rx.Receive(ctx)
		if errors.Is(err, channel.ErrClosed) {
			break // drained
		}
		...
	}

A Sender that is dropped without Close is closed when it is garbage
collected, and Produce closes the Sender on every exit path of a producer
function, so a consumer is never left waiting on a queue nobody can close.

Concurrency:

Exactly one goroutine may use the Sender and exactly one the Receiver; the
two may run concurrently. A waiting Receiver is woken by TrySend and Close,
not by polling.
*/
package channel
