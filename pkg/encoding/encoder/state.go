package encoder

// State is the lifecycle state of an Encoder.
type State int32

const (
	// StateOpen accepts frames.
	StateOpen State = iota
	// StateClosed no longer accepts frames; queued frames are still being encoded.
	StateClosed
	// StateFinished means the artifact was published. Terminal.
	StateFinished
	// StateFailed means the pipeline failed. Terminal.
	StateFailed
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}
