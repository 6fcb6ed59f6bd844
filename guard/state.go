package guard

// State represents the breaker state.
type State int

const (
	// Closed allows calls to pass through normally.
	Closed State = iota
	// Open fails calls fast after the configured wait.
	Open
	// HalfOpen lets calls through to probe whether the dependency healed.
	HalfOpen
	// Isolated fails every call fast until explicitly reset.
	Isolated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	case Isolated:
		return "isolated"
	default:
		return "unknown"
	}
}
