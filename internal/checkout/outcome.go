package checkout

// Outcome is the state the coordinator tracks for one confirmation run.
// Checking is the only non-terminal state; it is never persisted and is
// rebuilt from the session id in the return URL on every page load.
type Outcome int

const (
	OutcomeChecking Outcome = iota
	OutcomePaid
	OutcomeExpired
	OutcomeFailed
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChecking:
		return "checking"
	case OutcomePaid:
		return "paid"
	case OutcomeExpired:
		return "expired"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition occurs for this attempt.
func (o Outcome) Terminal() bool { return o != OutcomeChecking }
