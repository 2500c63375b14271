package workflow

// State represents a claim status in the approval lifecycle
type State string

const (
	StatePending        State = "PENDING"
	StatePendingManager State = "PENDING_MANAGER"
	StateApproved       State = "APPROVED"
	StateRejected       State = "REJECTED"
	StateReturned       State = "RETURNED"
)

var validStates = map[State]bool{
	StatePending:        true,
	StatePendingManager: true,
	StateApproved:       true,
	StateRejected:       true,
	StateReturned:       true,
}

// Terminal states admit no further transition by this engine. Returned is not
// terminal, but re-entry to Pending happens through the resubmission flow,
// not through a review action.
var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid claim status
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
