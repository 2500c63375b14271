package workflow

// Action represents a review decision that can cause a state transition
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionReturn  Action = "RETURN"
)

var validActions = map[Action]bool{
	ActionApprove: true,
	ActionReject:  true,
	ActionReturn:  true,
}

// IsValid returns true if the action is a known review action
func (a Action) IsValid() bool {
	return validActions[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
