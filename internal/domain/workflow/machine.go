package workflow

import "fmt"

// transitions is the full legal-transition table for the claim lifecycle.
// Approve advances a claim one review stage; Reject and Return are available
// from either review stage. Terminal states have no entries.
var transitions = map[State]map[Action]State{
	StatePending: {
		ActionApprove: StatePendingManager,
		ActionReject:  StateRejected,
		ActionReturn:  StateReturned,
	},
	StatePendingManager: {
		ActionApprove: StateApproved,
		ActionReject:  StateRejected,
		ActionReturn:  StateReturned,
	},
}

// CanFire returns true if the action is permitted from the given state
func CanFire(from State, action Action) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[action]
	return ok
}

// Fire resolves the target state for an action fired from the given state.
// The state is not mutated anywhere; callers apply the returned state to the
// claim themselves.
func Fire(from State, action Action) (State, error) {
	if !from.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidState, from)
	}
	if !action.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	targets, ok := transitions[from]
	if !ok {
		return "", fmt.Errorf("%w: cannot fire %s from terminal or re-entry state %s", ErrInvalidTransition, action, from)
	}

	to, ok := targets[action]
	if !ok {
		return "", fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, action, from)
	}

	return to, nil
}

// PermittedActions returns all actions that can be fired from the given state
func PermittedActions(from State) []Action {
	targets, ok := transitions[from]
	if !ok {
		return []Action{}
	}

	actions := make([]Action, 0, len(targets))
	for _, a := range []Action{ActionApprove, ActionReject, ActionReturn} {
		if _, ok := targets[a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// StageForRole returns the claim status a reviewer role is authorized to act
// on. Lecturers never review their own claims, and HR has read-only access,
// so both report no stage.
func StageForRole(role string) (State, bool) {
	switch role {
	case "COORDINATOR":
		return StatePending, true
	case "MANAGER":
		return StatePendingManager, true
	default:
		return "", false
	}
}
