package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFire_LegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		action Action
		want   State
	}{
		{name: "coordinator approval advances to manager stage", from: StatePending, action: ActionApprove, want: StatePendingManager},
		{name: "coordinator rejection", from: StatePending, action: ActionReject, want: StateRejected},
		{name: "coordinator return", from: StatePending, action: ActionReturn, want: StateReturned},
		{name: "manager approval finalizes", from: StatePendingManager, action: ActionApprove, want: StateApproved},
		{name: "manager rejection", from: StatePendingManager, action: ActionReject, want: StateRejected},
		{name: "manager return", from: StatePendingManager, action: ActionReturn, want: StateReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fire(tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, CanFire(tt.from, tt.action))
		})
	}
}

func TestFire_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		action  Action
		wantErr error
	}{
		{name: "approved is terminal", from: StateApproved, action: ActionApprove, wantErr: ErrInvalidTransition},
		{name: "rejected is terminal", from: StateRejected, action: ActionReturn, wantErr: ErrInvalidTransition},
		{name: "returned claims re-enter via resubmission only", from: StateReturned, action: ActionApprove, wantErr: ErrInvalidTransition},
		{name: "unknown state", from: State("DRAFT"), action: ActionApprove, wantErr: ErrInvalidState},
		{name: "unknown action", from: StatePending, action: Action("ESCALATE"), wantErr: ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fire(tt.from, tt.action)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, CanFire(tt.from, tt.action))
		})
	}
}

func TestPermittedActions(t *testing.T) {
	assert.ElementsMatch(t, []Action{ActionApprove, ActionReject, ActionReturn}, PermittedActions(StatePending))
	assert.ElementsMatch(t, []Action{ActionApprove, ActionReject, ActionReturn}, PermittedActions(StatePendingManager))
	assert.Empty(t, PermittedActions(StateApproved))
	assert.Empty(t, PermittedActions(StateRejected))
	assert.Empty(t, PermittedActions(StateReturned))
}

func TestStageForRole(t *testing.T) {
	stage, ok := StageForRole("COORDINATOR")
	require.True(t, ok)
	assert.Equal(t, StatePending, stage)

	stage, ok = StageForRole("MANAGER")
	require.True(t, ok)
	assert.Equal(t, StatePendingManager, stage)

	for _, role := range []string{"LECTURER", "HR", "ADMIN", ""} {
		_, ok := StageForRole(role)
		assert.False(t, ok, "role %q must have no review stage", role)
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StateApproved.IsTerminal())
	assert.True(t, StateRejected.IsTerminal())
	assert.False(t, StateReturned.IsTerminal())
	assert.False(t, StatePending.IsTerminal())
	assert.False(t, StatePendingManager.IsTerminal())
}
