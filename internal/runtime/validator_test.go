package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvanstory/flowgenius/internal/runtime"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

func TestValidate_ChecksInOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.SessionState)
		reason string
	}{
		{
			name:   "empty session id",
			mutate: func(s *domain.SessionState) { s.SessionID = "" },
			reason: "Invalid idea_id",
		},
		{
			name:   "unknown stage",
			mutate: func(s *domain.SessionState) { s.Stage = "planning" },
			reason: "Invalid current_stage",
		},
		{
			name:   "unknown action",
			mutate: func(s *domain.SessionState) { s.LastUserAction = "Ship It" },
			reason: "Invalid last_user_action",
		},
		{
			name:   "nil messages",
			mutate: func(s *domain.SessionState) { s.Messages = nil },
			reason: "Invalid messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := domain.NewSessionState("s1", "")
			tt.mutate(state)

			err := runtime.Validate(state)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestValidate_ShortCircuitsOnFirstFailure(t *testing.T) {
	state := domain.NewSessionState("", "")
	state.Stage = "bogus"

	err := runtime.Validate(state)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid idea_id")
}

func TestValidate_AcceptsFreshState(t *testing.T) {
	assert.NoError(t, runtime.Validate(domain.NewSessionState("s1", "u1")))
}

func TestValidate_NilState(t *testing.T) {
	err := runtime.Validate(nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid idea_id")
}

func TestIssues_CollectsAllFailures(t *testing.T) {
	state := domain.NewSessionState("s1", "")
	state.Stage = "bogus"
	state.LastUserAction = "bogus"
	state.Messages = nil

	issues := runtime.Issues(state)
	assert.Equal(t, []string{"Invalid current_stage", "Invalid last_user_action", "Invalid messages"}, issues)
}

func TestIssues_EmptyForValidState(t *testing.T) {
	assert.Empty(t, runtime.Issues(domain.NewSessionState("s1", "")))
}
