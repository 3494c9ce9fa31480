package runtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/davidvanstory/flowgenius/internal/runtime"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

func TestRoute_DecisionTable(t *testing.T) {
	pendingVoice := &domain.VoiceAudio{Path: "/tmp/clip.webm", RecordedAt: time.Now()}
	consumedVoice := &domain.VoiceAudio{Path: "/tmp/clip.webm", Transcribed: true}

	tests := []struct {
		name   string
		mutate func(*domain.SessionState)
		want   string
	}{
		{
			name:   "error short-circuits everything",
			mutate: func(s *domain.SessionState) { s.Error = "boom"; s.VoiceAudio = pendingVoice },
			want:   runtime.RouteDone,
		},
		{
			name:   "pending voice beats chat",
			mutate: func(s *domain.SessionState) { s.VoiceAudio = pendingVoice },
			want:   runtime.NodeProcessVoiceInput,
		},
		{
			name:   "consumed voice falls through to chat",
			mutate: func(s *domain.SessionState) { s.VoiceAudio = consumedVoice },
			want:   runtime.NodeProcessUserTurn,
		},
		{
			name:   "plain chat",
			mutate: func(s *domain.SessionState) {},
			want:   runtime.NodeProcessUserTurn,
		},
		{
			name: "brainstorm done at brainstorm",
			mutate: func(s *domain.SessionState) {
				s.LastUserAction = domain.ActionBrainstormDone
			},
			want: runtime.NodeGenerateSummary,
		},
		{
			name: "brainstorm done at summary stage is done",
			mutate: func(s *domain.SessionState) {
				s.LastUserAction = domain.ActionBrainstormDone
				s.Stage = domain.StageSummary
			},
			want: runtime.RouteDone,
		},
		{
			name: "summary done at summary",
			mutate: func(s *domain.SessionState) {
				s.LastUserAction = domain.ActionSummaryDone
				s.Stage = domain.StageSummary
			},
			want: runtime.NodeGeneratePRD,
		},
		{
			name: "prd done has nowhere to go",
			mutate: func(s *domain.SessionState) {
				s.LastUserAction = domain.ActionPRDDone
				s.Stage = domain.StagePRD
			},
			want: runtime.RouteDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := domain.NewSessionState("s1", "")
			tt.mutate(state)

			node, _ := runtime.Route(state)
			assert.Equal(t, tt.want, node)
		})
	}
}

// Routing must be a pure function of the routing tuple, insensitive to
// message content.
func TestRoute_IgnoresMessageContent(t *testing.T) {
	base := domain.NewSessionState("s1", "")
	node1, cond1 := runtime.Route(base)

	withHistory := domain.NewSessionState("s1", "")
	withHistory.Messages = []domain.Message{
		{Role: domain.RoleUser, Content: "I have an idea", StageAtCreation: domain.StageBrainstorm},
		{Role: domain.RoleAssistant, Content: "Tell me more", StageAtCreation: domain.StageBrainstorm},
	}
	node2, cond2 := runtime.Route(withHistory)

	assert.Equal(t, node1, node2)
	assert.Equal(t, cond1, cond2)
}

func TestRoute_Deterministic(t *testing.T) {
	state := domain.NewSessionState("s1", "")
	state.LastUserAction = domain.ActionBrainstormDone

	first, _ := runtime.Route(state)
	for i := 0; i < 100; i++ {
		node, _ := runtime.Route(state)
		assert.Equal(t, first, node)
	}
}
