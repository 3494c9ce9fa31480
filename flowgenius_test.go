package flowgenius_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvanstory/flowgenius"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

func TestEngine_ColdStartThroughFacade(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "u1")
	require.NoError(t, err)
	require.Empty(t, state.Messages)

	next, err := engine.Execute(ctx, state)
	require.NoError(t, err)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, next.Messages[0].Role)
	assert.False(t, next.IsProcessing)

	// Input state was not touched.
	assert.Empty(t, state.Messages)
}

func TestEngine_FullStageProgression(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "")
	require.NoError(t, err)

	// Welcome tick.
	state, err = engine.Execute(ctx, state)
	require.NoError(t, err)

	say := func(content string, action domain.UserAction) {
		t.Helper()
		state.Messages = append(state.Messages, domain.Message{
			Role:    domain.RoleUser,
			Content: content,
		})
		state.LastUserAction = action
		state, err = engine.Execute(ctx, state)
		require.NoError(t, err)
	}

	say("an app that plans road trips", domain.ActionChat)
	assert.Equal(t, domain.StageBrainstorm, state.Stage)

	say("done brainstorming", domain.ActionBrainstormDone)
	assert.Equal(t, domain.StageSummary, state.Stage)
	assert.Contains(t, state.LastMessage().Content, "Idea Summary")

	say("looks good", domain.ActionSummaryDone)
	assert.Equal(t, domain.StagePRD, state.Stage)
	assert.Contains(t, state.LastMessage().Content, "Product Requirements")

	// Every message carries the stage it was authored in.
	last := state.LastMessage()
	assert.Equal(t, domain.StagePRD, last.StageAtCreation)
	assert.Empty(t, state.Error)
}

func TestEngine_StageDefaultsOverlay(t *testing.T) {
	engine, err := flowgenius.New(
		flowgenius.WithStageDefaults(
			map[domain.Stage]string{domain.StageBrainstorm: "custom prompt"},
			map[domain.Stage]string{domain.StageBrainstorm: "custom-model"},
		),
	)
	require.NoError(t, err)

	state, err := engine.CreateSession(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, "custom prompt", state.UserPrompts[domain.StageBrainstorm])
	assert.Equal(t, "custom-model", state.SelectedModels[domain.StageBrainstorm])
	// Stages without an override keep the built-in defaults.
	assert.NotEmpty(t, state.UserPrompts[domain.StageSummary])
}

func TestEngine_ClearSessionDropsTelemetry(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "")
	require.NoError(t, err)
	_, err = engine.Execute(ctx, state)
	require.NoError(t, err)
	require.NotNil(t, engine.Metrics("s1"))

	require.NoError(t, engine.ClearSession(ctx, "s1"))
	assert.Nil(t, engine.Metrics("s1"))
	_, err = engine.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_ValidateState(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)

	state := domain.NewSessionState("s1", "")
	assert.Empty(t, engine.ValidateState(state))

	state.Stage = "shipping"
	state.Messages = nil
	issues := engine.ValidateState(state)
	assert.Equal(t, []string{"Invalid current_stage", "Invalid messages"}, issues)
}

func TestEngine_LifecycleHooksAndMetricsCompose(t *testing.T) {
	var ticks []string
	hooks := domain.LifecycleHooks{
		OnTickEnd: func(_ context.Context, ev *domain.TickEvent) {
			ticks = append(ticks, ev.SessionID)
		},
	}

	engine, err := flowgenius.New(flowgenius.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "")
	require.NoError(t, err)
	_, err = engine.Execute(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, []string{"s1"}, ticks)
}

func TestEngine_VoiceTranscriptionThroughFacade(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "")
	require.NoError(t, err)
	state, err = engine.Execute(ctx, state)
	require.NoError(t, err)

	state.VoiceAudio = &domain.VoiceAudio{
		Path:     "/tmp/take1.webm",
		MimeType: "audio/webm",
	}
	next, err := engine.Execute(ctx, state)
	require.NoError(t, err)

	assert.True(t, next.VoiceAudio.Transcribed)
	assert.True(t, strings.Contains(next.VoiceTranscription, "take1.webm"))

	// A second tick must not re-transcribe the same recording.
	after, err := engine.Execute(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, next.VoiceTranscription, after.VoiceTranscription)
}
