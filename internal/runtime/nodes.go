package runtime

import (
	"context"
	"time"

	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/ports"
)

// Node is one named processing step. Run maps a state snapshot to a
// sparse patch; it never mutates the input. Failures of the delegated
// capability are folded into an error patch, never returned: a non-nil
// error from Run means a programming error and aborts the tick.
type Node interface {
	Name() string
	Run(ctx context.Context, state *domain.SessionState) (domain.Patch, error)
}

const welcomeMessage = "Hi! I'm here to help you develop your idea. What would you like to brainstorm today?"

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func stagePtr(s domain.Stage) *domain.Stage { return &s }
func actionPtr(a domain.UserAction) *domain.UserAction { return &a }

// errorPatch folds a capability failure into state so the conversation
// stays valid and inspectable instead of crashing the tick.
func errorPatch(err error) domain.Patch {
	return domain.Patch{
		IsProcessing: boolPtr(false),
		Error:        strPtr(err.Error()),
	}
}

func newMessage(role domain.Role, content string, stage domain.Stage) domain.Message {
	return domain.Message{
		Role:            role,
		Content:         content,
		CreatedAt:       time.Now().UTC(),
		StageAtCreation: stage,
	}
}

// processUserTurn answers the latest user message via the injected turn
// generator, or seeds the conversation with a welcome message when the
// history is empty.
type processUserTurn struct {
	caps ports.Capabilities
}

func (n *processUserTurn) Name() string { return NodeProcessUserTurn }

func (n *processUserTurn) Run(ctx context.Context, state *domain.SessionState) (domain.Patch, error) {
	if state.LastUserAction != domain.ActionChat || state.IsProcessing {
		return domain.Patch{}, nil
	}

	if len(state.Messages) == 0 {
		return domain.Patch{
			AppendMessages: []domain.Message{
				newMessage(domain.RoleAssistant, welcomeMessage, state.Stage),
			},
			IsProcessing: boolPtr(false),
		}, nil
	}

	// Nothing new to react to: the assistant already spoke last.
	if state.LastMessage().Role != domain.RoleUser {
		return domain.Patch{IsProcessing: boolPtr(false)}, nil
	}

	reply, err := n.caps.Turns.GenerateTurn(ctx, ports.TurnRequest{
		Stage:   state.Stage,
		Model:   state.SelectedModels[state.Stage],
		Prompt:  state.UserPrompts[state.Stage],
		History: state.Messages,
	})
	if err != nil {
		return errorPatch(err), nil
	}

	return domain.Patch{
		AppendMessages: []domain.Message{
			newMessage(domain.RoleAssistant, reply, state.Stage),
		},
		LastUserAction: actionPtr(domain.ActionChat),
		IsProcessing:   boolPtr(false),
		Error:          strPtr(""),
	}, nil
}

// processVoiceInput transcribes the pending voice recording and appends
// the transcript as a user message, marking the recording consumed so the
// router never re-enters it.
type processVoiceInput struct {
	caps ports.Capabilities
}

func (n *processVoiceInput) Name() string { return NodeProcessVoiceInput }

func (n *processVoiceInput) Run(ctx context.Context, state *domain.SessionState) (domain.Patch, error) {
	if state.LastUserAction != domain.ActionChat || state.IsProcessing || state.Error != "" {
		return domain.Patch{}, nil
	}
	if state.VoiceAudio == nil || state.VoiceAudio.Transcribed {
		return domain.Patch{}, nil
	}

	transcript, err := n.caps.Transcripts.Transcribe(ctx, *state.VoiceAudio)
	if err != nil {
		return errorPatch(err), nil
	}

	audio := *state.VoiceAudio
	audio.Transcribed = true

	return domain.Patch{
		AppendMessages: []domain.Message{
			newMessage(domain.RoleUser, transcript, state.Stage),
		},
		VoiceAudio:         &audio,
		VoiceTranscription: strPtr(transcript),
		LastUserAction:     actionPtr(domain.ActionChat),
		IsProcessing:       boolPtr(false),
	}, nil
}

// generateSummary condenses the brainstorm into a summary document and
// advances the session to the summary stage.
type generateSummary struct {
	caps ports.Capabilities
}

func (n *generateSummary) Name() string { return NodeGenerateSummary }

func (n *generateSummary) Run(ctx context.Context, state *domain.SessionState) (domain.Patch, error) {
	if state.LastUserAction != domain.ActionBrainstormDone || state.Stage != domain.StageBrainstorm {
		return domain.Patch{}, nil
	}
	if state.IsProcessing || state.Error != "" {
		return domain.Patch{}, nil
	}

	summary, err := n.caps.Summaries.Summarize(ctx, ports.SummaryRequest{
		Stage:   domain.StageSummary,
		Model:   state.SelectedModels[domain.StageSummary],
		Prompt:  state.UserPrompts[domain.StageSummary],
		History: state.Messages,
	})
	if err != nil {
		return errorPatch(err), nil
	}

	return domain.Patch{
		AppendMessages: []domain.Message{
			newMessage(domain.RoleAssistant, summary, domain.StageSummary),
		},
		Stage:        stagePtr(domain.StageSummary),
		IsProcessing: boolPtr(false),
		Error:        strPtr(""),
	}, nil
}

// generatePRD turns the summarized idea into a product requirements
// document and advances the session to the prd stage.
type generatePRD struct {
	caps ports.Capabilities
}

func (n *generatePRD) Name() string { return NodeGeneratePRD }

func (n *generatePRD) Run(ctx context.Context, state *domain.SessionState) (domain.Patch, error) {
	if state.LastUserAction != domain.ActionSummaryDone || state.Stage != domain.StageSummary {
		return domain.Patch{}, nil
	}
	if state.IsProcessing || state.Error != "" {
		return domain.Patch{}, nil
	}

	prd, err := n.caps.Summaries.Summarize(ctx, ports.SummaryRequest{
		Stage:   domain.StagePRD,
		Model:   state.SelectedModels[domain.StagePRD],
		Prompt:  state.UserPrompts[domain.StagePRD],
		History: state.Messages,
	})
	if err != nil {
		return errorPatch(err), nil
	}

	return domain.Patch{
		AppendMessages: []domain.Message{
			newMessage(domain.RoleAssistant, prd, domain.StagePRD),
		},
		Stage:        stagePtr(domain.StagePRD),
		IsProcessing: boolPtr(false),
		Error:        strPtr(""),
	}, nil
}

// BuiltinNodes wires the capability bundle into the four workflow nodes,
// keyed by their routing name.
func BuiltinNodes(caps ports.Capabilities) map[string]Node {
	nodes := []Node{
		&processUserTurn{caps: caps},
		&processVoiceInput{caps: caps},
		&generateSummary{caps: caps},
		&generatePRD{caps: caps},
	}
	byName := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name()] = n
	}
	return byName
}
