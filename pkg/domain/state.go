package domain

import "time"

// Stage identifies the macro phase of the idea-development workflow.
type Stage string

const (
	StageBrainstorm Stage = "brainstorm"
	StageSummary    Stage = "summary"
	StagePRD        Stage = "prd"
)

// Stages lists the phases in their intended order of progression.
var Stages = []Stage{StageBrainstorm, StageSummary, StagePRD}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageBrainstorm, StageSummary, StagePRD:
		return true
	}
	return false
}

// UserAction is the trigger that determines routing on the next tick.
// The "Done" values carry the exact labels the UI buttons emit.
type UserAction string

const (
	ActionChat           UserAction = "chat"
	ActionBrainstormDone UserAction = "Brainstorm Done"
	ActionSummaryDone    UserAction = "Summary Done"
	ActionPRDDone        UserAction = "PRD Done"
)

// Valid reports whether a is one of the known user actions.
func (a UserAction) Valid() bool {
	switch a {
	case ActionChat, ActionBrainstormDone, ActionSummaryDone, ActionPRDDone:
		return true
	}
	return false
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation entry. StageAtCreation records which
// stage was active when the message was appended, so stage-aware views
// (and the summarizer) can slice the history later.
type Message struct {
	Role            Role      `json:"role"`
	Content         string    `json:"content"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	StageAtCreation Stage     `json:"stage_at_creation"`
}

// VoiceAudio describes a pending voice recording submitted by the UI.
// Transcribed flips to true once the transcription node has consumed it,
// so the router never has to infer "already handled" from field presence.
type VoiceAudio struct {
	Path        string    `json:"path"`
	DurationSec float64   `json:"duration"`
	MimeType    string    `json:"mime_type"`
	SizeBytes   int64     `json:"size"`
	RecordedAt  time.Time `json:"recorded_at"`
	Transcribed bool      `json:"transcribed"`
}

// SessionState is the canonical, serializable record of one conversation.
// It is mutated exclusively by the executor's patch merge; everything else
// holds it as a snapshot.
type SessionState struct {
	SessionID      string     `json:"session_id"`
	UserID         string     `json:"user_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	Stage          Stage      `json:"stage"`
	LastUserAction UserAction `json:"last_user_action"`
	Messages       []Message  `json:"messages"`

	// Per-stage steering. Mutable via explicit registry operations,
	// independent of the current stage.
	UserPrompts    map[Stage]string `json:"user_prompts"`
	SelectedModels map[Stage]string `json:"selected_models"`

	VoiceAudio         *VoiceAudio `json:"voice_audio_data,omitempty"`
	VoiceTranscription string      `json:"voice_transcription,omitempty"`

	IsProcessing bool   `json:"is_processing"`
	Error        string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultUserPrompts returns the built-in per-stage instruction strings.
func DefaultUserPrompts() map[Stage]string {
	return map[Stage]string{
		StageBrainstorm: "You are a thoughtful brainstorming partner. Ask probing questions and help the user develop their idea.",
		StageSummary:    "Summarize the brainstorm below into a concise idea summary with the problem, the solution, and open questions.",
		StagePRD:        "Turn the idea summary into a product requirements document with goals, user stories, and scope.",
	}
}

// DefaultSelectedModels returns the built-in per-stage model identifiers.
func DefaultSelectedModels() map[Stage]string {
	return map[Stage]string{
		StageBrainstorm: "gpt-4o",
		StageSummary:    "gpt-4o",
		StagePRD:        "gpt-4o",
	}
}

// NewSessionState creates the initial state for a session: brainstorm stage,
// chat action, empty history, default prompts and models.
func NewSessionState(sessionID, userID string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		SessionID:      sessionID,
		UserID:         userID,
		Stage:          StageBrainstorm,
		LastUserAction: ActionChat,
		Messages:       []Message{},
		UserPrompts:    DefaultUserPrompts(),
		SelectedModels: DefaultSelectedModels(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// LastMessage returns the most recent message, or nil if the history is empty.
func (s *SessionState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// Clone returns a deep copy so callers can never mutate shared state by
// pointer. Message values are copied; maps and the voice descriptor are
// duplicated.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s

	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)

	out.UserPrompts = make(map[Stage]string, len(s.UserPrompts))
	for k, v := range s.UserPrompts {
		out.UserPrompts[k] = v
	}
	out.SelectedModels = make(map[Stage]string, len(s.SelectedModels))
	for k, v := range s.SelectedModels {
		out.SelectedModels[k] = v
	}

	if s.VoiceAudio != nil {
		audio := *s.VoiceAudio
		out.VoiceAudio = &audio
	}
	return &out
}
