package ports

import (
	"context"

	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// TurnRequest carries everything the turn generator needs to produce an
// assistant reply for the active stage.
type TurnRequest struct {
	Stage   domain.Stage
	Model   string
	Prompt  string
	History []domain.Message
}

// TurnGenerator produces the assistant reply to the latest user message.
type TurnGenerator interface {
	GenerateTurn(ctx context.Context, req TurnRequest) (string, error)
}

// SummaryRequest carries the full history plus the steering prompt for
// a stage-advancing generation (summary or PRD).
type SummaryRequest struct {
	Stage   domain.Stage
	Model   string
	Prompt  string
	History []domain.Message
}

// Summarizer condenses the conversation into a stage document.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Transcriber converts a recorded voice clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio domain.VoiceAudio) (string, error)
}

// Capabilities bundles the externally injected services the workflow
// nodes delegate to. The core defines only these shapes; concrete
// implementations live in adapters.
type Capabilities struct {
	Turns       TurnGenerator
	Summaries   Summarizer
	Transcripts Transcriber
}
