// Package static provides deterministic canned capability providers. They
// stand in for the real generation and transcription services in local
// runs and tests; production deployments inject their own implementations
// through ports.Capabilities.
package static

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/ports"
)

// Provider implements all three capability interfaces with canned output.
type Provider struct{}

// New creates a static provider.
func New() *Provider {
	return &Provider{}
}

// Capabilities returns a bundle wired entirely to this provider.
func (p *Provider) Capabilities() ports.Capabilities {
	return ports.Capabilities{
		Turns:       p,
		Summaries:   p,
		Transcripts: p,
	}
}

// GenerateTurn echoes the latest user message back with a stage-flavored
// follow-up question.
func (p *Provider) GenerateTurn(ctx context.Context, req ports.TurnRequest) (string, error) {
	var lastUser string
	for i := len(req.History) - 1; i >= 0; i-- {
		if req.History[i].Role == domain.RoleUser {
			lastUser = req.History[i].Content
			break
		}
	}
	return fmt.Sprintf("You said %q. Tell me more about how that would work during the %s stage.", lastUser, req.Stage), nil
}

// Summarize renders the user side of the history as a bullet list under a
// stage-appropriate heading.
func (p *Provider) Summarize(ctx context.Context, req ports.SummaryRequest) (string, error) {
	heading := "Idea Summary"
	if req.Stage == domain.StagePRD {
		heading = "Product Requirements"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", heading)
	for _, msg := range req.History {
		if msg.Role != domain.RoleUser {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", msg.Content)
	}
	return b.String(), nil
}

// Transcribe returns a placeholder transcript derived from the file name.
func (p *Provider) Transcribe(ctx context.Context, audio domain.VoiceAudio) (string, error) {
	return fmt.Sprintf("transcript of %s", filepath.Base(audio.Path)), nil
}
