package runtime

import (
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// Node names as they appear in telemetry and metrics.
const (
	NodeProcessUserTurn   = "processUserTurn"
	NodeProcessVoiceInput = "processVoiceInput"
	NodeGenerateSummary   = "generateSummary"
	NodeGeneratePRD       = "generatePRD"
)

// RouteDone is returned when the workflow has nothing to run this tick.
const RouteDone = ""

// Route decides which node runs next. It is a pure function of the
// state's routing tuple (stage, last action, pending voice, error) and
// never inspects message content. First match wins:
//
//  1. error set            -> done (no auto-retry within the tick)
//  2. chat + pending voice -> processVoiceInput
//  3. chat                 -> processUserTurn
//  4. Brainstorm Done @ brainstorm -> generateSummary
//  5. Summary Done @ summary       -> generatePRD
//  6. otherwise            -> done
//
// The condition label is recorded by the executor for observability.
func Route(state *domain.SessionState) (node string, condition string) {
	if state.Error != "" {
		return RouteDone, "error set"
	}
	if state.LastUserAction == domain.ActionChat {
		if state.VoiceAudio != nil && !state.VoiceAudio.Transcribed {
			return NodeProcessVoiceInput, "pending voice input"
		}
		return NodeProcessUserTurn, "chat turn"
	}
	if state.LastUserAction == domain.ActionBrainstormDone && state.Stage == domain.StageBrainstorm {
		return NodeGenerateSummary, "brainstorm complete"
	}
	if state.LastUserAction == domain.ActionSummaryDone && state.Stage == domain.StageSummary {
		return NodeGeneratePRD, "summary complete"
	}
	return RouteDone, "no matching route"
}
