package runtime

import (
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// Validate checks the structural invariants of a session state, in order,
// short-circuiting on the first failure. The reason strings are part of
// the contract: the UI matches on them.
//
// "idea_id" survives from the original schema where sessions were called
// ideas; the wire field is session_id.
func Validate(state *domain.SessionState) error {
	if state == nil || state.SessionID == "" {
		return &domain.ValidationError{Reason: "Invalid idea_id"}
	}
	if !state.Stage.Valid() {
		return &domain.ValidationError{Reason: "Invalid current_stage"}
	}
	if !state.LastUserAction.Valid() {
		return &domain.ValidationError{Reason: "Invalid last_user_action"}
	}
	if state.Messages == nil {
		return &domain.ValidationError{Reason: "Invalid messages"}
	}
	return nil
}

// Issues runs all validation checks without short-circuiting and returns
// every failure reason. Used by the transport boundary for client-side
// pre-flight checks.
func Issues(state *domain.SessionState) []string {
	issues := []string{}
	if state == nil {
		return append(issues, "Invalid idea_id")
	}
	if state.SessionID == "" {
		issues = append(issues, "Invalid idea_id")
	}
	if !state.Stage.Valid() {
		issues = append(issues, "Invalid current_stage")
	}
	if !state.LastUserAction.Valid() {
		issues = append(issues, "Invalid last_user_action")
	}
	if state.Messages == nil {
		issues = append(issues, "Invalid messages")
	}
	return issues
}
