package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError marks a structural invariant violation on a SessionState.
// It always surfaces to the caller; the executor never swallows it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExecutionError wraps a failure adjacent to node invocation that escaped
// the node's own error-patch convention (an unknown route target, a node
// returning a hard error).
type ExecutionError struct {
	Node string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("workflow execution failed at node %q: %v", e.Node, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
