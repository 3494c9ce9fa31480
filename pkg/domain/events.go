package domain

import (
	"context"
	"time"
)

// TickEvent describes one executor tick for observability hooks.
type TickEvent struct {
	SessionID   string        `json:"session_id"`
	ExecutionID string        `json:"execution_id"`
	Duration    time.Duration `json:"duration"`
	Err         string        `json:"err,omitempty"`
}

// NodeEvent describes entry into or exit from a workflow node.
type NodeEvent struct {
	SessionID   string        `json:"session_id"`
	ExecutionID string        `json:"execution_id"`
	Node        string        `json:"node"`
	Duration    time.Duration `json:"duration,omitempty"`
	Err         string        `json:"err,omitempty"`
}

// LifecycleHooks defines callbacks for executor observability. All fields
// are optional; nil hooks are skipped. Hooks must not block: they run
// inline on the tick path.
type LifecycleHooks struct {
	OnTickStart func(context.Context, *TickEvent)
	OnTickEnd   func(context.Context, *TickEvent)
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeExit  func(context.Context, *NodeEvent)
	OnNodeError func(context.Context, *NodeEvent)
}
