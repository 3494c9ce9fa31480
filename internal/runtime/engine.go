package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davidvanstory/flowgenius/internal/logging"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/observability"
	"github.com/davidvanstory/flowgenius/pkg/ports"
)

// Engine drives one tick of the workflow: validate, route, run the
// selected node, merge its patch, record telemetry. One Execute call
// performs at most one node invocation; multi-step advancement is the
// caller's loop, feeding each returned state into the next call.
type Engine struct {
	nodes  map[string]Node
	hub    *observability.Hub
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithHub sets the telemetry hub recorders are fetched from.
func WithHub(hub *observability.Hub) EngineOption {
	return func(e *Engine) {
		if hub != nil {
			e.hub = hub
		}
	}
}

// NewEngine creates an executor over the built-in nodes wired to the
// given capabilities.
func NewEngine(caps ports.Capabilities, opts ...EngineOption) *Engine {
	e := &Engine{
		nodes:  BuiltinNodes(caps),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hub == nil {
		e.hub = observability.NewHub(observability.WithLogger(e.logger))
	}
	return e
}

// Hub exposes the telemetry hub for the transport boundary's metrics op.
func (e *Engine) Hub() *observability.Hub {
	return e.hub
}

// Execute runs exactly one tick against the given state and returns the
// merged result. The input state is never mutated. Validation failures
// propagate as *domain.ValidationError without a workflow-end record;
// failures adjacent to node invocation surface as *domain.ExecutionError.
func (e *Engine) Execute(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error) {
	execID := uuid.NewString()
	start := time.Now()

	var rec *observability.Recorder
	if state != nil && state.SessionID != "" {
		rec = e.hub.Recorder(state.SessionID)
		rec.WorkflowStart(execID)
	}

	if err := Validate(state); err != nil {
		// No workflow-end for a rejected tick; the attempt never ran.
		if rec != nil {
			rec.WorkflowError(err)
		}
		return nil, err
	}

	tick := &domain.TickEvent{SessionID: state.SessionID, ExecutionID: execID}
	if e.hooks.OnTickStart != nil {
		e.hooks.OnTickStart(ctx, tick)
	}

	nodeName, condition := Route(state)
	rec.ConditionCheck(condition, nodeName != RouteDone, string(state.Stage))

	if nodeName == RouteDone {
		e.logger.Debug("tick done, no node to run",
			"session_id", state.SessionID,
			"condition", condition,
		)
		rec.WorkflowEnd(time.Since(start))
		e.finishTick(ctx, tick, start, "")
		return state, nil
	}

	rec.EdgeTransition("router -> "+nodeName, condition)

	node, ok := e.nodes[nodeName]
	if !ok {
		err := &domain.ExecutionError{Node: nodeName, Err: fmt.Errorf("no such node")}
		rec.WorkflowError(err)
		e.finishTick(ctx, tick, start, err.Error())
		return nil, err
	}

	rec.NodeEnter(nodeName)
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			SessionID:   state.SessionID,
			ExecutionID: execID,
			Node:        nodeName,
		})
	}

	nodeStart := time.Now()
	patch, err := node.Run(ctx, state)
	elapsed := time.Since(nodeStart)

	if err != nil {
		rec.NodeError(nodeName, err)
		if e.hooks.OnNodeError != nil {
			e.hooks.OnNodeError(ctx, &domain.NodeEvent{
				SessionID:   state.SessionID,
				ExecutionID: execID,
				Node:        nodeName,
				Duration:    elapsed,
				Err:         err.Error(),
			})
		}
		wrapped := &domain.ExecutionError{Node: nodeName, Err: err}
		e.finishTick(ctx, tick, start, wrapped.Error())
		return nil, wrapped
	}

	rec.NodeExit(nodeName, elapsed)
	if e.hooks.OnNodeExit != nil {
		e.hooks.OnNodeExit(ctx, &domain.NodeEvent{
			SessionID:   state.SessionID,
			ExecutionID: execID,
			Node:        nodeName,
			Duration:    elapsed,
		})
	}
	rec.StateUpdate(nodeName, patch.Fields())

	next := patch.Apply(state)

	e.logger.Debug("tick complete",
		"session_id", state.SessionID,
		"node", nodeName,
		"fields", patch.Fields(),
		"duration", elapsed,
	)

	rec.WorkflowEnd(time.Since(start))
	e.finishTick(ctx, tick, start, "")
	return next, nil
}

func (e *Engine) finishTick(ctx context.Context, tick *domain.TickEvent, start time.Time, errMsg string) {
	if e.hooks.OnTickEnd == nil {
		return
	}
	tick.Duration = time.Since(start)
	tick.Err = errMsg
	e.hooks.OnTickEnd(ctx, tick)
}
