package flowgenius

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidvanstory/flowgenius/internal/logging"
	"github.com/davidvanstory/flowgenius/internal/runtime"
	"github.com/davidvanstory/flowgenius/pkg/adapters/memory"
	"github.com/davidvanstory/flowgenius/pkg/adapters/static"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/observability"
	"github.com/davidvanstory/flowgenius/pkg/ports"
	"github.com/davidvanstory/flowgenius/pkg/session"
)

// Version is the library version, printed by the CLI.
var Version = "0.1.0"

// Engine is the high-level entry point for the FlowGenius workflow core.
// It wraps the internal executor, the session registry, and the telemetry
// hub behind a simplified API.
type Engine struct {
	runtime  *runtime.Engine
	registry *session.Registry
	hub      *observability.Hub

	store   ports.StateStore
	locker  ports.DistributedLocker
	caps    ports.Capabilities
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	debug   bool
	metrics prometheus.Registerer

	defaultPrompts map[domain.Stage]string
	defaultModels  map[domain.Stage]string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStore injects a custom state store, bypassing the default in-memory one.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithCapabilities injects the turn/summary/transcription providers.
func WithCapabilities(caps ports.Capabilities) Option {
	return func(e *Engine) {
		e.caps = caps
	}
}

// WithLifecycleHooks registers executor observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithDebug enables debug-mode telemetry mirroring.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithMetrics registers Prometheus collectors on reg and feeds them from
// executor lifecycle events.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.metrics = reg
	}
}

// WithStageDefaults overrides the built-in per-stage prompts and models
// for newly created sessions.
func WithStageDefaults(prompts, models map[domain.Stage]string) Option {
	return func(e *Engine) {
		e.defaultPrompts = prompts
		e.defaultModels = models
	}
}

// New initializes the workflow engine. Defaults: in-memory store, static
// capability providers, no-op logger.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.caps.Turns == nil && e.caps.Summaries == nil && e.caps.Transcripts == nil {
		e.caps = static.New().Capabilities()
	}

	e.hub = observability.NewHub(
		observability.WithLogger(e.logger),
		observability.WithDebug(e.debug),
	)

	hooks := e.hooks
	if e.metrics != nil {
		hooks = mergeHooks(hooks, observability.NewMetrics(e.metrics).Hooks())
	}

	e.runtime = runtime.NewEngine(e.caps,
		runtime.WithLogger(e.logger),
		runtime.WithHub(e.hub),
		runtime.WithLifecycleHooks(hooks),
	)

	regOpts := []session.Option{
		session.WithLogger(e.logger),
		session.WithStageDefaults(e.defaultPrompts, e.defaultModels),
	}
	if e.locker != nil {
		regOpts = append(regOpts, session.WithLocker(e.locker))
	}
	e.registry = session.NewRegistry(e.store, regOpts...)

	return e, nil
}

// Execute runs exactly one workflow tick and returns the merged state.
// The input state is never mutated; callers must feed the returned state
// into the next call.
func (e *Engine) Execute(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error) {
	return e.runtime.Execute(ctx, state)
}

// CreateSession creates a fresh session state and binds it in the registry.
func (e *Engine) CreateSession(ctx context.Context, sessionID, userID string) (*domain.SessionState, error) {
	return e.registry.Create(ctx, sessionID, userID)
}

// Session fetches a session state by id.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return e.registry.Get(ctx, sessionID)
}

// ClearSession removes a session and its telemetry.
func (e *Engine) ClearSession(ctx context.Context, sessionID string) error {
	if err := e.registry.Clear(ctx, sessionID); err != nil {
		return err
	}
	e.hub.Drop(sessionID)
	return nil
}

// ValidateState returns every structural issue in the state, empty when valid.
func (e *Engine) ValidateState(state *domain.SessionState) []string {
	return runtime.Issues(state)
}

// Metrics returns the execution summary for a session, or nil if it has
// never ticked.
func (e *Engine) Metrics(sessionID string) *observability.Summary {
	summary, ok := e.hub.Metrics(sessionID)
	if !ok {
		return nil
	}
	return summary
}

// Registry exposes the session registry for transport adapters.
func (e *Engine) Registry() *session.Registry {
	return e.registry
}

// Hub exposes the telemetry hub for transport adapters.
func (e *Engine) Hub() *observability.Hub {
	return e.hub
}

func mergeHooks(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTickStart: chainTick(a.OnTickStart, b.OnTickStart),
		OnTickEnd:   chainTick(a.OnTickEnd, b.OnTickEnd),
		OnNodeEnter: chainNode(a.OnNodeEnter, b.OnNodeEnter),
		OnNodeExit:  chainNode(a.OnNodeExit, b.OnNodeExit),
		OnNodeError: chainNode(a.OnNodeError, b.OnNodeError),
	}
}

func chainTick(fns ...func(context.Context, *domain.TickEvent)) func(context.Context, *domain.TickEvent) {
	return func(ctx context.Context, ev *domain.TickEvent) {
		for _, fn := range fns {
			if fn != nil {
				fn(ctx, ev)
			}
		}
	}
}

func chainNode(fns ...func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	return func(ctx context.Context, ev *domain.NodeEvent) {
		for _, fn := range fns {
			if fn != nil {
				fn(ctx, ev)
			}
		}
	}
}
