package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/davidvanstory/flowgenius/internal/logging"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/ports"
)

// lockEntry holds the per-session mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Registry owns the process-wide id -> session state bindings. All access
// goes through per-session locks (reference counted so unused entries are
// garbage collected), which serializes ticks for the same session while
// leaving different sessions fully independent. An optional distributed
// locker extends that guarantee across replicas.
type Registry struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger

	defaultPrompts map[domain.Stage]string
	defaultModels  map[domain.Stage]string
}

// Option configures the Registry.
type Option func(*Registry)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Registry) {
		r.locker = locker
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStageDefaults overrides the built-in per-stage prompts and models
// applied to newly created sessions. Either map may be nil.
func WithStageDefaults(prompts, models map[domain.Stage]string) Option {
	return func(r *Registry) {
		r.defaultPrompts = prompts
		r.defaultModels = models
	}
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(store ports.StateStore, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must Lock entry.mu and pair with release(sessionID).
func (r *Registry) acquire(sessionID string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		r.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (r *Registry) release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session. This is
// the read-modify-write primitive the transport boundary uses around an
// executor tick.
func (r *Registry) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := r.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(sessionID)
	}()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, sessionID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				r.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create builds a fresh initial state for the session and (re)binds it in
// the store, overwriting any previous state under the same id.
func (r *Registry) Create(ctx context.Context, sessionID, userID string) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := r.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state = domain.NewSessionState(sessionID, userID)
		for stage, prompt := range r.defaultPrompts {
			state.UserPrompts[stage] = prompt
		}
		for stage, model := range r.defaultModels {
			state.SelectedModels[stage] = model
		}
		if err := r.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return state, err
}

// Get retrieves an existing session. Returns domain.ErrSessionNotFound if
// the id is unbound.
func (r *Registry) Get(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := r.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = r.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists a session state under its id.
func (r *Registry) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	return r.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return r.store.Save(ctx, sessionID, state)
	})
}

// Clear removes the session binding. Clearing an absent session is not an
// error.
func (r *Registry) Clear(ctx context.Context, sessionID string) error {
	return r.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return r.store.Delete(ctx, sessionID)
	})
}

// List returns all known session ids.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Rename updates the session's display title.
func (r *Registry) Rename(ctx context.Context, sessionID, title string) (*domain.SessionState, error) {
	return r.update(ctx, sessionID, func(state *domain.SessionState) {
		state.Title = title
	})
}

// UpdatePrompts overwrites the per-stage instruction strings given in
// prompts, leaving other stages untouched.
func (r *Registry) UpdatePrompts(ctx context.Context, sessionID string, prompts map[domain.Stage]string) (*domain.SessionState, error) {
	return r.update(ctx, sessionID, func(state *domain.SessionState) {
		for stage, prompt := range prompts {
			state.UserPrompts[stage] = prompt
		}
	})
}

// UpdateModels overwrites the per-stage model identifiers given in models.
func (r *Registry) UpdateModels(ctx context.Context, sessionID string, models map[domain.Stage]string) (*domain.SessionState, error) {
	return r.update(ctx, sessionID, func(state *domain.SessionState) {
		for stage, model := range models {
			state.SelectedModels[stage] = model
		}
	})
}

func (r *Registry) update(ctx context.Context, sessionID string, mutate func(*domain.SessionState)) (*domain.SessionState, error) {
	var state *domain.SessionState
	err := r.WithLock(ctx, sessionID, func(ctx context.Context) error {
		loaded, err := r.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		mutate(loaded)
		loaded.UpdatedAt = time.Now().UTC()
		if err := r.store.Save(ctx, sessionID, loaded); err != nil {
			return err
		}
		state = loaded
		return nil
	})
	return state, err
}

// Store returns the underlying state store.
func (r *Registry) Store() ports.StateStore {
	return r.store
}
