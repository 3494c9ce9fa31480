package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvanstory/flowgenius/pkg/adapters/memory"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/session"
)

// SlowStore simulates IO latency to provoke races if locking is missing.
type SlowStore struct {
	data map[string]*domain.SessionState
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]*domain.SessionState)
	}
	s.data[sessionID] = state
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.data[sessionID]; ok {
		return state, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestRegistry_CreateInitialState(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	state, err := reg.Create(ctx, "s1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "s1", state.SessionID)
	assert.Equal(t, "u1", state.UserID)
	assert.Equal(t, domain.StageBrainstorm, state.Stage)
	assert.Equal(t, domain.ActionChat, state.LastUserAction)
	assert.Empty(t, state.Messages)
	assert.False(t, state.IsProcessing)
	assert.Empty(t, state.Error)
	assert.NotEmpty(t, state.UserPrompts[domain.StageBrainstorm])
	assert.NotEmpty(t, state.SelectedModels[domain.StagePRD])
}

// Create on an existing id always rebinds fresh initial state.
func TestRegistry_CreateOverwrites(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	state, err := reg.Create(ctx, "s1", "")
	require.NoError(t, err)
	state.Messages = append(state.Messages, domain.Message{Role: domain.RoleUser, Content: "hi"})
	require.NoError(t, reg.Save(ctx, "s1", state))

	fresh, err := reg.Create(ctx, "s1", "")
	require.NoError(t, err)
	assert.Empty(t, fresh.Messages)

	loaded, err := reg.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Messages)
}

func TestRegistry_GetUnknownSession(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())

	_, err := reg.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistry_ClearIsIdempotent(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	_, err := reg.Create(ctx, "s1", "")
	require.NoError(t, err)

	require.NoError(t, reg.Clear(ctx, "s1"))
	require.NoError(t, reg.Clear(ctx, "s1"), "clearing an absent session is not an error")

	_, err = reg.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistry_StageDefaultsOverride(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore(),
		session.WithStageDefaults(
			map[domain.Stage]string{domain.StageSummary: "custom summary prompt"},
			map[domain.Stage]string{domain.StageBrainstorm: "local-model"},
		),
	)

	state, err := reg.Create(context.Background(), "s1", "")
	require.NoError(t, err)

	assert.Equal(t, "custom summary prompt", state.UserPrompts[domain.StageSummary])
	assert.Equal(t, "local-model", state.SelectedModels[domain.StageBrainstorm])
	// Untouched stages keep the built-in defaults.
	assert.NotEmpty(t, state.UserPrompts[domain.StageBrainstorm])
}

func TestRegistry_Rename(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	_, err := reg.Create(ctx, "s1", "")
	require.NoError(t, err)

	state, err := reg.Rename(ctx, "s1", "My Big Idea")
	require.NoError(t, err)
	assert.Equal(t, "My Big Idea", state.Title)

	loaded, err := reg.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "My Big Idea", loaded.Title)
}

func TestRegistry_UpdatePromptsAndModels(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	_, err := reg.Create(ctx, "s1", "")
	require.NoError(t, err)

	state, err := reg.UpdatePrompts(ctx, "s1", map[domain.Stage]string{
		domain.StagePRD: "write a terse PRD",
	})
	require.NoError(t, err)
	assert.Equal(t, "write a terse PRD", state.UserPrompts[domain.StagePRD])

	state, err = reg.UpdateModels(ctx, "s1", map[domain.Stage]string{
		domain.StageSummary: "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", state.SelectedModels[domain.StageSummary])
}

func TestRegistry_SerializesAccessPerSession(t *testing.T) {
	store := &SlowStore{}
	reg := session.NewRegistry(store)
	ctx := context.Background()

	_, err := reg.Create(ctx, "race-test", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.WithLock(ctx, "race-test", func(ctx context.Context) error {
				state, err := store.Load(ctx, "race-test")
				if err != nil {
					return err
				}
				state.Messages = append(state.Messages, domain.Message{Role: domain.RoleUser, Content: "x"})
				return store.Save(ctx, "race-test", state)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := store.Load(ctx, "race-test")
	require.NoError(t, err)
	assert.Len(t, state.Messages, 10, "read-modify-write cycles must not lose updates")
}
