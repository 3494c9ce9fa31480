package ports

import (
	"context"

	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// StateStore defines the interface for persisting session state.
// Implementations must be safe for concurrent use across sessions.
type StateStore interface {
	// Save persists the state for a given session ID, overwriting any
	// previous binding.
	Save(ctx context.Context, sessionID string, state *domain.SessionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Delete removes the state for a given session ID. Deleting an
	// absent session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all known sessions.
	List(ctx context.Context) ([]string, error)
}
