// Package redis provides Redis-backed implementations of the state store
// and the distributed session locker, for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/davidvanstory/flowgenius/pkg/domain"
)

// Store implements ports.StateStore using Redis. States are stored as
// JSON under prefix+sessionID.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store connecting to the given address.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "flowgenius:session:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save persists the state as JSON.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize session state: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error saving session: %w", err)
	}
	return nil
}

// Load retrieves and decodes the state.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	data, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err == backend.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading session: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to deserialize session state: %w", err)
	}
	return &state, nil
}

// Delete removes the state. Absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis error deleting session: %w", err)
	}
	return nil
}

// List scans for all session keys under the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var (
		sessions []string
		cursor   uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error listing sessions: %w", err)
		}
		for _, key := range keys {
			sessions = append(sessions, strings.TrimPrefix(key, s.prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return sessions, nil
}
