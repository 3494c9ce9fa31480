package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidvanstory/flowgenius"
	httpAdapter "github.com/davidvanstory/flowgenius/pkg/adapters/http"
	"github.com/davidvanstory/flowgenius/pkg/domain"
)

func TestClient_RoundTrip(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	srv := httptest.NewServer(httpAdapter.NewHandler(engine, nil))
	defer srv.Close()

	client := httpAdapter.NewClient(srv.URL)
	ctx := context.Background()

	state, err := client.CreateSession(ctx, "s1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", state.SessionID)

	next, err := client.Execute(ctx, state)
	require.NoError(t, err)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, next.Messages[0].Role)

	result, err := client.ValidateState(ctx, next)
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	summary, err := client.Metrics(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "s1", summary.SessionID)

	require.NoError(t, client.ClearSession(ctx, "s1"))
	summary, err = client.Metrics(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

// Every server failure burns one attempt; the final error names the budget.
func TestClient_ExecuteRetriesUntilExhausted(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"store unavailable"}`))
	}))
	defer srv.Close()

	client := httpAdapter.NewClient(srv.URL,
		httpAdapter.WithRetry(3, time.Millisecond),
	)

	state := domain.NewSessionState("s1", "")
	_, err := client.Execute(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow execution failed after 3 attempts")
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Equal(t, int64(3), calls.Load())
}

func TestClient_ExecuteRecoversMidBudget(t *testing.T) {
	engine, err := flowgenius.New()
	require.NoError(t, err)
	handler := httpAdapter.NewHandler(engine, nil)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"error":"warming up"}`))
			return
		}
		handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := httpAdapter.NewClient(srv.URL,
		httpAdapter.WithRetry(3, time.Millisecond),
	)
	ctx := context.Background()

	state, err := engine.CreateSession(ctx, "s1", "")
	require.NoError(t, err)

	next, err := client.Execute(ctx, state)
	require.NoError(t, err)
	assert.Len(t, next.Messages, 1)
	assert.Equal(t, int64(2), calls.Load())
}

func TestClient_ExecuteRespectsContextBetweenAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"down"}`))
	}))
	defer srv.Close()

	client := httpAdapter.NewClient(srv.URL,
		httpAdapter.WithRetry(5, time.Minute),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, domain.NewSessionState("s1", ""))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
