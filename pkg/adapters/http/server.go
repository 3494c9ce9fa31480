// Package http exposes the workflow core over a JSON request/response
// boundary: five operations (execute, create session, validate, metrics,
// clear session) plus session inspection helpers, and a caller-side
// client with bounded retry on the execute path.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidvanstory/flowgenius/internal/logging"
	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/davidvanstory/flowgenius/pkg/observability"
	"github.com/davidvanstory/flowgenius/pkg/session"
)

// Engine is the workflow facade the server drives.
type Engine interface {
	Execute(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error)
	ValidateState(state *domain.SessionState) []string
	Registry() *session.Registry
	Hub() *observability.Hub
}

// Result is the envelope every operation returns. Duration is in
// milliseconds, measured server-side.
type Result struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration int64  `json:"duration,omitempty"`
}

// ValidationResult is the payload of the validate operation.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Issues  []string `json:"issues"`
}

// Server handles the transport boundary requests.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler builds the HTTP handler for the boundary.
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/workflow/execute", s.handleExecute)
		r.Post("/workflow/validate", s.handleValidate)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Patch("/sessions/{sessionID}", s.handleRenameSession)
		r.Delete("/sessions/{sessionID}", s.handleClearSession)
		r.Get("/sessions/{sessionID}/metrics", s.handleMetrics)
	})
	return r
}

func (s *Server) writeResult(w http.ResponseWriter, status int, started time.Time, data any, err error) {
	res := Result{
		Success:  err == nil,
		Data:     data,
		Duration: time.Since(started).Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(res); encErr != nil {
		s.logger.Error("response encode failed", "err", encErr)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, started time.Time, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "err", err, "path", r.URL.Path)
		s.writeResult(w, http.StatusBadRequest, started, nil, errors.New("invalid request body"))
		return false
	}
	return true
}

// handleExecute runs exactly one executor tick for the posted state, under
// the session's lock, and persists the merged result.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var state domain.SessionState
	if !s.decode(w, r, started, &state) {
		return
	}

	reg := s.engine.Registry()
	var next *domain.SessionState
	err := reg.WithLock(r.Context(), state.SessionID, func(ctx context.Context) error {
		var execErr error
		next, execErr = s.engine.Execute(ctx, &state)
		if execErr != nil {
			return execErr
		}
		return reg.Store().Save(ctx, state.SessionID, next)
	})

	if err != nil {
		var verr *domain.ValidationError
		status := http.StatusInternalServerError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		s.logger.Error("execute failed", "session_id", state.SessionID, "err", err)
		s.writeResult(w, status, started, nil, err)
		return
	}
	s.writeResult(w, http.StatusOK, started, next, nil)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var state domain.SessionState
	if !s.decode(w, r, started, &state) {
		return
	}

	issues := s.engine.ValidateState(&state)
	s.writeResult(w, http.StatusOK, started, ValidationResult{
		IsValid: len(issues) == 0,
		Issues:  issues,
	}, nil)
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req createSessionRequest
	if !s.decode(w, r, started, &req) {
		return
	}
	if req.SessionID == "" {
		s.writeResult(w, http.StatusBadRequest, started, nil, errors.New("session_id is required"))
		return
	}

	state, err := s.engine.Registry().Create(r.Context(), req.SessionID, req.UserID)
	if err != nil {
		s.logger.Error("create session failed", "session_id", req.SessionID, "err", err)
		s.writeResult(w, http.StatusInternalServerError, started, nil, err)
		return
	}
	s.writeResult(w, http.StatusCreated, started, state, nil)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	ids, err := s.engine.Registry().List(r.Context())
	if err != nil {
		s.writeResult(w, http.StatusInternalServerError, started, nil, err)
		return
	}
	s.writeResult(w, http.StatusOK, started, ids, nil)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.engine.Registry().Get(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		s.writeResult(w, status, started, nil, err)
		return
	}
	s.writeResult(w, http.StatusOK, started, state, nil)
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	var req renameSessionRequest
	if !s.decode(w, r, started, &req) {
		return
	}

	state, err := s.engine.Registry().Rename(r.Context(), sessionID, req.Title)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		s.writeResult(w, status, started, nil, err)
		return
	}
	s.writeResult(w, http.StatusOK, started, state, nil)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.engine.Registry().Clear(r.Context(), sessionID); err != nil {
		s.writeResult(w, http.StatusInternalServerError, started, nil, err)
		return
	}
	s.engine.Hub().Drop(sessionID)
	s.writeResult(w, http.StatusOK, started, nil, nil)
}

// handleMetrics returns the workflow execution summary, or null data for a
// session that has never ticked.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	summary, ok := s.engine.Hub().Metrics(sessionID)
	if !ok {
		s.writeResult(w, http.StatusOK, started, nil, nil)
		return
	}
	s.writeResult(w, http.StatusOK, started, summary, nil)
}
