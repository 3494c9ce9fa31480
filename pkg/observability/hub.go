package observability

import (
	"log/slog"
	"sync"
)

// Hub owns one Recorder per session. The executor fetches recorders from
// here; the transport boundary reads metrics out of it; clearing a session
// drops its recorder.
type Hub struct {
	mu        sync.RWMutex
	recorders map[string]*Recorder
	logger    *slog.Logger
	debug     bool
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithLogger sets the logger recorders mirror debug summaries to.
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithDebug enables debug-mode summary mirroring on all recorders.
func WithDebug(debug bool) HubOption {
	return func(h *Hub) {
		h.debug = debug
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		recorders: make(map[string]*Recorder),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Recorder returns the recorder for a session, creating it on first use.
func (h *Hub) Recorder(sessionID string) *Recorder {
	h.mu.RLock()
	rec, ok := h.recorders[sessionID]
	h.mu.RUnlock()
	if ok {
		return rec
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if rec, ok = h.recorders[sessionID]; ok {
		return rec
	}
	rec = NewRecorder(sessionID, h.logger, h.debug)
	h.recorders[sessionID] = rec
	return rec
}

// Metrics returns the execution summary for a session, or ok=false if the
// session has never ticked.
func (h *Hub) Metrics(sessionID string) (*Summary, bool) {
	h.mu.RLock()
	rec, ok := h.recorders[sessionID]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return rec.ExecutionSummary(), true
}

// Drop removes a session's recorder. No-op if absent.
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.recorders, sessionID)
}
