package observability

import (
	"log/slog"
	"sync"
	"time"
)

// EventType categorizes recorder events.
type EventType string

const (
	EventWorkflowStart  EventType = "WORKFLOW_START"
	EventWorkflowEnd    EventType = "WORKFLOW_END"
	EventNodeEnter      EventType = "NODE_ENTER"
	EventNodeExit       EventType = "NODE_EXIT"
	EventNodeError      EventType = "NODE_ERROR"
	EventEdgeTransition EventType = "EDGE_TRANSITION"
	EventStateUpdate    EventType = "STATE_UPDATE"
	EventConditionCheck EventType = "CONDITION_CHECK"
	EventWorkflowError  EventType = "WORKFLOW_ERROR"
)

// Event is one append-only telemetry entry. Which optional fields are set
// depends on the event type.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Node      string        `json:"node,omitempty"`
	Edge      string        `json:"edge,omitempty"`
	Condition string        `json:"condition,omitempty"`
	Result    *bool         `json:"result,omitempty"`
	Fields    []string      `json:"fields,omitempty"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// NodeStats aggregates per-node execution counts and average duration.
type NodeStats struct {
	Count       int           `json:"count"`
	AvgDuration time.Duration `json:"avg_duration"`

	total time.Duration
}

// Summary is the derived execution overview exposed as workflow metrics.
type Summary struct {
	SessionID    string                `json:"session_id"`
	ExecutionID  string                `json:"execution_id"`
	TotalEvents  int                   `json:"total_events"`
	ErrorCount   int                   `json:"error_count"`
	Nodes        map[string]*NodeStats `json:"nodes"`
	StateUpdates int                   `json:"state_updates"`
	Duration     time.Duration         `json:"duration"`
}

// TimelineEntry is one node execution window in chronological order.
type TimelineEntry struct {
	Node      string        `json:"node"`
	EnteredAt time.Time     `json:"entered_at"`
	ExitedAt  time.Time     `json:"exited_at,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Export is a serializable snapshot of a recorder: context, raw events,
// derived summary, and node timeline.
type Export struct {
	SessionID   string          `json:"session_id"`
	ExecutionID string          `json:"execution_id"`
	Events      []Event         `json:"events"`
	Summary     *Summary        `json:"summary"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// Recorder is the append-only event log for one session's workflow
// executions. It has no control-flow authority: it only observes what the
// executor and router push to it. Safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	sessionID   string
	executionID string
	events      []Event
	logger      *slog.Logger
	debug       bool
}

// NewRecorder creates a recorder scoped to a session.
func NewRecorder(sessionID string, logger *slog.Logger, debug bool) *Recorder {
	return &Recorder{
		sessionID: sessionID,
		logger:    logger,
		debug:     debug,
	}
}

func (r *Recorder) append(ev Event) {
	ev.Timestamp = time.Now().UTC()
	r.events = append(r.events, ev)
}

// WorkflowStart marks the beginning of a tick under the given execution ID.
func (r *Recorder) WorkflowStart(executionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executionID = executionID
	r.append(Event{Type: EventWorkflowStart, Message: executionID})
}

// WorkflowEnd marks a completed tick with its total duration. In debug
// mode it mirrors a human-readable summary to the logger.
func (r *Recorder) WorkflowEnd(total time.Duration) {
	r.mu.Lock()
	r.append(Event{Type: EventWorkflowEnd, Duration: total})
	debug := r.debug
	r.mu.Unlock()

	if debug {
		s := r.ExecutionSummary()
		r.logger.Debug("workflow summary",
			"session_id", s.SessionID,
			"execution_id", s.ExecutionID,
			"events", s.TotalEvents,
			"errors", s.ErrorCount,
			"state_updates", s.StateUpdates,
			"duration", s.Duration,
		)
	}
}

// NodeEnter records entry into a node.
func (r *Recorder) NodeEnter(node string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventNodeEnter, Node: node})
}

// NodeExit records exit from a node together with its execution duration.
func (r *Recorder) NodeExit(node string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventNodeExit, Node: node, Duration: d})
}

// NodeError records a hard node failure.
func (r *Recorder) NodeError(node string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventNodeError, Node: node, Message: err.Error()})
}

// EdgeTransition records a routing decision as "from -> to", with an
// optional condition label.
func (r *Recorder) EdgeTransition(edge, condition string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventEdgeTransition, Edge: edge, Condition: condition})
}

// StateUpdate records a merged patch: its source node and the touched fields.
func (r *Recorder) StateUpdate(node string, fields []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventStateUpdate, Node: node, Fields: fields})
}

// ConditionCheck records the evaluation of a routing condition.
func (r *Recorder) ConditionCheck(condition string, result bool, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventConditionCheck, Condition: condition, Result: &result, Message: context})
}

// WorkflowError records a tick that failed outside any node.
func (r *Recorder) WorkflowError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append(Event{Type: EventWorkflowError, Message: err.Error()})
}

// EventsByType returns all recorded events of the given kind, in order.
func (r *Recorder) EventsByType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// ExecutionSummary derives the aggregate view over all recorded events.
func (r *Recorder) ExecutionSummary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Summary{
		SessionID:   r.sessionID,
		ExecutionID: r.executionID,
		TotalEvents: len(r.events),
		Nodes:       make(map[string]*NodeStats),
	}
	for _, ev := range r.events {
		switch ev.Type {
		case EventNodeExit:
			st := s.Nodes[ev.Node]
			if st == nil {
				st = &NodeStats{}
				s.Nodes[ev.Node] = st
			}
			st.Count++
			st.total += ev.Duration
			st.AvgDuration = st.total / time.Duration(st.Count)
		case EventNodeError, EventWorkflowError:
			s.ErrorCount++
		case EventStateUpdate:
			s.StateUpdates++
		case EventWorkflowEnd:
			s.Duration += ev.Duration
		}
	}
	return s
}

// NodeTimeline returns the ordered node execution windows. An entry with a
// zero ExitedAt marks a node that entered but never exited (hard failure).
func (r *Recorder) NodeTimeline() []TimelineEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var timeline []TimelineEntry
	for _, ev := range r.events {
		switch ev.Type {
		case EventNodeEnter:
			timeline = append(timeline, TimelineEntry{Node: ev.Node, EnteredAt: ev.Timestamp})
		case EventNodeExit:
			for i := len(timeline) - 1; i >= 0; i-- {
				if timeline[i].Node == ev.Node && timeline[i].ExitedAt.IsZero() {
					timeline[i].ExitedAt = ev.Timestamp
					timeline[i].Duration = ev.Duration
					break
				}
			}
		}
	}
	return timeline
}

// ExportLogs returns a serializable snapshot of everything the recorder holds.
func (r *Recorder) ExportLogs() *Export {
	r.mu.Lock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	sessionID, executionID := r.sessionID, r.executionID
	r.mu.Unlock()

	return &Export{
		SessionID:   sessionID,
		ExecutionID: executionID,
		Events:      events,
		Summary:     r.ExecutionSummary(),
		Timeline:    r.NodeTimeline(),
	}
}
