package observability

import (
	"context"

	"github.com/davidvanstory/flowgenius/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the workflow engine.
type Metrics struct {
	NodeVisits     *prometheus.CounterVec
	NodeDuration   *prometheus.HistogramVec
	TickDuration   prometheus.Histogram
	WorkflowErrors prometheus.Counter
}

// NewMetrics creates and registers the workflow collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgenius_node_visits_total",
				Help: "Total number of workflow node executions",
			},
			[]string{"node"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "flowgenius_node_duration_seconds",
				Help: "Duration of workflow node executions",
			},
			[]string{"node"},
		),
		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "flowgenius_tick_duration_seconds",
				Help: "Duration of full executor ticks",
			},
		),
		WorkflowErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flowgenius_workflow_errors_total",
				Help: "Total number of failed workflow ticks",
			},
		),
	}
	reg.MustRegister(m.NodeVisits, m.NodeDuration, m.TickDuration, m.WorkflowErrors)
	return m
}

// Hooks adapts the collectors into executor lifecycle hooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.Node).Inc()
		},
		OnNodeExit: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeDuration.WithLabelValues(e.Node).Observe(e.Duration.Seconds())
		},
		// Node errors surface on the tick event too; counting them there
		// keeps one increment per failed tick.
		OnTickEnd: func(_ context.Context, e *domain.TickEvent) {
			m.TickDuration.Observe(e.Duration.Seconds())
			if e.Err != "" {
				m.WorkflowErrors.Inc()
			}
		},
	}
}
