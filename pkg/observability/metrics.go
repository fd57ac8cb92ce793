package observability

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records traversal activity as Prometheus collectors.
type Metrics struct {
	NodeVisits        *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	TransitionsFailed *prometheus.CounterVec
	Unresolved        *prometheus.CounterVec
	NodeDwell         *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge
	SessionsStarted   *prometheus.CounterVec

	mu      sync.Mutex
	entered map[string]enterMark
}

type enterMark struct {
	nodeID string
	at     int64
}

// NewMetrics creates the collectors and registers them on reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consult_node_visits_total",
			Help: "Total number of node visits.",
		}, []string{"tree_id", "node_id"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consult_transitions_total",
			Help: "Total number of successful traversal operations.",
		}, []string{"tree_id", "op"}),
		TransitionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consult_transitions_failed_total",
			Help: "Total number of refused traversal operations.",
		}, []string{"tree_id", "op", "reason"}),
		Unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consult_unresolved_references_total",
			Help: "Inline references rendered whose target does not exist.",
		}, []string{"tree_id", "kind"}),
		NodeDwell: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consult_node_dwell_seconds",
			Help:    "Time spent on a node before leaving it.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 900},
		}, []string{"tree_id"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "consult_sessions_tracked",
			Help: "Sessions with a node currently entered.",
		}),
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consult_sessions_started_total",
			Help: "Sessions started or reset, per tree.",
		}, []string{"tree_id"}),
		entered: make(map[string]enterMark),
	}

	if reg != nil {
		reg.MustRegister(
			m.NodeVisits,
			m.Transitions,
			m.TransitionsFailed,
			m.Unresolved,
			m.NodeDwell,
			m.ActiveSessions,
			m.SessionsStarted,
		)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter:           m.onEnter,
		OnNodeLeave:           m.onLeave,
		OnTransitionFailed:    m.onFailed,
		OnUnresolvedReference: m.onUnresolved,
	}
}

func (m *Metrics) onEnter(_ context.Context, e *domain.NodeEvent) {
	m.NodeVisits.WithLabelValues(e.TreeID, e.NodeID).Inc()
	m.Transitions.WithLabelValues(e.TreeID, e.Op).Inc()
	if e.Op == "start" || e.Op == "reset" {
		m.SessionsStarted.WithLabelValues(e.TreeID).Inc()
	}

	if e.SessionID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entered[e.SessionID]; !ok {
		m.ActiveSessions.Inc()
	}
	m.entered[e.SessionID] = enterMark{nodeID: e.NodeID, at: e.Timestamp.UnixNano()}
}

func (m *Metrics) onLeave(_ context.Context, e *domain.NodeEvent) {
	if e.SessionID == "" {
		return
	}
	m.mu.Lock()
	mark, ok := m.entered[e.SessionID]
	if ok {
		delete(m.entered, e.SessionID)
		m.ActiveSessions.Dec()
	}
	m.mu.Unlock()

	if ok && mark.nodeID == e.NodeID {
		seconds := float64(e.Timestamp.UnixNano()-mark.at) / 1e9
		if seconds >= 0 {
			m.NodeDwell.WithLabelValues(e.TreeID).Observe(seconds)
		}
	}
}

func (m *Metrics) onFailed(_ context.Context, e *domain.FailureEvent) {
	m.TransitionsFailed.WithLabelValues(e.TreeID, e.Op, Reason(e.Err)).Inc()
}

func (m *Metrics) onUnresolved(_ context.Context, e *domain.ReferenceEvent) {
	m.Unresolved.WithLabelValues(e.TreeID, string(e.Span.Kind)).Inc()
}

// Reason maps a traversal error to a low-cardinality label.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrDanglingTarget):
		return "dangling_target"
	case errors.Is(err, domain.ErrUnknownNode):
		return "unknown_node"
	case errors.Is(err, domain.ErrNotQuestion), errors.Is(err, domain.ErrWrongNodeType):
		return "wrong_node_type"
	case errors.Is(err, domain.ErrOptionOutOfRange):
		return "option_out_of_range"
	case errors.Is(err, domain.ErrEmptyHistory):
		return "empty_history"
	case errors.Is(err, domain.ErrHistoryIndex):
		return "history_index"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNoNext):
		return "no_next"
	case errors.Is(err, domain.ErrInvalidSnapshot):
		return "invalid_snapshot"
	case errors.Is(err, domain.ErrTreeNotFound):
		return "tree_not_found"
	case errors.Is(err, domain.ErrNodeNotFound):
		return "node_not_found"
	default:
		return "other"
	}
}
