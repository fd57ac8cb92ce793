package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library() domain.Library {
	return domain.Library{
		Trees: []domain.Tree{{
			ID:          "t",
			Title:       "T",
			EntryNodeID: "q",
			Nodes: []domain.DecisionNode{
				{ID: "q", Type: domain.NodeTypeQuestion, Title: "Q", Body: "See [gone](#/drug/none)", Options: []domain.Option{
					{Label: "Ok", Next: "r"},
					{Label: "Broken", Next: "missing"},
				}},
				{ID: "r", Type: domain.NodeTypeResult, Title: "R"},
			},
		}},
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	eng := runtime.NewEngine(memory.MustContent(library()), runtime.WithLifecycleHooks(m.Hooks()))
	ctx := context.Background()

	s, err := eng.Start(ctx, "t")
	require.NoError(t, err)
	s.ID = "s1"

	_, err = eng.Render(ctx, s)
	require.NoError(t, err)

	_, err = eng.SelectOption(ctx, s, 1)
	require.Error(t, err)

	_, err = eng.SelectOption(ctx, s, 0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("t", "q")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeVisits.WithLabelValues("t", "r")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("t")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("t", "select")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsFailed.WithLabelValues("t", "select", "dangling_target")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unresolved.WithLabelValues("t", string(domain.SpanDrugLink))))

	// The start event carried no session id, so dwell time starts with the select.
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

	count, err := testutil.GatherAndCount(reg, "consult_node_visits_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "none", observability.Reason(nil))
	assert.Equal(t, "option_out_of_range", observability.Reason(&domain.TransitionError{Op: "select", Err: domain.ErrOptionOutOfRange}))
	assert.Equal(t, "unknown_node", observability.Reason(domain.ErrUnknownNode))
	assert.Equal(t, "other", observability.Reason(assert.AnError))
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { order = append(order, "b") },
		OnNodeLeave: func(context.Context, *domain.NodeEvent) { order = append(order, "leave") },
	}

	h := observability.Combine(a, domain.LifecycleHooks{}, b)
	require.NotNil(t, h.OnNodeEnter)
	require.NotNil(t, h.OnNodeLeave)
	assert.Nil(t, h.OnTransitionFailed)

	h.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	h.OnNodeLeave(context.Background(), &domain.NodeEvent{})
	assert.Equal(t, []string{"a", "b", "leave"}, order)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng := runtime.NewEngine(memory.MustContent(library()),
		runtime.WithLifecycleHooks(observability.LoggingHooks(logger)))
	ctx := context.Background()

	s, err := eng.Start(ctx, "t")
	require.NoError(t, err)
	_, _ = eng.SelectOption(ctx, s, 5)

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=node_enter"), out)
	assert.True(t, strings.Contains(out, "reason=option_out_of_range"), out)
}
