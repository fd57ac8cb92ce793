package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left, failed []string

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.Op+":"+e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			left = append(left, e.Op+":"+e.NodeID)
		},
		OnTransitionFailed: func(ctx context.Context, e *domain.FailureEvent) {
			failed = append(failed, e.Op+":"+e.NodeID)
		},
	}

	eng := newEngine(t, runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	s, err := eng.Start(ctx, "scenario")
	require.NoError(t, err)
	s, err = eng.Advance(ctx, s)
	require.NoError(t, err)
	s, err = eng.SelectOption(ctx, s, 1)
	require.NoError(t, err)
	_, err = eng.SelectOption(ctx, s, 0)
	require.Error(t, err)
	_, err = eng.GoBack(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, []string{"start:A", "advance:B", "select:D", "back:B"}, entered)
	assert.Equal(t, []string{"advance:A", "select:B", "back:D"}, left)
	assert.Equal(t, []string{"select:D"}, failed)
}
