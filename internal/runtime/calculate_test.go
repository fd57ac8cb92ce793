package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calcEngine(t *testing.T) *runtime.Engine {
	t.Helper()
	low, high := 1.0, 1.0
	store, err := memory.NewContent(domain.Library{
		Calculators: []domain.Calculator{{
			ID:    "spesi",
			Title: "sPESI",
			Fields: []domain.ScoreField{
				{Name: "cancer", Label: "Cancer", Type: domain.ScoreToggle, Points: 1},
				{Name: "hr", Label: "HR >= 110", Type: domain.ScoreToggle, Points: 1},
			},
			Bands: []domain.ScoreBand{
				{Max: &low, Label: "Low risk"},
				{Min: &high, Label: "High risk"},
			},
		}},
	})
	require.NoError(t, err)
	return runtime.NewEngine(store)
}

func TestEngine_Calculate(t *testing.T) {
	eng := calcEngine(t)
	ctx := context.Background()

	res, err := eng.Calculate(ctx, "spesi", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(0), res.Score)
	require.NotNil(t, res.Band)
	assert.Equal(t, "Low risk", res.Band.Label)

	res, err = eng.Calculate(ctx, "spesi", map[string]any{"cancer": "yes", "hr": true})
	require.NoError(t, err)
	assert.Equal(t, float64(2), res.Score)
	assert.Equal(t, "High risk", res.Band.Label)
}

func TestEngine_CalculateErrors(t *testing.T) {
	eng := calcEngine(t)
	ctx := context.Background()

	_, err := eng.Calculate(ctx, "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrCalculatorNotFound)

	_, err = eng.Calculate(ctx, "spesi", map[string]any{"cancer": "perhaps"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	fields := schema.Fields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "cancer", fields[0].Field)
	assert.Equal(t, "Cancer", fields[0].Label)
}
