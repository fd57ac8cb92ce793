package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/schema"
)

// Calculate scores values against the calculator calcID.
// Calculators are stateless: no session is read or written.
func (e *Engine) Calculate(ctx context.Context, calcID string, values map[string]any) (*domain.CalculatorResult, error) {
	calc, err := e.store.GetCalculator(calcID)
	if err != nil {
		return nil, err
	}
	res, err := schema.Score(calc, values)
	if err != nil {
		e.logger.DebugContext(ctx, "calculator refused input", "calculator", calcID, "err", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	band := ""
	if res.Band != nil {
		band = res.Band.Label
	}
	e.logger.DebugContext(ctx, "calculator scored", "calculator", calcID, "band", band)
	return res, nil
}
