package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/consult/internal/presentation/markdown"
	"github.com/aretw0/consult/pkg/domain"
)

// ListCalculators prints the risk calculators of the library as a table.
func ListCalculators(app *App, out io.Writer) error {
	calcs, err := app.Engine.Content().ListCalculators()
	if err != nil {
		return err
	}
	if len(calcs) == 0 {
		fmt.Fprintln(out, "No calculators found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBTITLE")
	for _, c := range calcs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Title, c.Subtitle)
	}
	return tw.Flush()
}

// RunCalc prompts for every criterion of calcID and prints the score.
func RunCalc(ctx context.Context, app *App, calcID string, plain bool, in io.Reader, out io.Writer) error {
	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	plain = plain || !isTerminal(out)
	w, err := NewWalker(app.Engine, NewInterruptibleReader(in, sigCtx.Done()), out, plain, terminalWidth(out))
	if err != nil {
		return err
	}
	w.MaxInput = app.Config.MaxInputSize

	return handleExecutionError(w.calculate(sigCtx, calcID))
}

// calculate shows calcID, asks for its criteria and prints the result.
func (w *Walker) calculate(ctx context.Context, calcID string) error {
	calc, err := w.Engine.Content().GetCalculator(calcID)
	if err != nil {
		return err
	}
	if err := w.print(markdown.Calculator(calc)); err != nil {
		return err
	}

	values, err := w.fillScore(calc.Fields)
	if err != nil {
		return err
	}
	res, err := w.Engine.Calculate(ctx, calcID, values)
	if err != nil {
		return err
	}
	return w.print(markdown.Score(res))
}

// fillScore prompts for every criterion. Blank answers are left out, which
// scores a toggle as absent.
func (w *Walker) fillScore(fields []domain.ScoreField) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		prompt := f.Label
		switch f.Type {
		case domain.ScoreToggle:
			prompt += " [y/N]"
		case domain.ScoreNumber:
			if f.Unit != "" {
				prompt += " (" + f.Unit + ")"
			}
		case domain.ScoreSelect:
			choices := make([]string, len(f.Options))
			for i, o := range f.Options {
				choices[i] = o.Label
			}
			prompt += " [" + strings.Join(choices, "/") + "]"
		}

		line, err := w.readLine(prompt + ": ")
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		values[f.Name] = line
	}
	return values, nil
}
