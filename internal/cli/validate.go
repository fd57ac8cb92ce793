package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/consult/content"
	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/internal/validator"
	"github.com/aretw0/consult/pkg/adapters/file"
)

// RunValidate lints the library at dir, or the bundled library when dir is empty.
// With watch set it re-validates on every change until ctx is cancelled.
func RunValidate(ctx context.Context, dir string, watch bool, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	src := file.NewSource(content.FS)
	if dir != "" {
		src = file.NewDirSource(dir)
	}

	err := validateOnce(src, out)
	if !watch {
		return err
	}
	if dir == "" {
		return fmt.Errorf("--watch needs a content directory")
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	changes, err := src.Watch(sigCtx)
	if err != nil {
		return err
	}
	logger.Info("watching content", "dir", dir)
	printSystemMessage(out, "Watching '%s' for changes...", dir)

	for range changes {
		printSystemMessage(out, "Change detected.")
		if err := validateOnce(src, out); err != nil {
			logger.Debug("validation failed", "err", err)
		}
	}
	return nil
}

func validateOnce(src *file.Source, out io.Writer) error {
	store, err := src.Load()
	if err != nil {
		fmt.Fprintf(out, "Load failed: %v\n", err)
		return err
	}

	report, err := validator.Validate(store)
	if err != nil {
		return err
	}
	for _, issue := range report.Issues {
		fmt.Fprintln(out, issue.String())
	}

	errs := len(report.Errors())
	fmt.Fprintf(out, "%d trees, %d nodes, %d calculators: %d errors, %d warnings\n",
		report.Trees, report.Nodes, report.Calculators, errs, len(report.Issues)-errs)
	if errs == 0 {
		fmt.Fprintln(out, "Content is valid! ✅")
	}
	return report.Err()
}
