package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/consult/internal/presentation/tui"
	"github.com/aretw0/consult/pkg/domain"
	"golang.org/x/term"
)

// WalkOptions configures an interactive walk.
type WalkOptions struct {
	TreeID string
	// SessionID names a persisted session to resume or create. Without it the walk
	// uses a throwaway session removed on exit.
	SessionID string
	Plain     bool
}

// RunWalk walks a tree interactively, reading commands from in.
func RunWalk(ctx context.Context, app *App, opts WalkOptions, in io.Reader, out io.Writer) error {
	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	plain := opts.Plain || !isTerminal(out)
	if !plain {
		tui.PrintBanner(out)
	}

	sessions := app.Engine.Sessions()

	var (
		sess *domain.TreeSession
		err  error
	)
	if opts.SessionID != "" {
		sess, err = sessions.LoadOrStart(sigCtx, opts.SessionID, opts.TreeID)
		if err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
		if sess.TreeID != opts.TreeID {
			return fmt.Errorf("session %q belongs to tree %q", opts.SessionID, sess.TreeID)
		}
		if len(sess.History) > 0 {
			printSystemMessage(out, "Resuming at '%s' node...", sess.CurrentNodeID)
		} else {
			printSystemMessage(out, "Session '%s' active.", sess.ID)
		}
		app.Logger.Info("session active", "session_id", sess.ID, "node", sess.CurrentNodeID)
	} else {
		sess, err = sessions.Start(sigCtx, opts.TreeID)
		if err != nil {
			return err
		}
		defer func() {
			if err := sessions.Delete(context.Background(), sess.ID); err != nil {
				app.Logger.Warn("failed to remove session", "session_id", sess.ID, "err", err)
			}
		}()
	}

	walker, err := NewWalker(app.Engine, NewInterruptibleReader(in, sigCtx.Done()), out, plain, terminalWidth(out))
	if err != nil {
		return err
	}
	walker.MaxInput = app.Config.MaxInputSize

	final, runErr := walker.Run(sigCtx, sess.ID)

	nodeID := sess.CurrentNodeID
	if final != nil {
		nodeID = final.CurrentNodeID
	}
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(out, nodeID, runErr, sigCtx.Signal())

	return handleExecutionError(runErr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or zero when it is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
