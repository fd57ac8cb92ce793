package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ListSessions prints the ids of stored sessions.
func ListSessions(ctx context.Context, app *App, out io.Writer) error {
	ids, err := app.Engine.Sessions().List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}

	sort.Strings(ids)
	fmt.Fprintln(out, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(out, "- "+id)
	}
	return nil
}

// InspectSession prints the stored snapshot of a session as JSON.
func InspectSession(ctx context.Context, app *App, sessionID string, out io.Writer) error {
	sess, err := app.Engine.Sessions().Store().Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}

	data, err := json.MarshalIndent(sess.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// RemoveSessions deletes every listed session, reporting each failure.
func RemoveSessions(ctx context.Context, app *App, ids []string, out io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := app.Engine.Sessions().Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
