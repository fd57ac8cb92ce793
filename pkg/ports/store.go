package ports

import (
	"context"

	"github.com/aretw0/consult/pkg/domain"
)

// SessionStore defines the interface for persisting traversal sessions,
// enabling "stop & resume" across CLI invocations and HTTP requests.
// Sessions are persisted in the domain.Snapshot wire format.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, s *domain.TreeSession) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.TreeSession, error)

	// Delete removes the session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all persisted sessions.
	List(ctx context.Context) ([]string, error)
}
