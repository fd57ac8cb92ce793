// Package sqlite persists traversal sessions in a SQLite database.
//
// It uses the pure-Go modernc.org/sqlite driver, so no cgo toolchain is needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/consult/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store implements ports.SessionStore on a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens or creates a session database at the given path.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id              TEXT PRIMARY KEY,
		tree_id         TEXT NOT NULL,
		current_node_id TEXT NOT NULL,
		history         TEXT NOT NULL,
		answers         TEXT NOT NULL,
		started_at      INTEGER NOT NULL,
		updated_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_tree ON sessions(tree_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts or replaces the session row.
func (s *Store) Save(ctx context.Context, sessionID string, session *domain.TreeSession) error {
	snap := session.Snapshot()

	history, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	answers, err := json.Marshal(snap.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, tree_id, current_node_id, history, answers, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tree_id = excluded.tree_id,
			current_node_id = excluded.current_node_id,
			history = excluded.history,
			answers = excluded.answers,
			started_at = excluded.started_at,
			updated_at = excluded.updated_at`,
		sessionID, snap.TreeID, snap.CurrentNodeID, string(history), string(answers),
		snap.StartedAt, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads a session row back into a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.TreeSession, error) {
	var (
		snap             domain.Snapshot
		history, answers string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tree_id, current_node_id, history, answers, started_at
		FROM sessions WHERE id = ?`, sessionID,
	).Scan(&snap.ID, &snap.TreeID, &snap.CurrentNodeID, &history, &answers, &snap.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if err := json.Unmarshal([]byte(history), &snap.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &snap.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return snap.Session(), nil
}

// Delete removes the session row. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns all session ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByTree returns the ids of sessions walking the given tree.
func (s *Store) ListByTree(ctx context.Context, treeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE tree_id = ? ORDER BY id`, treeID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
