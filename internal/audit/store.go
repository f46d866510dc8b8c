// Package audit persists outreach attempts to SQLite so operators can
// answer "what did we do to this profile and when" after the browser
// session is long gone.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Attempt is one recorded operation against a profile.
type Attempt struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"` // reach_out, conversation, reply, check_connection
	ProfileURL string    `json:"profile_url"`
	SessionKey string    `json:"session_key"`
	Action     string    `json:"action,omitempty"`
	Status     string    `json:"status"` // success, failure
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Logs       []string  `json:"logs,omitempty"`
}

// Store wraps the attempts database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the attempts database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		profile_url TEXT NOT NULL,
		session_key TEXT NOT NULL,
		action TEXT,
		status TEXT NOT NULL,
		error TEXT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		logs_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_started ON attempts(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_attempts_profile ON attempts(profile_url);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one attempt. A missing ID is assigned here so callers
// do not have to care.
func (s *Store) Save(ctx context.Context, a *Attempt) error {
	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	logsJSON, _ := json.Marshal(a.Logs)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, kind, profile_url, session_key, action, status, error, started_at, duration_ms, logs_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Kind, a.ProfileURL, a.SessionKey, a.Action, a.Status, a.Error, a.StartedAt, a.DurationMs, string(logsJSON))
	return err
}

// Recent returns the newest attempts, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, profile_url, session_key, action, status, error, started_at, duration_ms, logs_json
		FROM attempts ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var action, errMsg, logsJSON sql.NullString

		if err := rows.Scan(&a.ID, &a.Kind, &a.ProfileURL, &a.SessionKey, &action, &a.Status, &errMsg, &a.StartedAt, &a.DurationMs, &logsJSON); err != nil {
			return nil, err
		}
		a.Action = action.String
		a.Error = errMsg.String
		if logsJSON.Valid && logsJSON.String != "" {
			json.Unmarshal([]byte(logsJSON.String), &a.Logs)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ByProfile returns the attempts recorded against one profile URL.
func (s *Store) ByProfile(ctx context.Context, profileURL string, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, profile_url, session_key, action, status, error, started_at, duration_ms, logs_json
		FROM attempts WHERE profile_url = ? ORDER BY started_at DESC, id DESC LIMIT ?
	`, profileURL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var action, errMsg, logsJSON sql.NullString

		if err := rows.Scan(&a.ID, &a.Kind, &a.ProfileURL, &a.SessionKey, &action, &a.Status, &errMsg, &a.StartedAt, &a.DurationMs, &logsJSON); err != nil {
			return nil, err
		}
		a.Action = action.String
		a.Error = errMsg.String
		if logsJSON.Valid && logsJSON.String != "" {
			json.Unmarshal([]byte(logsJSON.String), &a.Logs)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Stats aggregates attempt counts and timings.
func (s *Store) Stats(ctx context.Context) (map[string]any, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failure' THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(duration_ms), 0),
		       COALESCE(MAX(duration_ms), 0)
		FROM attempts
	`)

	var total, success, failures int
	var avgMs float64
	var maxMs int64
	if err := row.Scan(&total, &success, &failures, &avgMs, &maxMs); err != nil {
		return nil, err
	}

	return map[string]any{
		"total":           total,
		"success":         success,
		"failures":        failures,
		"avg_duration_ms": avgMs,
		"max_duration_ms": maxMs,
	}, nil
}
