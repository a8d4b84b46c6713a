package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/mentor/internal/model"
)

// CreateBrowserSession creates a new session record valid for ttl.
func (s *Store) CreateBrowserSession(ttl time.Duration) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO browser_sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		id, now, now.Add(ttl),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetBrowserSession returns the session for id, or nil if not found or expired.
// Expired sessions are deleted together with their state.
func (s *Store) GetBrowserSession(id string) (*model.BrowserSession, error) {
	var sess model.BrowserSession
	err := s.db.QueryRow(
		`SELECT id, created_at, expires_at FROM browser_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		if err := s.DeleteBrowserSession(id); err != nil {
			slog.Warn("failed to delete expired browser session", "id", id, "error", err)
		}
		return nil, nil
	}
	return &sess, nil
}

// DeleteBrowserSession removes a session and its state.
func (s *Store) DeleteBrowserSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session_state WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM browser_sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CleanupExpiredSessions removes all expired sessions and their state.
func (s *Store) CleanupExpiredSessions() error {
	now := time.Now()
	_, err := s.db.Exec(
		`DELETE FROM session_state WHERE session_id IN (SELECT id FROM browser_sessions WHERE expires_at < ?)`, now,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM browser_sessions WHERE expires_at < ?`, now)
	return err
}

// SessionState is the sqlite-backed key-value state of one browser session.
type SessionState struct {
	db *sql.DB
	id string
}

// SessionState returns the state store for a session id.
func (s *Store) SessionState(id string) *SessionState {
	return &SessionState{db: s.db, id: id}
}

func (st *SessionState) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := st.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE session_id = ? AND key = ?`, st.id, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (st *SessionState) Set(ctx context.Context, key string, value []byte) error {
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO session_state (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		st.id, key, value, time.Now(),
	)
	return err
}

func (st *SessionState) Clear(ctx context.Context) error {
	_, err := st.db.ExecContext(ctx, `DELETE FROM session_state WHERE session_id = ?`, st.id)
	return err
}
