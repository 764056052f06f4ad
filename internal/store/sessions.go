package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibeweb/sockethub/internal/model"
)

// SessionStore provides data access for session markers.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a SessionStore over an open database.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession upserts the session marker for sid with connected set. A
// reconnecting sid overwrites its previous record.
func (s *SessionStore) SaveSession(ctx context.Context, sid, clientIP string, connectedAt time.Time) error {
	query := `
		INSERT INTO sessions (sid, connected, client_ip, connected_at, disconnected_at)
		VALUES (?, 1, ?, ?, NULL)
		ON CONFLICT(sid) DO UPDATE SET
			connected = 1,
			client_ip = excluded.client_ip,
			connected_at = excluded.connected_at,
			disconnected_at = NULL
	`

	if _, err := s.db.ExecContext(ctx, query, sid, clientIP, connectedAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// MarkDisconnected clears the connected flag for sid. No-op if absent.
func (s *SessionStore) MarkDisconnected(ctx context.Context, sid string) error {
	query := `UPDATE sessions SET connected = 0, disconnected_at = ? WHERE sid = ?`

	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC(), sid); err != nil {
		return fmt.Errorf("failed to mark session disconnected: %w", err)
	}
	return nil
}

// GetSession retrieves the session marker for sid.
func (s *SessionStore) GetSession(ctx context.Context, sid string) (*model.SessionRecord, error) {
	query := `
		SELECT sid, connected, client_ip, connected_at, disconnected_at
		FROM sessions
		WHERE sid = ?
	`

	rec := &model.SessionRecord{}
	var clientIP sql.NullString
	var disconnectedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, sid).Scan(
		&rec.Sid,
		&rec.Connected,
		&clientIP,
		&rec.ConnectedAt,
		&disconnectedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rec.ClientIP = clientIP.String
	if disconnectedAt.Valid {
		t := disconnectedAt.Time
		rec.DisconnectedAt = &t
	}
	return rec, nil
}
