package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vibeweb/sockethub/internal/model"
)

func setupStore(t *testing.T) *SessionStore {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db)
}

func TestSaveAndGetSession(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	connectedAt := time.Now().UTC().Truncate(time.Second)

	if err := s.SaveSession(ctx, "sid-1", "203.0.113.1", connectedAt); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	rec, err := s.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !rec.Connected {
		t.Error("expected connected marker set")
	}
	if rec.ClientIP != "203.0.113.1" {
		t.Errorf("expected client IP preserved, got %q", rec.ClientIP)
	}
	if !rec.ConnectedAt.Equal(connectedAt) {
		t.Errorf("expected connected_at %v, got %v", connectedAt, rec.ConnectedAt)
	}
	if rec.DisconnectedAt != nil {
		t.Error("expected no disconnected_at on a live session")
	}
}

func TestGetSessionAbsent(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetSession(context.Background(), "ghost")
	if !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMarkDisconnected(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	s.SaveSession(ctx, "sid-1", "", time.Now().UTC())
	if err := s.MarkDisconnected(ctx, "sid-1"); err != nil {
		t.Fatalf("MarkDisconnected failed: %v", err)
	}

	rec, err := s.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if rec.Connected {
		t.Error("expected connected cleared")
	}
	if rec.DisconnectedAt == nil {
		t.Error("expected disconnected_at set")
	}

	// Absent sid is a no-op, not an error
	if err := s.MarkDisconnected(ctx, "ghost"); err != nil {
		t.Errorf("expected no error for absent sid, got %v", err)
	}
}

func TestSaveSessionReconnectResetsMarker(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	s.SaveSession(ctx, "sid-1", "10.0.0.1", time.Now().UTC())
	s.MarkDisconnected(ctx, "sid-1")
	s.SaveSession(ctx, "sid-1", "10.0.0.2", time.Now().UTC())

	rec, err := s.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !rec.Connected {
		t.Error("expected reconnect to set connected again")
	}
	if rec.ClientIP != "10.0.0.2" {
		t.Errorf("expected updated client IP, got %q", rec.ClientIP)
	}
	if rec.DisconnectedAt != nil {
		t.Error("expected disconnected_at cleared on reconnect")
	}
}
