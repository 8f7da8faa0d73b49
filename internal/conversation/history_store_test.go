package conversation

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHistoryStore(t *testing.T) *HistoryStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewHistoryStore(client, time.Hour)
}

func TestHistoryStoreAppendAndSnapshotOrder(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	turns := []ChatMessage{
		{Role: ChatRoleUser, Content: "I need a dentist"},
		{Role: ChatRoleAssistant, Content: "What date works for you?"},
		{Role: ChatRoleUser, Content: "Tomorrow at 2pm"},
	}
	for _, msg := range turns {
		if err := store.Append(ctx, "session-a", msg); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	history, err := store.Snapshot(ctx, "session-a")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(history) != len(turns) {
		t.Fatalf("expected %d turns, got %d", len(turns), len(history))
	}
	for i, msg := range turns {
		if history[i] != msg {
			t.Fatalf("turn %d out of order: got %+v want %+v", i, history[i], msg)
		}
	}
}

func TestHistoryStoreSessionsAreIndependent(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "session-a", ChatMessage{Role: ChatRoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	other, err := store.Snapshot(ctx, "session-b")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history for untouched session, got %d turns", len(other))
	}
}

func TestHistoryStoreSnapshotEmptySession(t *testing.T) {
	store := newTestHistoryStore(t)

	history, err := store.Snapshot(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Snapshot on empty session must not fail: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(history))
	}
}

func TestHistoryStoreResetIdempotent(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "session-a", ChatMessage{Role: ChatRoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Reset(ctx, "session-a"); err != nil {
			t.Fatalf("Reset call %d failed: %v", i+1, err)
		}
	}

	history, err := store.Snapshot(ctx, "session-a")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history after reset, got %d turns", len(history))
	}
}
