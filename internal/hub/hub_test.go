package hub

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/engine"
	"github.com/avillega/conquian-backend/internal/lobby"
	"github.com/avillega/conquian-backend/internal/store"
)

func recvLobby(t *testing.T, ch <-chan *lobby.Lobby) *lobby.Lobby {
	t.Helper()
	select {
	case lb := <-ch:
		return lb
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timed out waiting for lobby reply")
		return nil // unreachable
	}
}

func TestHub_EnsureLobby(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemory()
	if err := st.Create(ctx, engine.NewGame("g1")); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	h := NewHub(ctx, st, zap.NewNop())

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- EnsureLobby{GameID: "g1", Reply: reply}
	first := recvLobby(t, reply)
	if first == nil {
		t.Fatalf("expected a lobby for a stored game")
	}

	// Ensure again returns the same actor.
	h.Inbox() <- EnsureLobby{GameID: "g1", Reply: reply}
	if second := recvLobby(t, reply); second != first {
		t.Fatalf("ensure must be idempotent")
	}

	h.Inbox() <- GetLobby{GameID: "g1", Reply: reply}
	if got := recvLobby(t, reply); got != first {
		t.Fatalf("get must return the running lobby")
	}
}

func TestHub_EnsureLobbyUnknownGame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, store.NewMemory(), zap.NewNop())

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- EnsureLobby{GameID: "missing", Reply: reply}
	if lb := recvLobby(t, reply); lb != nil {
		t.Fatalf("expected nil lobby for a game the store does not have")
	}
}

func TestHub_RemoveLobby(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemory()
	if err := st.Create(ctx, engine.NewGame("g1")); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	h := NewHub(ctx, st, zap.NewNop())

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- EnsureLobby{GameID: "g1", Reply: reply}
	_ = recvLobby(t, reply)

	h.Inbox() <- RemoveLobby{GameID: "g1"}
	h.Inbox() <- GetLobby{GameID: "g1", Reply: reply}
	if lb := recvLobby(t, reply); lb != nil {
		t.Fatalf("lobby must be gone after removal")
	}
}
