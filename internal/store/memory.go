package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/avillega/conquian-backend/internal/engine"
)

// Memory is an in-process Store for tests and single-node development. It
// keeps the marshaled document, not the struct, so the JSON round trip and
// Normalize behave exactly like the remote backends.
type Memory struct {
	mu    sync.Mutex
	games map[string]memoryEntry
}

type memoryEntry struct {
	document []byte
	version  int64
}

func NewMemory() *Memory {
	return &Memory{games: map[string]memoryEntry{}}
}

func (m *Memory) Create(_ context.Context, state engine.GameState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[state.GameID]; ok {
		return ErrExists
	}
	m.games[state.GameID] = memoryEntry{document: doc, version: 1}
	return nil
}

func (m *Memory) Load(_ context.Context, gameID string) (engine.GameState, int64, error) {
	m.mu.Lock()
	entry, ok := m.games[gameID]
	m.mu.Unlock()
	if !ok {
		return engine.GameState{}, 0, ErrNotFound
	}

	var state engine.GameState
	if err := json.Unmarshal(entry.document, &state); err != nil {
		return engine.GameState{}, 0, err
	}
	state.Normalize()
	return state, entry.version, nil
}

func (m *Memory) Save(_ context.Context, state engine.GameState, expectedVersion int64) (int64, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[state.GameID]
	if !ok {
		return 0, ErrNotFound
	}
	if entry.version != expectedVersion {
		return 0, ErrConflict
	}
	next := memoryEntry{document: doc, version: entry.version + 1}
	m.games[state.GameID] = next
	return next.version, nil
}

func (m *Memory) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	return nil
}
