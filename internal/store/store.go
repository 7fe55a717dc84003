// Package store persists each game as a single versioned JSON document.
// Writers follow a read-transition-write cycle: Load returns the document
// with its version, Save applies the new document only if the version is
// unchanged, and Update retries the whole cycle on conflict.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avillega/conquian-backend/internal/engine"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrExists   = errors.New("game already exists")
	// ErrConflict means the document changed between Load and Save.
	ErrConflict = errors.New("game state changed since read")
)

// Store is a compare-and-set document store keyed by game id.
type Store interface {
	// Create persists a brand new game at version 1.
	Create(ctx context.Context, state engine.GameState) error
	// Load returns the current state and its version.
	Load(ctx context.Context, gameID string) (engine.GameState, int64, error)
	// Save persists state if the stored version still equals
	// expectedVersion, returning the new version. ErrConflict otherwise.
	Save(ctx context.Context, state engine.GameState, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, gameID string) error
}

// maxUpdateAttempts bounds the optimistic retry loop. Conflicts only happen
// when another writer landed first, so a handful of retries is plenty.
const maxUpdateAttempts = 5

// UpdateFunc transforms one consistent snapshot into the next.
type UpdateFunc func(engine.GameState) (engine.GameState, error)

// Update runs the read-transition-write cycle against s, retrying the whole
// cycle when another writer got in between. The transition fn must be pure:
// it can run more than once.
func Update(ctx context.Context, s Store, gameID string, fn UpdateFunc) (engine.GameState, int64, error) {
	for attempt := 0; ; attempt++ {
		state, version, err := s.Load(ctx, gameID)
		if err != nil {
			return engine.GameState{}, 0, err
		}

		next, err := fn(state)
		if err != nil {
			return engine.GameState{}, 0, err
		}

		newVersion, err := s.Save(ctx, next, version)
		if err == nil {
			return next, newVersion, nil
		}
		if !errors.Is(err, ErrConflict) {
			return engine.GameState{}, 0, err
		}
		if attempt+1 >= maxUpdateAttempts {
			return engine.GameState{}, 0, fmt.Errorf("update %s: %w", gameID, err)
		}
	}
}
