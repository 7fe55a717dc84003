package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/avillega/conquian-backend/internal/engine"
)

// Redis stores each game as a document key plus a version key, using
// WATCH-based transactions for the compare-and-set.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func docKey(gameID string) string     { return "conquian:game:" + gameID }
func versionKey(gameID string) string { return docKey(gameID) + ":version" }

func (r *Redis) Create(ctx context.Context, state engine.GameState) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return err
	}

	created, err := r.client.SetNX(ctx, versionKey(state.GameID), 1, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrExists
	}
	return r.client.Set(ctx, docKey(state.GameID), doc, 0).Err()
}

func (r *Redis) Load(ctx context.Context, gameID string) (engine.GameState, int64, error) {
	pipe := r.client.Pipeline()
	docCmd := pipe.Get(ctx, docKey(gameID))
	verCmd := pipe.Get(ctx, versionKey(gameID))
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return engine.GameState{}, 0, ErrNotFound
		}
		return engine.GameState{}, 0, err
	}

	version, err := verCmd.Int64()
	if err != nil {
		return engine.GameState{}, 0, err
	}

	var state engine.GameState
	if err := json.Unmarshal([]byte(docCmd.Val()), &state); err != nil {
		return engine.GameState{}, 0, err
	}
	state.Normalize()
	return state, version, nil
}

func (r *Redis) Save(ctx context.Context, state engine.GameState, expectedVersion int64) (int64, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return 0, err
	}

	verKey := versionKey(state.GameID)
	newVersion := expectedVersion + 1

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey(state.GameID), doc, 0)
			pipe.Set(ctx, verKey, newVersion, 0)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		// The watched version key moved under us.
		return 0, fmt.Errorf("save %s: %w", state.GameID, ErrConflict)
	}
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

func (r *Redis) Delete(ctx context.Context, gameID string) error {
	return r.client.Del(ctx, docKey(gameID), versionKey(gameID)).Err()
}
