package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/engine"
	"github.com/avillega/conquian-backend/internal/store"
)

// GenerateGameID returns a short join code for a new game.
func GenerateGameID() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateGame persists a fresh waiting-state game and returns its code.
func CreateGame(st store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var gameID string
		for {
			code, err := GenerateGameID()
			if err != nil {
				http.Error(w, "failed to generate game id", http.StatusInternalServerError)
				return
			}

			err = st.Create(r.Context(), engine.NewGame(code))
			if errors.Is(err, store.ErrExists) {
				log.Debug("game id collision, regenerating", zap.String("game_id", code))
				continue
			}
			if err != nil {
				log.Error("creating game", zap.Error(err))
				http.Error(w, "failed to create game", http.StatusInternalServerError)
				return
			}
			gameID = code
			break
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			GameID string `json:"game_id"`
		}{GameID: gameID})
	}
}

// GetGame returns the stored snapshot and its version.
func GetGame(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")

		state, version, err := st.Load(r.Context(), gameID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "failed to load game", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Version int64            `json:"version"`
			State   engine.GameState `json:"state"`
		}{Version: version, State: state})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
