package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/hub"
	"github.com/avillega/conquian-backend/internal/store"
	"github.com/avillega/conquian-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, st store.Store, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/games", CreateGame(st, log))
	r.Get("/games/{gameID}", GetGame(st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
