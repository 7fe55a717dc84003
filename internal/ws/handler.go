package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/engine"
	"github.com/avillega/conquian-backend/internal/hub"
	"github.com/avillega/conquian-backend/internal/lobby"
	"github.com/avillega/conquian-backend/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 60 * time.Second
)

// Handler upgrades the connection, joins the player to the game's lobby
// and pumps messages both ways until the client goes away. Disconnecting
// removes the player from the game, which also hands off host status when
// the host drops.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		playerID := r.URL.Query().Get("player")
		name := r.URL.Query().Get("name")
		if gameID == "" || playerID == "" {
			http.Error(w, "missing game or player", http.StatusBadRequest)
			return
		}
		if name == "" {
			name = playerID
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{GameID: gameID, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log = log.With(zap.String("game_id", gameID), zap.String("player_id", playerID))

		out := make(chan lobby.Snapshot, 8)
		lb.Inbox() <- lobby.Join{ClientID: playerID, Outbox: out}
		defer func() {
			lb.Inbox() <- lobby.Leave{ClientID: playerID}
			lb.Inbox() <- lobby.PlayerGone{PlayerID: playerID}
		}()

		// Joining the socket also joins the game.
		sendCommand(r.Context(), conn, lb, engine.Command{
			Type: engine.CmdAddPlayer, PlayerID: playerID, Name: name,
		})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{
					Type:    "StateSnapshot",
					Version: snap.Version,
					State:   &snap.State,
					Events:  snap.Events,
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			cmd, ok := toEngineCommand(cm, playerID)
			if !ok {
				writeError(r.Context(), conn, "unknown type")
				continue
			}

			if err := sendCommand(r.Context(), conn, lb, cmd); err != nil {
				log.Debug("command rejected", zap.String("type", cm.Type), zap.Error(err))
			}
		}
	}
}

// sendCommand submits a command and relays any rejection back to this
// client only; accepted commands reach everyone via the broadcast.
func sendCommand(ctx context.Context, conn *websocket.Conn, lb *lobby.Lobby, cmd engine.Command) error {
	reply := make(chan error, 1)
	lb.Inbox() <- lobby.FromClient{Cmd: cmd, Reply: reply}

	select {
	case err := <-reply:
		if err != nil {
			writeError(ctx, conn, err.Error())
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func toEngineCommand(m types.ClientMessage, playerID string) (engine.Command, bool) {
	switch m.Type {
	case "SelectSeat":
		if m.Seat == nil {
			return engine.Command{}, false
		}
		return engine.Command{Type: engine.CmdSelectSeat, PlayerID: playerID, Seat: *m.Seat}, true
	case "ToggleReady":
		return engine.Command{Type: engine.CmdToggleReady, PlayerID: playerID}, true
	case "StartGame":
		return engine.Command{Type: engine.CmdStartGame, PlayerID: playerID}, true
	case "SelectExchangeCard":
		return engine.Command{Type: engine.CmdSelectExchangeCard, PlayerID: playerID, CardID: m.CardID}, true
	case "CompleteExchange":
		return engine.Command{Type: engine.CmdCompleteExchange, PlayerID: playerID}, true
	case "DrawCard":
		return engine.Command{Type: engine.CmdDrawCard, PlayerID: playerID, FromDiscard: m.FromDiscard}, true
	case "DiscardCard":
		return engine.Command{Type: engine.CmdDiscardCard, PlayerID: playerID, CardID: m.CardID}, true
	case "CreateMeld":
		return engine.Command{Type: engine.CmdCreateMeld, PlayerID: playerID, CardIDs: m.CardIDs}, true
	case "AddCardToMeld":
		return engine.Command{Type: engine.CmdAddCardToMeld, PlayerID: playerID, CardID: m.CardID, MeldID: m.MeldID}, true
	default:
		return engine.Command{}, false
	}
}
