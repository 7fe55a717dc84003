package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/lobby"
	"github.com/avillega/conquian-backend/internal/store"
)

type HubMsg interface{ isHubMsg() }

// GetLobby replies with the running lobby for a game, or nil.
type GetLobby struct {
	GameID string
	Reply  chan *lobby.Lobby
}

// EnsureLobby replies with the running lobby, starting one from the store
// if needed. The reply is nil when the game does not exist in the store.
type EnsureLobby struct {
	GameID string
	Reply  chan *lobby.Lobby
}

type RemoveLobby struct {
	GameID string
}

type ShutdownHub struct{}

func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Hub owns the gameID -> lobby map. Lobbies are started lazily: a game can
// sit in the store with no lobby until a client connects.
type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	store   store.Store
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		store:   st,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetLobby:
				msg.Reply <- h.lobbies[msg.GameID] // may be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.GameID]; lb != nil {
					msg.Reply <- lb
					break
				}
				lb, err := lobby.New(h.ctx, msg.GameID, h.store, h.log)
				if err != nil {
					h.log.Warn("could not start lobby",
						zap.String("game_id", msg.GameID), zap.Error(err))
					msg.Reply <- nil
					break
				}
				h.lobbies[msg.GameID] = lb
				msg.Reply <- lb

			case RemoveLobby:
				if lb := h.lobbies[msg.GameID]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
				}
				delete(h.lobbies, msg.GameID)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.lobbies)
	h.cancel()
}
