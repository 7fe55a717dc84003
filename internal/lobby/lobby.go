package lobby

import (
	"context"

	"go.uber.org/zap"

	"github.com/avillega/conquian-backend/internal/engine"
	"github.com/avillega/conquian-backend/internal/store"
)

type Msg interface{ isLobbyMsg() }

// FromClient carries one player command. Reply, if non-nil, receives the
// apply error (or nil) so the transport can surface failures to exactly the
// player who acted.
type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// PlayerGone reports a dropped connection. The player is removed from the
// game only while it is still waiting; once cards are dealt their hand has
// to stay on the table so they can reconnect.
type PlayerGone struct{ PlayerID string }

func (PlayerGone) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Snapshot is one broadcast unit: the authoritative state, the store
// version it was persisted at, and the events the producing transition
// emitted.
type Snapshot struct {
	Version int64
	State   engine.GameState
	Events  []engine.Event
}

// View reflects lobby internals without data races; test-only.
type View struct {
	Version    int64
	NumClients int
	State      engine.GameState
}

// Lobby serializes all writes for one game. Commands still go through the
// store's compare-and-set cycle, so several server instances pointed at the
// same store cannot lose a transition.
type Lobby struct {
	gameID  string
	inbox   chan Msg
	store   store.Store
	log     *zap.Logger
	state   engine.GameState
	version int64
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

// New loads the game from the store and starts the lobby loop.
func New(parent context.Context, gameID string, st store.Store, log *zap.Logger) (*Lobby, error) {
	state, version, err := st.Load(parent, gameID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	l := &Lobby{
		gameID:  gameID,
		inbox:   make(chan Msg, 64),
		store:   st,
		log:     log.With(zap.String("game_id", gameID)),
		state:   state,
		version: version,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l, nil
}

// Inbox exposes the message channel to the transport layer and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: l.version, State: l.state}

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case PlayerGone:
				if l.state.Status != engine.StatusWaiting {
					break
				}
				events, err := l.apply(engine.Command{Type: engine.CmdRemovePlayer, PlayerID: msg.PlayerID})
				if err != nil {
					l.log.Warn("removing departed player", zap.String("player_id", msg.PlayerID), zap.Error(err))
					break
				}
				l.broadcast(Snapshot{Version: l.version, State: l.state, Events: events})

			case FromClient:
				events, err := l.apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}
				if err != nil {
					l.log.Info("command rejected",
						zap.String("command", string(msg.Cmd.Type)),
						zap.String("player_id", msg.Cmd.PlayerID),
						zap.Error(err))
					break
				}
				l.broadcast(Snapshot{Version: l.version, State: l.state, Events: events})

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// apply runs one command through the store's read-transition-write cycle
// and caches the persisted result. When a ready toggle makes the table
// startable the deal happens in the same write, so observers never see an
// everyone-ready-but-waiting document.
func (l *Lobby) apply(cmd engine.Command) ([]engine.Event, error) {
	var events []engine.Event
	next, version, err := store.Update(l.ctx, l.store, l.gameID, func(s engine.GameState) (engine.GameState, error) {
		events = nil // the cycle may rerun on conflict

		evts, n, err := engine.Apply(s, cmd)
		if err != nil {
			return engine.GameState{}, err
		}
		events = append(events, evts...)

		if cmd.Type == engine.CmdToggleReady && n.Status == engine.StatusWaiting && engine.CanStartGame(n) {
			startEvts, started, err := engine.Apply(n, engine.Command{Type: engine.CmdStartGame})
			if err != nil {
				return engine.GameState{}, err
			}
			events = append(events, startEvts...)
			n = started
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}

	l.state = next
	l.version = version
	return events, nil
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
			l.log.Warn("dropped slow client", zap.String("client_id", id))
		}
	}
}
