package engine

import (
	"maps"
	"slices"
	"time"
)

const (
	MaxPlayers     = 4
	CardsPerPlayer = 8
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusExchanging Status = "exchanging"
	StatusPlaying    Status = "playing"
	StatusFinished   Status = "finished"
)

// Player is a participant. Seat is nil until they pick one of the 0-3
// seats; Ready resets whenever the seat changes.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hand     []Card `json:"hand"`
	IsHost   bool   `json:"isHost"`
	Position int    `json:"position"`
	Seat     *int   `json:"seat"`
	Ready    bool   `json:"ready"`
}

// GameState is the root aggregate persisted as one JSON document per game.
// After every transition each card in the system lives in exactly one of:
// a hand, the draw pile, the discard pile, or a meld.
type GameState struct {
	GameID             string            `json:"gameId"`
	Players            []Player          `json:"players"`
	CurrentPlayerIndex int               `json:"currentPlayerIndex"`
	DrawPile           []Card            `json:"drawPile"`
	DiscardPile        []Card            `json:"discardPile"`
	Melds              []Meld            `json:"melds"`
	Status             Status            `json:"status"`
	WinnerID           string            `json:"winnerId,omitempty"`
	CreatedAt          int64             `json:"createdAt"`
	ExchangeCards      map[string]string `json:"exchangeCards,omitempty"` // playerId -> cardId
}

// NewGame returns an empty waiting-state game.
func NewGame(gameID string) GameState {
	return GameState{
		GameID:      gameID,
		Players:     []Player{},
		DrawPile:    []Card{},
		DiscardPile: []Card{},
		Melds:       []Meld{},
		Status:      StatusWaiting,
		CreatedAt:   time.Now().UnixMilli(),
	}
}

// Normalize fills in zero values a loosely-stored document may omit: nil
// collections become empty and a missing status means waiting. Stores call
// this on every load so transitions can assume populated structures.
func (g *GameState) Normalize() {
	if g.Players == nil {
		g.Players = []Player{}
	}
	for i := range g.Players {
		if g.Players[i].Hand == nil {
			g.Players[i].Hand = []Card{}
		}
	}
	if g.DrawPile == nil {
		g.DrawPile = []Card{}
	}
	if g.DiscardPile == nil {
		g.DiscardPile = []Card{}
	}
	if g.Melds == nil {
		g.Melds = []Meld{}
	}
	for i := range g.Melds {
		if g.Melds[i].Cards == nil {
			g.Melds[i].Cards = []Card{}
		}
	}
	if g.Status == "" {
		g.Status = StatusWaiting
	}
}

// clone deep-copies everything a transition may touch, so Apply never
// mutates its input snapshot.
func (g GameState) clone() GameState {
	out := g
	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := p
		cp.Hand = slices.Clone(p.Hand)
		if p.Seat != nil {
			seat := *p.Seat
			cp.Seat = &seat
		}
		out.Players[i] = cp
	}
	out.DrawPile = slices.Clone(g.DrawPile)
	out.DiscardPile = slices.Clone(g.DiscardPile)
	out.Melds = make([]Meld, len(g.Melds))
	for i, m := range g.Melds {
		cm := m
		cm.Cards = slices.Clone(m.Cards)
		out.Melds[i] = cm
	}
	if g.ExchangeCards != nil {
		out.ExchangeCards = maps.Clone(g.ExchangeCards)
	}
	return out
}

func (g *GameState) playerIndex(playerID string) int {
	return slices.IndexFunc(g.Players, func(p Player) bool { return p.ID == playerID })
}

func (g *GameState) player(playerID string) *Player {
	if i := g.playerIndex(playerID); i >= 0 {
		return &g.Players[i]
	}
	return nil
}

// seatedPlayers returns the seated players ordered by seat ascending.
func (g *GameState) seatedPlayers() []Player {
	seated := []Player{}
	for _, p := range g.Players {
		if p.Seat != nil {
			seated = append(seated, p)
		}
	}
	slices.SortStableFunc(seated, func(a, b Player) int { return *a.Seat - *b.Seat })
	return seated
}

// playerMelds returns the melds owned by one player, preserving list order.
func (g *GameState) playerMelds(playerID string) []Meld {
	melds := []Meld{}
	for _, m := range g.Melds {
		if m.PlayerID == playerID {
			melds = append(melds, m)
		}
	}
	return melds
}
