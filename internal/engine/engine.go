package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrUnsupportedCommand = errors.New("unsupported command")

// Phase mismatches.
var (
	ErrAlreadyStarted = errors.New("game already started")
	ErrCannotStart    = errors.New("at least 2 players must be seated and ready")
	ErrNotExchanging  = errors.New("game is not in exchanging phase")
	ErrNotPlaying     = errors.New("game is not in playing state")
)

// Turn and ownership violations.
var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrCardsNotInHand = errors.New("not all cards are in hand")
	ErrPlayerNotFound = errors.New("player not found")
)

// Resource exhaustion.
var ErrPileEmpty = errors.New("pile is empty")

// Rule violations.
var (
	ErrInvalidSeat          = errors.New("invalid seat number")
	ErrSeatTaken            = errors.New("seat is already taken")
	ErrAllSeatsTaken        = errors.New("all seats are taken")
	ErrMustSeatFirst        = errors.New("must select a seat first")
	ErrInvalidMeld          = errors.New("invalid meld")
	ErrCardCannotExtendMeld = errors.New("card cannot be added to this meld")
	ErrIncompleteSelections = errors.New("not all players have selected a card to exchange")
	ErrMeldNotFound         = errors.New("meld not found")
)

type CommandType string

const (
	CmdAddPlayer          CommandType = "AddPlayer"
	CmdRemovePlayer       CommandType = "RemovePlayer"
	CmdSelectSeat         CommandType = "SelectSeat"
	CmdToggleReady        CommandType = "ToggleReady"
	CmdStartGame          CommandType = "StartGame"
	CmdSelectExchangeCard CommandType = "SelectExchangeCard"
	CmdCompleteExchange   CommandType = "CompleteExchange"
	CmdDrawCard           CommandType = "DrawCard"
	CmdDiscardCard        CommandType = "DiscardCard"
	CmdCreateMeld         CommandType = "CreateMeld"
	CmdAddCardToMeld      CommandType = "AddCardToMeld"
)

// Command carries one player action. Unused fields are ignored by the
// transition they do not apply to.
type Command struct {
	Type        CommandType
	PlayerID    string
	Name        string
	Seat        int
	CardID      string
	CardIDs     []string
	MeldID      string
	FromDiscard bool
}

type EventType string

const (
	EvtPlayerJoined     EventType = "PlayerJoined"
	EvtPlayerLeft       EventType = "PlayerLeft"
	EvtHostChanged      EventType = "HostChanged"
	EvtSeatSelected     EventType = "SeatSelected"
	EvtReadyToggled     EventType = "ReadyToggled"
	EvtGameStarted      EventType = "GameStarted"
	EvtExchangeSelected EventType = "ExchangeSelected"
	EvtExchangeDone     EventType = "ExchangeCompleted"
	EvtCardDrawn        EventType = "CardDrawn"
	// EvtDrawnCardExtendsMeld is advisory: the drawn card could extend one
	// of the drawer's melds. The engine never auto-melds; the caller decides
	// whether to prompt.
	EvtDrawnCardExtendsMeld EventType = "DrawnCardExtendsMeld"
	EvtCardDiscarded        EventType = "CardDiscarded"
	// EvtCardForced means the discard was absorbed by the next player's
	// meld: the card went to their hand, not the discard pile.
	EvtCardForced   EventType = "CardForced"
	EvtTurnAdvanced EventType = "TurnAdvanced"
	EvtMeldCreated  EventType = "MeldCreated"
	EvtMeldExtended EventType = "MeldExtended"
	EvtGameFinished EventType = "GameFinished"
)

// Event is a fully observable summary of something a transition did.
type Event struct {
	Type     EventType `json:"type"`
	PlayerID string    `json:"playerId,omitempty"`
	CardID   string    `json:"cardId,omitempty"`
	MeldID   string    `json:"meldId,omitempty"`
	Seat     *int      `json:"seat,omitempty"`
}

// Apply validates cmd against the snapshot s and returns the resulting
// events and state. The input is never mutated: on failure the original
// snapshot comes back untouched, on success a new snapshot is returned.
func Apply(s GameState, cmd Command) ([]Event, GameState, error) {
	switch cmd.Type {
	case CmdAddPlayer:
		return addPlayer(s, cmd.PlayerID, cmd.Name)
	case CmdRemovePlayer:
		return removePlayer(s, cmd.PlayerID)
	case CmdSelectSeat:
		return selectSeat(s, cmd.PlayerID, cmd.Seat)
	case CmdToggleReady:
		return toggleReady(s, cmd.PlayerID)
	case CmdStartGame:
		return startGame(s)
	case CmdSelectExchangeCard:
		return selectExchangeCard(s, cmd.PlayerID, cmd.CardID)
	case CmdCompleteExchange:
		return completeExchange(s)
	case CmdDrawCard:
		return drawCard(s, cmd.PlayerID, cmd.FromDiscard)
	case CmdDiscardCard:
		return discardCard(s, cmd.PlayerID, cmd.CardID)
	case CmdCreateMeld:
		return createMeld(s, cmd.PlayerID, cmd.CardIDs)
	case CmdAddCardToMeld:
		return addCardToMeld(s, cmd.PlayerID, cmd.CardID, cmd.MeldID)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// addPlayer appends a new player. The first player to join becomes host.
// Joining twice is a no-op, not an error.
func addPlayer(s GameState, playerID, name string) ([]Event, GameState, error) {
	if s.player(playerID) != nil {
		return nil, s, nil
	}

	newState := s.clone()
	newState.Players = append(newState.Players, Player{
		ID:     playerID,
		Name:   name,
		Hand:   []Card{},
		IsHost: len(s.Players) == 0,
		Seat:   nil,
		Ready:  false,
	})
	return []Event{{Type: EvtPlayerJoined, PlayerID: playerID}}, newState, nil
}

// removePlayer drops a player from the list. When the host leaves, host
// status moves to the first remaining player.
func removePlayer(s GameState, playerID string) ([]Event, GameState, error) {
	idx := s.playerIndex(playerID)
	if idx < 0 {
		return nil, s, nil
	}
	wasHost := s.Players[idx].IsHost

	newState := s.clone()
	newState.Players = append(newState.Players[:idx], newState.Players[idx+1:]...)

	events := []Event{{Type: EvtPlayerLeft, PlayerID: playerID}}
	if wasHost && len(newState.Players) > 0 {
		newState.Players[0].IsHost = true
		events = append(events, Event{Type: EvtHostChanged, PlayerID: newState.Players[0].ID})
	}
	return events, newState, nil
}

func selectSeat(s GameState, playerID string, seat int) ([]Event, GameState, error) {
	if seat < 0 || seat >= MaxPlayers {
		return nil, s, ErrInvalidSeat
	}

	for _, p := range s.Players {
		if p.ID != playerID && p.Seat != nil && *p.Seat == seat {
			return nil, s, ErrSeatTaken
		}
	}

	current := s.player(playerID)
	if current == nil {
		return nil, s, ErrPlayerNotFound
	}

	// Players already seated may move freely; standing players need a free
	// seat to exist among the four.
	seatedOthers := 0
	for _, p := range s.Players {
		if p.ID != playerID && p.Seat != nil {
			seatedOthers++
		}
	}
	if current.Seat == nil && seatedOthers >= MaxPlayers {
		return nil, s, ErrAllSeatsTaken
	}

	newState := s.clone()
	p := newState.player(playerID)
	p.Seat = &seat
	p.Position = seat
	p.Ready = false // changing seat always clears readiness
	return []Event{{Type: EvtSeatSelected, PlayerID: playerID, Seat: &seat}}, newState, nil
}

func toggleReady(s GameState, playerID string) ([]Event, GameState, error) {
	current := s.player(playerID)
	if current == nil {
		return nil, s, ErrPlayerNotFound
	}
	if current.Seat == nil {
		return nil, s, ErrMustSeatFirst
	}

	newState := s.clone()
	p := newState.player(playerID)
	p.Ready = !p.Ready
	return []Event{{Type: EvtReadyToggled, PlayerID: playerID}}, newState, nil
}

// CanStartGame reports whether the game may begin: at least two seated
// players, all of them ready.
func CanStartGame(s GameState) bool {
	seated := s.seatedPlayers()
	if len(seated) < 2 {
		return false
	}
	for _, p := range seated {
		if !p.Ready {
			return false
		}
	}
	return true
}

// startGame deals the shuffled deck and moves the game into the exchange
// phase. Unseated players are dropped from the game; the remaining players
// are ordered by seat.
func startGame(s GameState) ([]Event, GameState, error) {
	if s.Status != StatusWaiting {
		return nil, s, ErrAlreadyStarted
	}
	if !CanStartGame(s) {
		return nil, s, ErrCannotStart
	}

	newState := s.clone()
	seated := newState.seatedPlayers()

	deck := NewDeck()
	deck.Shuffle()
	for i := range seated {
		hand, err := deck.Deal(CardsPerPlayer)
		if err != nil {
			return nil, s, fmt.Errorf("dealing to %s: %w", seated[i].ID, err)
		}
		seated[i].Hand = hand
	}

	newState.Players = seated
	newState.DrawPile = deck.Cards()
	newState.DiscardPile = []Card{}
	newState.Status = StatusExchanging
	newState.ExchangeCards = map[string]string{}
	newState.CurrentPlayerIndex = 0
	return []Event{{Type: EvtGameStarted}}, newState, nil
}

func selectExchangeCard(s GameState, playerID, cardID string) ([]Event, GameState, error) {
	if s.Status != StatusExchanging {
		return nil, s, ErrNotExchanging
	}

	player := s.player(playerID)
	if player == nil {
		return nil, s, ErrPlayerNotFound
	}
	if cardIndex(player.Hand, cardID) < 0 {
		return nil, s, ErrCardNotInHand
	}

	newState := s.clone()
	if newState.ExchangeCards == nil {
		newState.ExchangeCards = map[string]string{}
	}
	newState.ExchangeCards[playerID] = cardID
	return []Event{{Type: EvtExchangeSelected, PlayerID: playerID, CardID: cardID}}, newState, nil
}

// completeExchange passes each player's chosen card clockwise: in ascending
// seat order, every player gives their card to the next seat and receives
// from the previous one. Hand sizes are unchanged. Play then begins, and
// turn order from here on runs counter-clockwise.
func completeExchange(s GameState) ([]Event, GameState, error) {
	if s.Status != StatusExchanging {
		return nil, s, ErrNotExchanging
	}

	newState := s.clone()
	sorted := newState.seatedPlayers()
	for _, p := range sorted {
		if _, ok := newState.ExchangeCards[p.ID]; !ok {
			return nil, s, ErrIncompleteSelections
		}
	}

	n := len(sorted)
	players := make([]Player, n)
	for i, p := range sorted {
		giveID := newState.ExchangeCards[p.ID]

		hand := []Card{}
		for _, c := range p.Hand {
			if c.ID != giveID {
				hand = append(hand, c)
			}
		}

		// Receive from the previous seat; their selection still sits in
		// their pre-exchange hand in sorted.
		prev := sorted[(i-1+n)%n]
		receiveID := newState.ExchangeCards[prev.ID]
		ri := cardIndex(prev.Hand, receiveID)
		if ri < 0 {
			return nil, s, fmt.Errorf("exchange: %w: %s", ErrCardNotInHand, receiveID)
		}
		hand = append(hand, prev.Hand[ri])

		cp := p
		cp.Hand = hand
		players[i] = cp
	}

	newState.Players = players
	newState.Status = StatusPlaying
	newState.ExchangeCards = nil
	newState.CurrentPlayerIndex = 0
	return []Event{{Type: EvtExchangeDone}}, newState, nil
}

// drawCard moves one card from the chosen pile into the acting player's
// hand: the top of the discard pile, or the front of the draw pile. If the
// drawn card could extend one of the player's own melds an advisory event
// is emitted, but nothing is forced.
func drawCard(s GameState, playerID string, fromDiscard bool) ([]Event, GameState, error) {
	if s.Status != StatusPlaying {
		return nil, s, ErrNotPlaying
	}
	playerIdx := s.playerIndex(playerID)
	if playerIdx != s.CurrentPlayerIndex {
		return nil, s, ErrNotYourTurn
	}

	newState := s.clone()
	var drawn Card
	if fromDiscard {
		if len(newState.DiscardPile) == 0 {
			return nil, s, ErrPileEmpty
		}
		drawn = newState.DiscardPile[len(newState.DiscardPile)-1]
		newState.DiscardPile = newState.DiscardPile[:len(newState.DiscardPile)-1]
	} else {
		if len(newState.DrawPile) == 0 {
			return nil, s, ErrPileEmpty
		}
		drawn = newState.DrawPile[0]
		newState.DrawPile = newState.DrawPile[1:]
	}

	p := &newState.Players[playerIdx]
	p.Hand = append(p.Hand, drawn)

	events := []Event{{Type: EvtCardDrawn, PlayerID: playerID, CardID: drawn.ID}}
	if FindExtendableMeld(drawn, newState.playerMelds(playerID)) != nil {
		events = append(events, Event{Type: EvtDrawnCardExtendsMeld, PlayerID: playerID, CardID: drawn.ID})
	}
	return events, newState, nil
}

// discardCard removes a card from the acting player's hand. If the next
// player counter-clockwise has a meld the card can extend, the card is
// forced into that player's hand instead of reaching the discard pile.
// Either way the turn advances counter-clockwise.
func discardCard(s GameState, playerID, cardID string) ([]Event, GameState, error) {
	if s.Status != StatusPlaying {
		return nil, s, ErrNotPlaying
	}
	playerIdx := s.playerIndex(playerID)
	if playerIdx != s.CurrentPlayerIndex {
		return nil, s, ErrNotYourTurn
	}

	newState := s.clone()
	p := &newState.Players[playerIdx]
	ci := cardIndex(p.Hand, cardID)
	if ci < 0 {
		return nil, s, ErrCardNotInHand
	}
	discarded := p.Hand[ci]
	p.Hand = append(p.Hand[:ci], p.Hand[ci+1:]...)

	n := len(newState.Players)
	nextIdx := (playerIdx - 1 + n) % n
	next := &newState.Players[nextIdx]

	var events []Event
	if FindExtendableMeld(discarded, newState.playerMelds(next.ID)) != nil {
		next.Hand = append(next.Hand, discarded)
		events = append(events, Event{Type: EvtCardForced, PlayerID: next.ID, CardID: discarded.ID})
	} else {
		newState.DiscardPile = append(newState.DiscardPile, discarded)
		events = append(events, Event{Type: EvtCardDiscarded, PlayerID: playerID, CardID: discarded.ID})
	}

	newState.CurrentPlayerIndex = (newState.CurrentPlayerIndex - 1 + n) % n
	events = append(events, Event{Type: EvtTurnAdvanced, PlayerID: newState.Players[newState.CurrentPlayerIndex].ID})
	return events, newState, nil
}

func createMeld(s GameState, playerID string, cardIDs []string) ([]Event, GameState, error) {
	if s.Status != StatusPlaying {
		return nil, s, ErrNotPlaying
	}
	player := s.player(playerID)
	if player == nil {
		return nil, s, ErrPlayerNotFound
	}

	cards := make([]Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		ci := cardIndex(player.Hand, id)
		if ci < 0 {
			return nil, s, ErrCardsNotInHand
		}
		cards = append(cards, player.Hand[ci])
	}
	if !IsValidMeld(cards) {
		return nil, s, ErrInvalidMeld
	}

	newState := s.clone()
	p := newState.player(playerID)
	hand := []Card{}
	for _, c := range p.Hand {
		if cardIndex(cards, c.ID) < 0 {
			hand = append(hand, c)
		}
	}
	p.Hand = hand

	meldType := MeldSequence
	if IsValidSet(cards) {
		meldType = MeldSet
	}
	meld := Meld{
		ID:       uuid.NewString(),
		Type:     meldType,
		Cards:    cards,
		PlayerID: playerID,
	}
	newState.Melds = append(newState.Melds, meld)

	events := []Event{{Type: EvtMeldCreated, PlayerID: playerID, MeldID: meld.ID}}
	events = append(events, checkWin(&newState, playerID)...)
	return events, newState, nil
}

func addCardToMeld(s GameState, playerID, cardID, meldID string) ([]Event, GameState, error) {
	if s.Status != StatusPlaying {
		return nil, s, ErrNotPlaying
	}
	player := s.player(playerID)
	if player == nil {
		return nil, s, ErrPlayerNotFound
	}
	ci := cardIndex(player.Hand, cardID)
	if ci < 0 {
		return nil, s, ErrCardNotInHand
	}
	card := player.Hand[ci]

	meldIdx := -1
	for i, m := range s.Melds {
		if m.ID == meldID {
			meldIdx = i
			break
		}
	}
	if meldIdx < 0 {
		return nil, s, ErrMeldNotFound
	}
	if FindExtendableMeld(card, s.Melds[meldIdx:meldIdx+1]) == nil {
		return nil, s, ErrCardCannotExtendMeld
	}

	newState := s.clone()
	p := newState.player(playerID)
	p.Hand = append(p.Hand[:ci], p.Hand[ci+1:]...)
	meld := &newState.Melds[meldIdx]
	meld.Cards = append(meld.Cards, card)

	events := []Event{{Type: EvtMeldExtended, PlayerID: playerID, CardID: cardID, MeldID: meldID}}
	events = append(events, checkWin(&newState, playerID)...)
	return events, newState, nil
}

// checkWin finishes the game the moment a player's melded cards reach the
// winning count.
func checkWin(s *GameState, playerID string) []Event {
	if !HasWon(s.Melds, playerID) {
		return nil
	}
	s.WinnerID = playerID
	s.Status = StatusFinished
	return []Event{{Type: EvtGameFinished, PlayerID: playerID}}
}

func cardIndex(cards []Card, cardID string) int {
	for i, c := range cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
