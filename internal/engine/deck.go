package engine

import (
	"errors"
	"math/rand"
)

var ErrInsufficientCards = errors.New("not enough cards in deck")

// Deck owns the shuffled 40-card sequence between creation and dealing. It
// only lives inside startGame; afterwards every card is in a hand or the
// draw pile.
type Deck struct {
	cards []Card
}

// NewDeck builds the full Spanish deck, one card per (suit, rank) pair,
// each with a fresh id. The deck is in deterministic order until Shuffle.
func NewDeck() *Deck {
	cards := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return &Deck{cards: cards}
}

// shuffleCards is swappable so tests can fix the permutation.
var shuffleCards = func(cards []Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Shuffle applies a uniform random permutation in place.
func (d *Deck) Shuffle() {
	shuffleCards(d.cards)
}

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if len(d.cards) < n {
		return nil, ErrInsufficientCards
	}
	dealt := d.cards[:n:n]
	d.cards = d.cards[n:]
	return dealt, nil
}

// Draw removes and returns the top card, or false when the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	top := d.cards[0]
	d.cards = d.cards[1:]
	return top, true
}

// Remaining returns how many cards have not been dealt or drawn.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns the undealt remainder; used to seed the draw pile after
// dealing.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
