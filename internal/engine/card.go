package engine

import (
	"slices"

	"github.com/google/uuid"
)

type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

// Suits and Ranks define deck order: 4 suits x 10 ranks = 40 cards.
// Conquian uses the Spanish deck, so 8, 9 and 10 do not exist.
var (
	Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
	Ranks = []Rank{RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankJack, RankQueen, RankKing}
)

// Card is immutable once created. ID is opaque and unique per physical card;
// it is the only thing transitions compare when moving cards between piles.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// NewCard mints a card with a fresh unique id.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, ID: uuid.NewString()}
}

// RankValue returns the numeric value used for sorting and sequence
// adjacency: A=1, 2..7 face value, J=10, Q=11, K=12. Ace is always low and
// 7 connects directly to Jack, so 6-7-J and J-Q-K are valid runs while
// K-A-2 is not.
func RankValue(r Rank) int {
	switch r {
	case RankAce:
		return 1
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankJack:
		return 10
	case RankQueen:
		return 11
	case RankKing:
		return 12
	}
	return 0
}

func suitIndex(s Suit) int {
	return slices.Index(Suits, s)
}

// SortCards returns a new slice ordered by suit then rank value. Used for
// hand display and for canonicalizing a candidate sequence before checking
// adjacency.
func SortCards(cards []Card) []Card {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b Card) int {
		if d := suitIndex(a.Suit) - suitIndex(b.Suit); d != 0 {
			return d
		}
		return RankValue(a.Rank) - RankValue(b.Rank)
	})
	return sorted
}

// CanExtendSet reports whether card may join setCards: true when the set is
// empty or every member shares the card's rank.
func CanExtendSet(card Card, setCards []Card) bool {
	for _, c := range setCards {
		if c.Rank != card.Rank {
			return false
		}
	}
	return true
}

// CanExtendSequence reports whether card may join sequenceCards at either
// end: same suit and value exactly one below the minimum or one above the
// maximum. King never wraps to Ace in either direction.
func CanExtendSequence(card Card, sequenceCards []Card) bool {
	if len(sequenceCards) == 0 {
		return true
	}

	sorted := SortCards(sequenceCards)
	first := sorted[0]
	last := sorted[len(sorted)-1]

	if card.Suit != first.Suit {
		return false
	}

	v := RankValue(card.Rank)
	lo := RankValue(first.Rank)
	hi := RankValue(last.Rank)

	if v == lo-1 {
		// King below Ace would be a wrap.
		if v == 12 && lo == 1 {
			return false
		}
		return true
	}
	if v == hi+1 {
		// Ace above King would be a wrap.
		if hi == 12 && v == 1 {
			return false
		}
		return true
	}
	return false
}
