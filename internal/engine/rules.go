package engine

type MeldType string

const (
	MeldSet      MeldType = "set"
	MeldSequence MeldType = "sequence"
)

// Meld is a table-visible grouping owned by one player. Cards are only ever
// appended; the meld never shrinks once laid down.
type Meld struct {
	ID       string   `json:"id"`
	Type     MeldType `json:"type"`
	Cards    []Card   `json:"cards"`
	PlayerID string   `json:"playerId"`
}

// WinningMeldCount is how many melded cards a player needs to win.
const WinningMeldCount = 9

// IsValidSet reports whether cards form a set: exactly 3 or 4 cards, all of
// one rank.
func IsValidSet(cards []Card) bool {
	if len(cards) < 3 || len(cards) > 4 {
		return false
	}
	rank := cards[0].Rank
	for _, c := range cards[1:] {
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// IsValidSequence reports whether cards form a run: 3+ cards of one suit
// with strictly consecutive rank values and no King-Ace wrap.
func IsValidSequence(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}

	sorted := SortCards(cards)
	suit := sorted[0].Suit
	for _, c := range sorted[1:] {
		if c.Suit != suit {
			return false
		}
	}

	for i := 1; i < len(sorted); i++ {
		prev := RankValue(sorted[i-1].Rank)
		curr := RankValue(sorted[i].Rank)
		if curr != prev+1 {
			return false
		}
	}
	return true
}

// IsValidMeld reports whether cards form a valid set or sequence.
func IsValidMeld(cards []Card) bool {
	return IsValidSet(cards) || IsValidSequence(cards)
}

// FindExtendableMeld returns the first meld, in list order, the card can
// legally extend, or nil. Callers must not rely on any ordering beyond
// first-match.
func FindExtendableMeld(card Card, melds []Meld) *Meld {
	for i := range melds {
		m := &melds[i]
		switch m.Type {
		case MeldSet:
			if CanExtendSet(card, m.Cards) {
				return m
			}
		case MeldSequence:
			if CanExtendSequence(card, m.Cards) {
				return m
			}
		}
	}
	return nil
}

// CountMeldedCards sums the cards across a player's melds.
func CountMeldedCards(melds []Meld, playerID string) int {
	total := 0
	for _, m := range melds {
		if m.PlayerID == playerID {
			total += len(m.Cards)
		}
	}
	return total
}

// HasWon reports whether a player has melded enough cards to win.
func HasWon(melds []Meld, playerID string) bool {
	return CountMeldedCards(melds, playerID) >= WinningMeldCount
}
