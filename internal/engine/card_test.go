package engine

import "testing"

func c(suit Suit, rank Rank) Card {
	return NewCard(suit, rank)
}

func TestRankValueMapping(t *testing.T) {
	cases := []struct {
		rank Rank
		want int
	}{
		{RankAce, 1},
		{RankTwo, 2},
		{RankSeven, 7},
		{RankJack, 10},
		{RankQueen, 11},
		{RankKing, 12},
	}

	for _, tc := range cases {
		if got := RankValue(tc.rank); got != tc.want {
			t.Fatalf("RankValue(%s): got %d, want %d", tc.rank, got, tc.want)
		}
	}
}

func TestSortCardsBySuitThenRank(t *testing.T) {
	cards := []Card{
		c(SuitSpades, RankAce),
		c(SuitHearts, RankKing),
		c(SuitHearts, RankTwo),
		c(SuitClubs, RankJack),
	}

	sorted := SortCards(cards)

	want := []struct {
		suit Suit
		rank Rank
	}{
		{SuitHearts, RankTwo},
		{SuitHearts, RankKing},
		{SuitClubs, RankJack},
		{SuitSpades, RankAce},
	}
	for i, w := range want {
		if sorted[i].Suit != w.suit || sorted[i].Rank != w.rank {
			t.Fatalf("position %d: got %s of %s, want %s of %s", i, sorted[i].Rank, sorted[i].Suit, w.rank, w.suit)
		}
	}

	// Input order must be untouched.
	if cards[0].Suit != SuitSpades || cards[0].Rank != RankAce {
		t.Fatalf("SortCards mutated its input")
	}
}

func TestCanExtendSet(t *testing.T) {
	set := []Card{c(SuitHearts, RankSeven), c(SuitClubs, RankSeven)}

	if !CanExtendSet(c(SuitSpades, RankSeven), set) {
		t.Fatalf("matching rank should extend set")
	}
	if CanExtendSet(c(SuitSpades, RankSix), set) {
		t.Fatalf("different rank should not extend set")
	}
	if !CanExtendSet(c(SuitSpades, RankSix), nil) {
		t.Fatalf("any card should extend an empty set")
	}
}

func TestCanExtendSequence(t *testing.T) {
	cases := []struct {
		name     string
		card     Card
		sequence []Card
		want     bool
	}{
		{
			name:     "empty sequence accepts anything",
			card:     c(SuitHearts, RankAce),
			sequence: nil,
			want:     true,
		},
		{
			name:     "extends below minimum",
			card:     c(SuitHearts, RankAce),
			sequence: []Card{c(SuitHearts, RankTwo), c(SuitHearts, RankThree)},
			want:     true,
		},
		{
			name:     "extends above maximum",
			card:     c(SuitHearts, RankFour),
			sequence: []Card{c(SuitHearts, RankTwo), c(SuitHearts, RankThree)},
			want:     true,
		},
		{
			name:     "seven connects to jack",
			card:     c(SuitClubs, RankJack),
			sequence: []Card{c(SuitClubs, RankSix), c(SuitClubs, RankSeven)},
			want:     true,
		},
		{
			name:     "wrong suit",
			card:     c(SuitSpades, RankFour),
			sequence: []Card{c(SuitHearts, RankTwo), c(SuitHearts, RankThree)},
			want:     false,
		},
		{
			name:     "gap is not adjacent",
			card:     c(SuitHearts, RankFive),
			sequence: []Card{c(SuitHearts, RankTwo), c(SuitHearts, RankThree)},
			want:     false,
		},
		{
			name:     "ace does not follow king",
			card:     c(SuitHearts, RankAce),
			sequence: []Card{c(SuitHearts, RankQueen), c(SuitHearts, RankKing)},
			want:     false,
		},
		{
			name:     "king does not precede ace",
			card:     c(SuitHearts, RankKing),
			sequence: []Card{c(SuitHearts, RankAce), c(SuitHearts, RankTwo)},
			want:     false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanExtendSequence(tc.card, tc.sequence); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
