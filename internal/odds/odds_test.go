package odds

import (
	"testing"

	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestFreshDeck(t *testing.T) {
	p := Compute(deck.New())

	assert.Equal(t, 36, p.Remaining)
	assert.Equal(t, 0.25, p.Suit(deck.Spades))
	assert.InDelta(t, 4.0/36.0, p.Rank(deck.Six), tolerance)
	assert.InDelta(t, 1.0/36.0, p.Card(deck.NewCard(deck.Spades, deck.Six)), tolerance)
	assert.InDelta(t, 0.0278, p.Card(deck.NewCard(deck.Spades, deck.Six)), 0.0001)

	assert.Len(t, p.Suits, 4)
	assert.Len(t, p.Ranks, 9)
	assert.Len(t, p.Cards, 36)
}

func TestSpadesExhausted(t *testing.T) {
	d := deck.New()
	for _, r := range deck.Ranks {
		require.True(t, d.Remove(deck.NewCard(deck.Spades, r)))
	}

	p := Compute(d)

	_, ok := p.Suits[deck.Spades]
	assert.False(t, ok)
	assert.InDelta(t, 1.0/3.0, p.Suit(deck.Hearts), tolerance)
	assert.InDelta(t, 3.0/27.0, p.Rank(deck.Ace), tolerance)
	assert.Zero(t, p.Card(deck.NewCard(deck.Spades, deck.Ace)))
	assert.Len(t, p.Cards, 27)
}

func TestCardProbabilityKeepsTwoFactorForm(t *testing.T) {
	d := deck.New()
	rng := randutil.New(3)

	for i := 0; i < 35; i++ {
		_, ok := d.Draw(rng)
		require.True(t, ok)

		p := Compute(d)
		total := float64(d.CardsRemaining())
		for _, s := range d.Suits() {
			cs := float64(d.Count(s))
			for _, r := range d.Ranks(s) {
				got := p.Card(deck.NewCard(s, r))
				assert.Equal(t, (1/cs)*(cs/total), got)
				assert.InDelta(t, 1/total, got, tolerance)
			}
		}
	}
}

func TestSumsToOne(t *testing.T) {
	d := deck.New()
	rng := randutil.New(11)

	for !d.IsEmpty() {
		p := Compute(d)

		var suits, ranks, cards float64
		for _, v := range p.Suits {
			suits += v
		}
		for _, v := range p.Ranks {
			ranks += v
		}
		for _, v := range p.Cards {
			cards += v
		}
		require.InDelta(t, 1.0, suits, tolerance)
		require.InDelta(t, 1.0, ranks, tolerance)
		require.InDelta(t, 1.0, cards, tolerance)

		d.Draw(rng)
	}
}

func TestEmptyDeck(t *testing.T) {
	d := deck.New()
	for _, c := range d.Cards() {
		d.Remove(c)
	}

	p := Compute(d)
	assert.Zero(t, p.Remaining)
	assert.Empty(t, p.Suits)
	assert.Empty(t, p.Ranks)
	assert.Empty(t, p.Cards)
	assert.Empty(t, p.SuitList())
	assert.Empty(t, p.CardList(5))
}

func TestOrderedLists(t *testing.T) {
	d := deck.New()
	d.Remove(deck.NewCard(deck.Spades, deck.Six))
	d.Remove(deck.NewCard(deck.Hearts, deck.Six))

	p := Compute(d)

	suits := p.SuitList()
	require.Len(t, suits, 4)
	assert.Equal(t, deck.Spades, suits[0].Suit)
	assert.Equal(t, 8, suits[0].Count)
	assert.Equal(t, deck.Clubs, suits[3].Suit)
	assert.Equal(t, 9, suits[3].Count)

	ranks := p.RankList()
	require.Len(t, ranks, 9)
	assert.Equal(t, deck.Six, ranks[0].Rank)
	assert.Equal(t, 2, ranks[0].Count)

	cards := p.CardList(5)
	require.Len(t, cards, 5)
	assert.Equal(t, deck.NewCard(deck.Spades, deck.Seven), cards[0].Card)
	assert.Len(t, p.CardList(0), 34)
}

func TestCountsAreExact(t *testing.T) {
	d := deck.New()
	for _, r := range deck.Ranks[:7] {
		require.True(t, d.Remove(deck.NewCard(deck.Diamonds, r)))
	}
	require.True(t, d.Remove(deck.NewCard(deck.Clubs, deck.Ace)))

	p := Compute(d)
	assert.Equal(t, map[deck.Suit]int{deck.Spades: 9, deck.Hearts: 9, deck.Diamonds: 2, deck.Clubs: 8}, p.SuitCounts)
	assert.Equal(t, 3, p.RankCounts[deck.Ace])
	assert.Equal(t, 3, p.RankCounts[deck.Six])
	assert.Equal(t, 4, p.RankCounts[deck.King])

	for _, so := range p.SuitList() {
		assert.Equal(t, d.Count(so.Suit), so.Count)
	}
	total := 0
	for _, ro := range p.RankList() {
		total += ro.Count
	}
	assert.Equal(t, p.Remaining, total)
}
