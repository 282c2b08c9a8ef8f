// Package odds derives draw probabilities from the cards left in a deck.
//
// Probabilities are a pure function of the deck and are never cached; callers
// recompute after every change.
package odds

import (
	"github.com/lox/cardsim/internal/deck"
)

// Probabilities holds the chance that the next draw yields a given suit, rank
// or card. Exhausted suits, ranks and cards have no entry.
type Probabilities struct {
	Remaining  int                   `json:"remaining"`
	Suits      map[deck.Suit]float64 `json:"suits"`
	Ranks      map[deck.Rank]float64 `json:"ranks"`
	Cards      map[deck.Card]float64 `json:"cards"`
	SuitCounts map[deck.Suit]int     `json:"suitCounts"`
	RankCounts map[deck.Rank]int     `json:"rankCounts"`
}

// SuitOdds is one suit with its probability
type SuitOdds struct {
	Suit        deck.Suit
	Count       int
	Probability float64
}

// RankOdds is one rank with its probability
type RankOdds struct {
	Rank        deck.Rank
	Count       int
	Probability float64
}

// CardOdds is one card with its probability
type CardOdds struct {
	Card        deck.Card
	Probability float64
}

// Compute returns the probabilities for the next draw from d.
//
// A card's probability is (1/c_s) * P(suit=s): the deck picks a suit first and
// then a rank within it. The product is kept in that form rather than reduced
// to 1/R so the floating-point results match the two-step draw exactly.
func Compute(d *deck.Deck) Probabilities {
	p := Probabilities{
		Remaining:  d.CardsRemaining(),
		Suits:      make(map[deck.Suit]float64, deck.NumSuits),
		Ranks:      make(map[deck.Rank]float64, deck.NumRanks),
		Cards:      make(map[deck.Card]float64, d.CardsRemaining()),
		SuitCounts: make(map[deck.Suit]int, deck.NumSuits),
		RankCounts: make(map[deck.Rank]int, deck.NumRanks),
	}
	if p.Remaining == 0 {
		return p
	}

	total := float64(p.Remaining)

	for _, s := range d.Suits() {
		ranks := d.Ranks(s)
		p.SuitCounts[s] = len(ranks)
		for _, r := range ranks {
			p.RankCounts[r]++
		}
	}

	for s, count := range p.SuitCounts {
		p.Suits[s] = float64(count) / total
	}
	for r, count := range p.RankCounts {
		p.Ranks[r] = float64(count) / total
	}
	for _, s := range d.Suits() {
		for _, r := range d.Ranks(s) {
			p.Cards[deck.NewCard(s, r)] = (1 / float64(p.SuitCounts[s])) * p.Suits[s]
		}
	}

	return p
}

// Suit returns the probability of drawing suit s next, 0 when exhausted
func (p Probabilities) Suit(s deck.Suit) float64 {
	return p.Suits[s]
}

// Rank returns the probability of drawing rank r next, 0 when exhausted
func (p Probabilities) Rank(r deck.Rank) float64 {
	return p.Ranks[r]
}

// Card returns the probability of drawing card c next, 0 once drawn
func (p Probabilities) Card(c deck.Card) float64 {
	return p.Cards[c]
}

// SuitList returns the suits with cards left, in display order
func (p Probabilities) SuitList() []SuitOdds {
	out := make([]SuitOdds, 0, len(p.Suits))
	for _, s := range deck.Suits {
		if prob, ok := p.Suits[s]; ok {
			out = append(out, SuitOdds{Suit: s, Count: p.SuitCounts[s], Probability: prob})
		}
	}
	return out
}

// RankList returns the ranks with cards left, in display order
func (p Probabilities) RankList() []RankOdds {
	out := make([]RankOdds, 0, len(p.Ranks))
	for _, r := range deck.Ranks {
		if prob, ok := p.Ranks[r]; ok {
			out = append(out, RankOdds{Rank: r, Count: p.RankCounts[r], Probability: prob})
		}
	}
	return out
}

// CardList returns the remaining cards in suit then rank order. When limit is
// positive at most limit entries are returned.
func (p Probabilities) CardList(limit int) []CardOdds {
	out := make([]CardOdds, 0, len(p.Cards))
	for _, s := range deck.Suits {
		for _, r := range deck.Ranks {
			c := deck.NewCard(s, r)
			if prob, ok := p.Cards[c]; ok {
				out = append(out, CardOdds{Card: c, Probability: prob})
				if limit > 0 && len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}
