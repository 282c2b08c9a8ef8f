package session

import (
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/odds"
)

// Snapshot is an immutable view of the session for front-ends
type Snapshot struct {
	Session       string                    `json:"session"`
	Version       uint64                    `json:"version"`
	Remaining     int                       `json:"remaining"`
	Simulating    bool                      `json:"simulating"`
	Deck          map[deck.Suit][]deck.Rank `json:"deck"`
	Drawn         []deck.Card               `json:"drawn"`
	LastDrawn     *deck.Card                `json:"lastDrawn,omitempty"`
	Probabilities odds.Probabilities        `json:"probabilities"`

	deck *deck.Deck
}

// Exhausted reports whether every card has been drawn
func (s Snapshot) Exhausted() bool {
	return s.Remaining == 0
}

// Ranks returns the remaining ranks of a suit in order
func (s Snapshot) Ranks(suit deck.Suit) []deck.Rank {
	return s.Deck[suit]
}

// RemainingDeck returns a private copy of the deck the snapshot was taken from
func (s Snapshot) RemainingDeck() *deck.Deck {
	if s.deck == nil {
		return deck.New()
	}
	return s.deck.Clone()
}
