package deck

// Size is the number of cards in a full deck
const Size = NumSuits * NumRanks

// RandSource is the randomness a draw needs. *math/rand/v2.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Deck is the set of cards not yet drawn, kept per suit in rank order.
// A suit with no ranks left counts as absent.
type Deck struct {
	suits [NumSuits][]Rank
	count int
}

// New creates a full 36-card deck
func New() *Deck {
	d := &Deck{}
	d.Reset()
	return d
}

// Reset restores the deck to all 36 cards
func (d *Deck) Reset() {
	for i := range d.suits {
		ranks := make([]Rank, NumRanks)
		copy(ranks, Ranks[:])
		d.suits[i] = ranks
	}
	d.count = Size
}

// Draw removes one card: a uniformly random suit among those still holding
// cards, then a uniformly random rank within that suit. It reports false and
// leaves the deck untouched when the deck is empty.
func (d *Deck) Draw(rng RandSource) (Card, bool) {
	available := d.Suits()
	if len(available) == 0 {
		return Card{}, false
	}

	suit := available[rng.IntN(len(available))]
	ranks := d.suits[suit]
	i := rng.IntN(len(ranks))
	card := NewCard(suit, ranks[i])

	d.remove(suit, i)
	return card, true
}

// Remove takes a specific card out of the deck, reporting whether it was present.
func (d *Deck) Remove(card Card) bool {
	if !card.Suit.valid() {
		return false
	}
	for i, r := range d.suits[card.Suit] {
		if r == card.Rank {
			d.remove(card.Suit, i)
			return true
		}
	}
	return false
}

func (d *Deck) remove(suit Suit, i int) {
	ranks := d.suits[suit]
	next := make([]Rank, 0, len(ranks)-1)
	next = append(next, ranks[:i]...)
	next = append(next, ranks[i+1:]...)
	if len(next) == 0 {
		next = nil
	}
	d.suits[suit] = next
	d.count--
}

// Suits returns the suits that still hold at least one card, in display order
func (d *Deck) Suits() []Suit {
	out := make([]Suit, 0, NumSuits)
	for _, s := range Suits {
		if len(d.suits[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether the suit still holds cards
func (d *Deck) Has(suit Suit) bool {
	return suit.valid() && len(d.suits[suit]) > 0
}

// Ranks returns a copy of the remaining ranks of a suit, nil when the suit is exhausted
func (d *Deck) Ranks(suit Suit) []Rank {
	if !d.Has(suit) {
		return nil
	}
	out := make([]Rank, len(d.suits[suit]))
	copy(out, d.suits[suit])
	return out
}

// Count returns the number of cards left in a suit
func (d *Deck) Count(suit Suit) int {
	if !suit.valid() {
		return 0
	}
	return len(d.suits[suit])
}

// Contains reports whether the card has not been drawn yet
func (d *Deck) Contains(card Card) bool {
	if !card.Suit.valid() {
		return false
	}
	for _, r := range d.suits[card.Suit] {
		if r == card.Rank {
			return true
		}
	}
	return false
}

// Cards lists the remaining cards in suit then rank order
func (d *Deck) Cards() []Card {
	out := make([]Card, 0, d.count)
	for _, s := range Suits {
		for _, r := range d.suits[s] {
			out = append(out, NewCard(s, r))
		}
	}
	return out
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return d.count
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return d.count == 0
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	c := &Deck{count: d.count}
	for i, ranks := range d.suits {
		if len(ranks) > 0 {
			c.suits[i] = append([]Rank(nil), ranks...)
		}
	}
	return c
}

// Map returns the deck as suit → remaining ranks, omitting exhausted suits
func (d *Deck) Map() map[Suit][]Rank {
	out := make(map[Suit][]Rank, NumSuits)
	for _, s := range d.Suits() {
		out[s] = d.Ranks(s)
	}
	return out
}
