package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in the deck
const NumSuits = 4

// Suits lists every suit in display order
var Suits = [NumSuits]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

func (s Suit) valid() bool {
	return s >= Spades && s <= Clubs
}

// MarshalText lets suits be used as JSON object keys.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid suit: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a suit symbol.
func (s *Suit) UnmarshalText(text []byte) error {
	suit, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// ParseSuit parses one of ♠ ♥ ♦ ♣.
func ParseSuit(str string) (Suit, error) {
	for _, s := range Suits {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("invalid suit: %q", str)
}

// Rank represents a card rank. Only six through ace exist in a 36-card deck.
type Rank int

const (
	Six Rank = iota + 6
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// NumRanks is the number of ranks per suit
const NumRanks = 9

// Ranks lists every rank in display order
var Ranks = [NumRanks]Rank{Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

func (r Rank) valid() bool {
	return r >= Six && r <= Ace
}

// index returns the rank's position in Ranks.
func (r Rank) index() int {
	return int(r - Six)
}

// MarshalText lets ranks be used as JSON object keys.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.valid() {
		return nil, fmt.Errorf("invalid rank: %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses a rank symbol.
func (r *Rank) UnmarshalText(text []byte) error {
	rank, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = rank
	return nil
}

// ParseRank parses one of 6 7 8 9 10 J Q K A.
func ParseRank(str string) (Rank, error) {
	for _, r := range Ranks {
		if r.String() == str {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid rank: %q", str)
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the suit followed by the rank (e.g., "♠10")
func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// MarshalText encodes the card as its display string.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Suit.valid() || !c.Rank.valid() {
		return nil, fmt.Errorf("invalid card: suit=%d rank=%d", int(c.Suit), int(c.Rank))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a card such as "♥Q".
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses a suit symbol followed by a rank, e.g. "♦10".
func ParseCard(str string) (Card, error) {
	for _, s := range Suits {
		sym := s.String()
		if len(str) > len(sym) && str[:len(sym)] == sym {
			rank, err := ParseRank(str[len(sym):])
			if err != nil {
				return Card{}, fmt.Errorf("invalid card %q: %w", str, err)
			}
			return NewCard(s, rank), nil
		}
	}
	return Card{}, fmt.Errorf("invalid card: %q", str)
}
