// Package cards models the 32-card deck used by the game of 29.
//
// Ranks are declared in trick order, highest first, so a lower Rank value
// beats a higher one. Every card has a dense identifier in [0, 32) that is
// stable across the module and doubles as the card's action id.
package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in the deck.
const NumSuits = 4

// Suits lists every suit in id order.
var Suits = [NumSuits]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the single-letter code of a suit ("S", "H", "D", "C").
func (s Suit) String() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// Symbol returns the unicode symbol of a suit
func (s Suit) Symbol() string {
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

// Name returns the English name of a suit
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "Spades"
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	default:
		return "Unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// ParseSuit parses a suit letter or name, case-insensitively.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SPADES", "♠":
		return Spades, nil
	case "H", "HEARTS", "♥":
		return Hearts, nil
	case "D", "DIAMONDS", "♦":
		return Diamonds, nil
	case "C", "CLUBS", "♣":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// MarshalText encodes a suit as its letter code.
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a suit from its letter code or name.
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card rank. Ranks are ordered by trick strength:
// Jack is the strongest and Seven the weakest.
type Rank int

const (
	Jack Rank = iota
	Nine
	Ace
	Ten
	King
	Queen
	Eight
	Seven
)

// NumRanks is the number of ranks per suit.
const NumRanks = 8

// Ranks lists every rank from strongest to weakest.
var Ranks = [NumRanks]Rank{Jack, Nine, Ace, Ten, King, Queen, Eight, Seven}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Nine:
		return "9"
	case Ace:
		return "A"
	case Ten:
		return "10"
	case King:
		return "K"
	case Queen:
		return "Q"
	case Eight:
		return "8"
	case Seven:
		return "7"
	default:
		return "?"
	}
}

// Points returns the point value of the rank: J=3, 9=2, A=1, 10=1, rest 0.
func (r Rank) Points() int {
	switch r {
	case Jack:
		return 3
	case Nine:
		return 2
	case Ace, Ten:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether r wins against o in the same suit.
func (r Rank) Outranks(o Rank) bool {
	return r < o
}

// Valid reports whether r is one of the eight ranks.
func (r Rank) Valid() bool {
	return r >= Jack && r <= Seven
}

// ParseRank parses a rank code. "T" is accepted for ten.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "J":
		return Jack, nil
	case "9":
		return Nine, nil
	case "A":
		return Ace, nil
	case "10", "T":
		return Ten, nil
	case "K":
		return King, nil
	case "Q":
		return Queen, nil
	case "8":
		return Eight, nil
	case "7":
		return Seven, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
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

// NumCards is the size of a full deck.
const NumCards = NumSuits * NumRanks

// ID returns the dense identifier of the card: suit*8 + rank.
func (c Card) ID() int {
	return int(c.Suit)*NumRanks + int(c.Rank)
}

// FromID returns the card with the given dense identifier.
func FromID(id int) (Card, error) {
	if id < 0 || id >= NumCards {
		return Card{}, fmt.Errorf("card id %d out of range [0,%d)", id, NumCards)
	}
	return Card{Suit: Suit(id / NumRanks), Rank: Rank(id % NumRanks)}, nil
}

// Points returns the point value of the card.
func (c Card) Points() int {
	return c.Rank.Points()
}

// Valid reports whether both suit and rank are in range.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// String returns the suit-first code of a card (e.g., "SJ", "H10").
func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}

// Pretty returns the card with a suit symbol (e.g., "J♠").
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// Parse parses a card code such as "SJ", "h10" or "DT".
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit, err := ParseSuit(s[:1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	rank, err := ParseRank(s[1:])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(suit, rank), nil
}

// MustParse is like Parse but panics on error. Intended for tests and tables.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MustParseAll parses a whitespace separated list of card codes.
func MustParseAll(s string) []Card {
	fields := strings.Fields(s)
	out := make([]Card, len(fields))
	for i, f := range fields {
		out[i] = MustParse(f)
	}
	return out
}

// MarshalText encodes the card as its code.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %d/%d", int(c.Suit), int(c.Rank))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its code.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
