package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents the 32-card deck
type Deck struct {
	cards [NumCards]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a new deck in id order. Call Shuffle before dealing.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.fill()
	return d
}

// NewStackedDeck creates a deck that deals the given cards in order.
// The cards must be a permutation of the full deck.
func NewStackedDeck(order []Card) (*Deck, error) {
	if len(order) != NumCards {
		return nil, fmt.Errorf("stacked deck needs %d cards, got %d", NumCards, len(order))
	}
	var seen [NumCards]bool
	d := &Deck{}
	for i, c := range order {
		if !c.Valid() {
			return nil, fmt.Errorf("stacked deck: invalid card at %d", i)
		}
		if seen[c.ID()] {
			return nil, fmt.Errorf("stacked deck: duplicate card %s", c)
		}
		seen[c.ID()] = true
		d.cards[i] = c
	}
	return d, nil
}

func (d *Deck) fill() {
	d.next = 0
	i := 0
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards[i] = NewCard(suit, rank)
			i++
		}
	}
}

// Shuffle restores all 32 cards and shuffles them using Fisher-Yates.
func (d *Deck) Shuffle() {
	d.fill()
	if d.rng == nil {
		panic("cards: shuffle requires an rng")
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the next n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, d.CardsRemaining())
	}
	out := slices.Clone(d.cards[d.next : d.next+n])
	d.next += n
	return out, nil
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// Full returns every card of the deck in id order.
func Full() []Card {
	out := make([]Card, 0, NumCards)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			out = append(out, NewCard(suit, rank))
		}
	}
	return out
}

// TotalPoints sums the point values of the given cards.
func TotalPoints(cs []Card) int {
	total := 0
	for _, c := range cs {
		total += c.Points()
	}
	return total
}

// Sort orders cards by id in place (suit S,H,D,C then trick rank).
func Sort(cs []Card) {
	slices.SortFunc(cs, func(a, b Card) int { return a.ID() - b.ID() })
}

// OfSuit returns the cards of the given suit, preserving order.
func OfSuit(cs []Card, suit Suit) []Card {
	var out []Card
	for _, c := range cs {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

// HasSuit reports whether any card is of the given suit.
func HasSuit(cs []Card, suit Suit) bool {
	return slices.ContainsFunc(cs, func(c Card) bool { return c.Suit == suit })
}
