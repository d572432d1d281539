package game

import (
	"fmt"
	"strings"

	"github.com/lox/twentynine/cards"
)

// PlayedCard is one card of a trick with the seat that played it
type PlayedCard struct {
	Seat int        `json:"seat"`
	Card cards.Card `json:"card"`
}

// CompletedTrick is a resolved trick as kept in the round record
type CompletedTrick struct {
	Leader int          `json:"leader"`
	Plays  []PlayedCard `json:"plays"`
	Winner int          `json:"winner"`
	Points int          `json:"points"`
}

// ResolveTrick returns the seat that wins a trick. A card counts as trump
// only once trump has been revealed; before that every card is ordinary and
// off-suit discards never win.
func ResolveTrick(plays []PlayedCard, trump cards.Suit, revealed bool) int {
	if len(plays) == 0 {
		return NoSeat
	}
	isTrump := func(c cards.Card) bool { return revealed && c.Suit == trump }

	led := plays[0].Card.Suit
	best := plays[0]
	for _, p := range plays[1:] {
		switch {
		case isTrump(best.Card):
			if isTrump(p.Card) && p.Card.Rank.Outranks(best.Card.Rank) {
				best = p
			}
		case isTrump(p.Card):
			best = p
		case p.Card.Suit == led && p.Card.Rank.Outranks(best.Card.Rank):
			best = p
		}
	}
	return best.Seat
}

func trickCards(plays []PlayedCard) []cards.Card {
	out := make([]cards.Card, len(plays))
	for i, p := range plays {
		out[i] = p.Card
	}
	return out
}

func formatTrick(plays []PlayedCard) string {
	parts := make([]string, len(plays))
	for i, p := range plays {
		parts[i] = fmt.Sprintf("P%d:%s", p.Seat, p.Card)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
