package game

import (
	"fmt"
	"slices"

	"github.com/lox/twentynine/cards"
)

// LegalActions returns the actions the current seat may take, in id order.
// The set is derived from the current state alone. It is empty outside the
// bidding, trump selection and play phases.
func (e *Engine) LegalActions() []Action {
	switch e.phase {
	case PhaseBidding:
		out := make([]Action, 0, MaxBid-e.bidValue+1)
		for v := max(e.bidValue+1, MinBid); v <= MaxBid; v++ {
			out = append(out, Bid(v))
		}
		return append(out, Pass())
	case PhaseTrumpSelection:
		out := make([]Action, 0, cards.NumSuits)
		for _, s := range cards.Suits {
			out = append(out, ChooseTrump(s))
		}
		return out
	case PhasePlay:
		playable := e.playableCards(e.current)
		out := make([]Action, len(playable))
		for i, c := range playable {
			out[i] = Play(c)
		}
		return out
	}
	return nil
}

// LegalIDs returns the flat ids of LegalActions, ascending.
func (e *Engine) LegalIDs() []int {
	legal := e.LegalActions()
	ids := make([]int, len(legal))
	for i, a := range legal {
		ids[i] = a.ID()
	}
	return ids
}

// playableCards applies the follow-suit rules to a seat's hand. The result
// is sorted.
func (e *Engine) playableCards(seat int) []cards.Card {
	hand := e.players[seat].Hand()
	if len(e.trick) == 0 {
		return hand
	}
	led := e.trick[0].Card.Suit
	if follow := cards.OfSuit(hand, led); len(follow) > 0 {
		return follow
	}
	if e.trumpRevealed {
		if trumps := cards.OfSuit(hand, e.trump); len(trumps) > 0 {
			return trumps
		}
	}
	return hand
}

// illegalReason explains why a canonical action is not legal now, or
// returns "" when it is.
func (e *Engine) illegalReason(a Action) string {
	switch e.phase {
	case PhaseBidding:
		switch a.Kind {
		case ActionPass:
			return ""
		case ActionBid:
			if a.Bid < MinBid || a.Bid > MaxBid {
				return fmt.Sprintf("bid must be between %d and %d", MinBid, MaxBid)
			}
			if a.Bid <= e.bidValue {
				return fmt.Sprintf("bid must exceed the current bid of %d", e.bidValue)
			}
			return ""
		}
		return "expected a bid or pass"
	case PhaseTrumpSelection:
		if a.Kind != ActionTrump {
			return "expected a trump suit"
		}
		if !a.Suit.Valid() {
			return "unknown suit"
		}
		return ""
	case PhasePlay:
		if a.Kind != ActionPlay {
			return "expected a card"
		}
		if !a.Card.Valid() {
			return "unknown card"
		}
		if !e.players[e.current].holds(a.Card) {
			return fmt.Sprintf("%s is not in hand", a.Card)
		}
		if !slices.Contains(e.playableCards(e.current), a.Card) {
			if e.trumpRevealed && len(e.trick) > 0 && !cards.HasSuit(e.players[e.current].hand, e.trick[0].Card.Suit) {
				return "must play trump"
			}
			return fmt.Sprintf("must follow %s", e.trick[0].Card.Suit.Name())
		}
		return ""
	}
	return "no actions accepted"
}

// IsLegal reports whether the action is legal for the current seat.
func (e *Engine) IsLegal(a Action) bool {
	return e.illegalReason(a.canonical()) == ""
}
