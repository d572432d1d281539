package game

import (
	"slices"

	"github.com/lox/twentynine/cards"
)

// RoundRecord is the full-information account of a round, for history
// files and the result store. It includes every seat's hand and the secret
// trump, so it must not be shown to agents while the round is running.
type RoundRecord struct {
	Round       int                      `json:"round"`
	Dealer      int                      `json:"dealer"`
	Hands       [NumPlayers][]cards.Card `json:"hands"`
	Bids        []BidEntry               `json:"bids"`
	Trump       *cards.Suit              `json:"trump"`
	Tricks      []CompletedTrick         `json:"tricks"`
	Summary     RoundSummary             `json:"summary"`
	Payoffs     [NumPlayers]float64      `json:"payoffs"`
	MatchScores [2]int                   `json:"match_scores"`
}

// Record snapshots the current round. Hands are the cards dealt to each
// seat, sorted, including the second deal once trump is chosen.
func (e *Engine) Record() RoundRecord {
	r := RoundRecord{
		Round:       e.round,
		Dealer:      e.dealer,
		Bids:        slices.Clone(e.bidHistory),
		Summary:     e.RoundSummary(),
		Payoffs:     e.Payoffs(),
		MatchScores: e.matchScores,
	}
	for seat, dealt := range e.dealt {
		hand := slices.Clone(dealt)
		cards.Sort(hand)
		r.Hands[seat] = hand
	}
	if e.trumpChosen {
		trump := e.trump
		r.Trump = &trump
	}
	r.Tricks = make([]CompletedTrick, len(e.completed))
	for i, t := range e.completed {
		t.Plays = slices.Clone(t.Plays)
		r.Tricks[i] = t
	}
	return r
}
