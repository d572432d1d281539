package game

import (
	"slices"

	"github.com/lox/twentynine/cards"
)

// State is what one seat may observe. It never carries another seat's hand
// or the trump suit before it is revealed.
type State struct {
	Seat          int             `json:"seat"`
	Hand          []cards.Card    `json:"hand"`
	LegalActions  []Action        `json:"legal_actions"`
	Phase         Phase           `json:"phase"`
	Dealer        int             `json:"dealer"`
	CurrentPlayer int             `json:"current_player"`
	BidValue      int             `json:"bid_value"`
	BidWinner     int             `json:"bid_winner"`
	BidHistory    []BidEntry      `json:"bid_history"`
	Trick         []PlayedCard    `json:"trick"`
	TrickLeader   int             `json:"trick_leader"`
	TrumpSuit     *cards.Suit     `json:"trump_suit"`
	TrumpRevealed bool            `json:"trump_revealed"`
	MatchScores   [2]int          `json:"match_scores"`
	HandSizes     [NumPlayers]int `json:"hand_sizes"`
}

// ToAct reports whether the viewing seat is the one expected to act.
func (s State) ToAct() bool {
	return s.Seat == s.CurrentPlayer && len(s.LegalActions) > 0
}

// LedSuit returns the suit led in the current trick
func (s State) LedSuit() (cards.Suit, bool) {
	if len(s.Trick) == 0 {
		return 0, false
	}
	return s.Trick[0].Card.Suit, true
}

// StateFor builds the view of the given seat. Legal actions are included
// only when that seat is to act.
func (e *Engine) StateFor(seat int) State {
	if seat < 0 || seat >= NumPlayers {
		panic("seat out of range")
	}
	s := State{
		Seat:          seat,
		Hand:          e.players[seat].Hand(),
		LegalActions:  []Action{},
		Phase:         e.phase,
		Dealer:        e.dealer,
		CurrentPlayer: e.current,
		BidValue:      e.bidValue,
		BidWinner:     e.bidWinner,
		BidHistory:    slices.Clone(e.bidHistory),
		Trick:         slices.Clone(e.trick),
		TrickLeader:   e.trickLeader,
		TrumpRevealed: e.trumpRevealed,
		MatchScores:   e.matchScores,
	}
	if s.BidHistory == nil {
		s.BidHistory = []BidEntry{}
	}
	if s.Trick == nil {
		s.Trick = []PlayedCard{}
	}
	if seat == e.current {
		s.LegalActions = e.LegalActions()
		if s.LegalActions == nil {
			s.LegalActions = []Action{}
		}
	}
	if e.trumpRevealed {
		trump := e.trump
		s.TrumpSuit = &trump
	}
	for i, p := range e.players {
		s.HandSizes[i] = p.HandSize()
	}
	return s
}
