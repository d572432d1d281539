// Package game implements the rules engine for the Bangladeshi variant of the
// trick-taking card game 29.
//
// The main type is Engine, which owns the state of a match between two fixed
// partnerships (seats 0 and 2 against seats 1 and 3) and advances each round
// through dealing, bidding, secret trump selection and eight tricks of play.
//
// # Basic Usage
//
// A driver starts a round and feeds actions for whichever seat is to act:
//
//	e := game.New(game.WithSeed(42))
//	state, seat, err := e.InitRound()
//	for !e.IsRoundOver() {
//	    action := agents[seat].Act(state)
//	    state, seat, err = e.ApplyAction(action)
//	}
//	summary := e.RoundSummary()
//
// Illegal actions are rejected with an error wrapping ErrIllegalAction and
// leave the engine untouched, so a driver can simply ask again.
//
// # Information Hiding
//
// StateFor returns a per-seat view that contains only that seat's hand and
// withholds the trump suit until a player fails to follow suit. Slices in a
// view are copies; mutating them never affects the engine.
//
// # Actions
//
// Action is a tagged value (pass, bid, trump choice or card play). Every
// action also has a dense integer id in [0, NumActions) so agent-facing layers
// can present a single flat discrete action space:
//
//	0..31   card plays (cards.Card.ID)
//	32..45  bids 16..29
//	46      pass
//	47..50  trump S, H, D, C
//
// # Deterministic Testing
//
// Shuffling is the only randomness. Use WithSeed or WithRNG for reproducible
// deals, or WithDeckOrder to stack the deck explicitly.
//
// The engine is not safe for concurrent use. Run independent engines for
// parallel throughput.
package game
