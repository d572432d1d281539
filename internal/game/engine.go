package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/cards"
)

// BidEntry is one action of the bidding sequence
type BidEntry struct {
	Seat   int    `json:"seat"`
	Action Action `json:"action"`
}

// Engine runs a match of 29. It is owned by a single driver and must not
// be shared between goroutines.
type Engine struct {
	rng         *rand.Rand
	logger      *log.Logger
	redeal      RedealPolicy
	logLifetime LogLifetime
	firstDealer int
	deckOrder   []cards.Card

	deck    *cards.Deck
	players [NumPlayers]*Player

	// Round state
	phase         Phase
	round         int
	redeals       int
	dealer        int
	current       int
	bidHistory    []BidEntry
	bidValue      int
	bidWinner     int
	trump         cards.Suit
	trumpChosen   bool
	trumpRevealed bool
	trick         []PlayedCard
	trickLeader   int
	completed     []CompletedTrick
	dealt         [NumPlayers][]cards.Card

	// Match state
	matchScores [2]int

	logs []string
}

// ResetMatch zeroes the match scores, clears the log and restarts dealer
// rotation. The next InitRound starts round one of a new match.
func (e *Engine) ResetMatch() {
	e.matchScores = [2]int{}
	e.logs = nil
	e.round = 0
	e.phase = PhaseDeal
	// InitRound rotates before dealing, so start one seat behind.
	e.dealer = (e.firstDealer + NumPlayers - 1) % NumPlayers
	e.current = NextSeat(e.dealer)
	e.trickLeader = e.current
	e.bidValue = InitialBidValue
	e.bidWinner = NoSeat
	for _, p := range e.players {
		p.reset()
	}
}

// InitRound rotates the dealer, shuffles and deals the first four cards to
// every seat and opens bidding. It returns the view of the seat to act.
// A round in progress is abandoned without affecting match scores.
func (e *Engine) InitRound() (State, int, error) {
	if team, ok := e.MatchWinner(); ok {
		return State{}, NoSeat, fmt.Errorf("%w: team %d has won %d-%d", ErrMatchOver, team, e.matchScores[0], e.matchScores[1])
	}
	if e.logLifetime == LogPerRound {
		e.logs = nil
	}
	e.round++
	e.redeals = 0
	e.deal()
	return e.StateFor(e.current), e.current, nil
}

// deal runs the transient deal phase and leaves the engine in bidding.
func (e *Engine) deal() {
	e.phase = PhaseDeal
	e.dealer = NextSeat(e.dealer)
	e.logf("--- New Round Started --- Dealer is Player %d ---", e.dealer)
	e.logf("Current Match Score: Team 0 (0,2): %d, Team 1 (1,3): %d", e.matchScores[0], e.matchScores[1])

	for _, p := range e.players {
		p.reset()
	}
	e.dealt = [NumPlayers][]cards.Card{}
	e.shuffle()
	e.dealEach(CardsPerDeal)

	e.bidHistory = nil
	e.bidValue = InitialBidValue
	e.bidWinner = NoSeat
	e.trump = 0
	e.trumpChosen = false
	e.trumpRevealed = false
	e.trick = nil
	e.completed = nil
	e.current = NextSeat(e.dealer)
	e.trickLeader = e.current
	e.phase = PhaseBidding

	e.logger.Debug("Dealt round", "round", e.round, "dealer", e.dealer, "redeals", e.redeals)
}

func (e *Engine) shuffle() {
	if e.deckOrder != nil {
		d, err := cards.NewStackedDeck(e.deckOrder)
		if err != nil {
			panic(fmt.Errorf("engine: stacked deck: %w", err))
		}
		e.deck = d
		return
	}
	e.deck.Shuffle()
}

// dealEach gives n cards to every seat starting left of the dealer.
func (e *Engine) dealEach(n int) {
	for i := range NumPlayers {
		seat := (e.dealer + 1 + i) % NumPlayers
		dealt, err := e.deck.Deal(n)
		if err != nil {
			panic(fmt.Errorf("engine: dealing to player %d: %w", seat, err))
		}
		e.players[seat].receive(dealt)
		e.dealt[seat] = append(e.dealt[seat], dealt...)
	}
}

// ApplyAction validates and applies the action of the seat to act and
// returns the view of the next seat to act. A rejected action leaves the
// engine unchanged.
func (e *Engine) ApplyAction(a Action) (State, int, error) {
	switch e.phase {
	case PhaseBidding, PhaseTrumpSelection, PhasePlay:
	default:
		return e.StateFor(e.current), e.current,
			fmt.Errorf("%w: cannot apply %s during %s", ErrInvalidPhase, a, e.phase)
	}

	a = a.canonical()
	if reason := e.illegalReason(a); reason != "" {
		err := &IllegalActionError{Seat: e.current, Phase: e.phase, Action: a, Reason: reason}
		e.logger.Debug("Rejected action", "player", e.current, "action", a, "reason", reason)
		return e.StateFor(e.current), e.current, err
	}

	switch e.phase {
	case PhaseBidding:
		e.applyBid(a)
	case PhaseTrumpSelection:
		e.applyTrump(a)
	case PhasePlay:
		e.applyPlay(a)
	}
	return e.StateFor(e.current), e.current, nil
}

func (e *Engine) applyBid(a Action) {
	seat := e.current
	e.bidHistory = append(e.bidHistory, BidEntry{Seat: seat, Action: a})
	if a.Kind == ActionBid {
		e.bidValue = a.Bid
		e.bidWinner = seat
		e.logf("Player %d bids %d.", seat, a.Bid)
	} else {
		e.logf("Player %d passes.", seat)
	}

	n := len(e.bidHistory)
	if n == NumPlayers && e.bidWinner == NoSeat {
		e.logf("All players passed. Redealing for a new round.")
		e.redeals++
		if e.redeal == RedealSameDealer {
			e.dealer = (e.dealer + NumPlayers - 1) % NumPlayers
		}
		e.deal()
		return
	}

	if n >= NumPlayers && e.bidWinner != NoSeat && lastPasses(e.bidHistory, NumPlayers-1) {
		e.phase = PhaseTrumpSelection
		e.current = e.bidWinner
		e.logf("Bidding finished. Player %d wins with a bid of %d.", e.bidWinner, e.bidValue)
		return
	}

	e.current = NextSeat(seat)
}

func lastPasses(history []BidEntry, n int) bool {
	if len(history) < n {
		return false
	}
	for _, b := range history[len(history)-n:] {
		if b.Action.Kind != ActionPass {
			return false
		}
	}
	return true
}

func (e *Engine) applyTrump(a Action) {
	e.trump = a.Suit
	e.trumpChosen = true
	e.trumpRevealed = false
	e.logf("Player %d chose the trump suit (secretly).", e.current)
	e.logger.Debug("Trump chosen", "player", e.current, "trump", a.Suit)

	e.dealEach(CardsPerDeal)
	e.phase = PhasePlay
	e.current = e.trickLeader
}

func (e *Engine) applyPlay(a Action) {
	seat := e.current
	p := e.players[seat]

	// Failing to follow suit exposes trump; it is not a choice.
	if !e.trumpRevealed && len(e.trick) > 0 {
		led := e.trick[0].Card.Suit
		if !cards.HasSuit(p.hand, led) {
			e.trumpRevealed = true
			e.logf("Player %d cannot follow suit. Trump is revealed: %s", seat, e.trump)
		}
	}

	p.remove(a.Card)
	e.trick = append(e.trick, PlayedCard{Seat: seat, Card: a.Card})
	e.logf("Player %d plays %s.", seat, a.Card)

	if len(e.trick) == NumPlayers {
		winner := ResolveTrick(e.trick, e.trump, e.trumpRevealed)
		taken := trickCards(e.trick)
		e.logf("Trick: %s -> Winner: P%d", formatTrick(e.trick), winner)
		e.players[winner].take(taken)
		e.completed = append(e.completed, CompletedTrick{
			Leader: e.trickLeader,
			Plays:  slices.Clone(e.trick),
			Winner: winner,
			Points: cards.TotalPoints(taken),
		})
		e.trick = nil
		e.trickLeader = winner
		e.current = winner
	} else {
		e.current = NextSeat(seat)
	}

	if e.handsEmpty() {
		e.finishRound()
	}
}

func (e *Engine) handsEmpty() bool {
	for _, p := range e.players {
		if len(p.hand) > 0 {
			return false
		}
	}
	return true
}

// finishRound scores the round, updates match scores once and enters end.
func (e *Engine) finishRound() {
	e.phase = PhaseEnd
	score := scoreRound(e.players, e.bidWinner, e.bidValue)
	if !score.hasBid {
		e.logf("Round ended before a bid was made. No score change.")
		return
	}

	delta := score.matchDelta()
	for team := range e.matchScores {
		e.matchScores[team] += delta[team]
	}

	points := score.teamPoints[score.biddingTeam]
	if score.successful {
		e.logf("Team %d fulfilled their bid of %d by scoring %d. They WIN 1 point.", score.biddingTeam, e.bidValue, points)
	} else {
		e.logf("Team %d FAILED their bid of %d by scoring %d. They LOSE 1 point.", score.biddingTeam, e.bidValue, points)
	}
	e.logf("Match Score: Team 0: %d | Team 1: %d", e.matchScores[0], e.matchScores[1])
	if team, ok := e.MatchWinner(); ok {
		e.logf("Match over. Team %d wins the match!", team)
	}

	e.logger.Debug("Round scored",
		"round", e.round,
		"bid", e.bidValue,
		"bidder", e.bidWinner,
		"successful", score.successful,
		"team0", score.teamPoints[0],
		"team1", score.teamPoints[1])
}

func (e *Engine) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.logs = append(e.logs, msg)
	e.logger.Debug(msg)
}

// IsRoundOver reports whether the current round has reached the end phase
func (e *Engine) IsRoundOver() bool {
	return e.phase == PhaseEnd
}

// MatchWinner returns the team that has won the match, if any
func (e *Engine) MatchWinner() (int, bool) {
	return matchWinner(e.matchScores)
}

// MatchScores returns both teams' match scores
func (e *Engine) MatchScores() [2]int {
	return e.matchScores
}

// Phase returns the current phase
func (e *Engine) Phase() Phase {
	return e.phase
}

// CurrentPlayer returns the seat expected to act next
func (e *Engine) CurrentPlayer() int {
	return e.current
}

// Dealer returns the dealer of the current round
func (e *Engine) Dealer() int {
	return e.dealer
}

// Round returns the number of rounds started in this match
func (e *Engine) Round() int {
	return e.round
}

// TrumpRevealed reports whether trump has been exposed this round
func (e *Engine) TrumpRevealed() bool {
	return e.trumpRevealed
}

// GameLog returns a copy of the human-readable game log
func (e *Engine) GameLog() []string {
	return slices.Clone(e.logs)
}

// RoundSummary returns the outcome of the current round. Before the end
// phase it reports the standing so far with Complete set to false.
func (e *Engine) RoundSummary() RoundSummary {
	score := scoreRound(e.players, e.bidWinner, e.bidValue)
	s := RoundSummary{
		Round:         e.round,
		Dealer:        e.dealer,
		BidValue:      e.bidValue,
		BidWinner:     e.bidWinner,
		BiddingTeam:   score.biddingTeam,
		TrumpRevealed: e.trumpRevealed,
		Successful:    score.successful,
		TeamPoints:    score.teamPoints,
		Redeals:       e.redeals,
		Complete:      e.phase == PhaseEnd,
	}
	if e.trumpChosen {
		trump := e.trump
		s.Trump = &trump
	}
	return s
}

// Payoffs returns the per-seat reward of the finished round: +1 for the
// winning side and -1 for the losing side, all zero when no bid was made.
// Before the round ends every payoff is zero.
func (e *Engine) Payoffs() [NumPlayers]float64 {
	if e.phase != PhaseEnd {
		return [NumPlayers]float64{}
	}
	return scoreRound(e.players, e.bidWinner, e.bidValue).payoffs()
}

// CardCount accounts for every card of the deck
type CardCount struct {
	InHands        int
	InTricks       int
	InCurrentTrick int
	InDeck         int
}

// Total returns the number of cards accounted for
func (c CardCount) Total() int {
	return c.InHands + c.InTricks + c.InCurrentTrick + c.InDeck
}

// CardsInPlay reports where the 32 cards currently are.
func (e *Engine) CardsInPlay() CardCount {
	var c CardCount
	for _, p := range e.players {
		c.InHands += len(p.hand)
		c.InTricks += p.cardsTaken()
	}
	c.InCurrentTrick = len(e.trick)
	c.InDeck = e.deck.CardsRemaining()
	return c
}
