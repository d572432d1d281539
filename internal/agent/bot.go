package agent

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
)

// Bot plays by rules of thumb: it bids on high cards and suit length,
// names its longest suit trump, wins tricks as cheaply as it can and feeds
// points to a partner who is already winning.
type Bot struct {
	logger *log.Logger
}

// NewBot creates a new heuristic bot
func NewBot(logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bot{logger: logger.WithPrefix("bot")}
}

func (b *Bot) Name() string { return "bot" }

// MakeDecision analyzes the state and returns a decision with reasoning
func (b *Bot) MakeDecision(state game.State) (Decision, error) {
	if err := checkToAct(state); err != nil {
		return Decision{}, err
	}

	thinking := &ThinkingContext{}
	var a game.Action
	switch state.Phase {
	case game.PhaseBidding:
		a = b.bid(state, thinking)
	case game.PhaseTrumpSelection:
		a = game.ChooseTrump(b.trumpSuit(state.Hand, thinking))
	case game.PhasePlay:
		a = b.play(state, thinking)
	default:
		return Decision{}, fmt.Errorf("%w: no decisions during %s", ErrNotToAct, state.Phase)
	}

	if err := checkLegal(state, a); err != nil {
		return Decision{}, err
	}

	reasoning := thinking.GetThoughts()
	b.logger.Debug("Bot decision made",
		"seat", state.Seat,
		"phase", state.Phase,
		"decision", a,
		"reasoning", reasoning)
	return Decision{Action: a, Reasoning: reasoning}, nil
}

// bidLimit estimates the highest bid the hand supports: the points held
// plus one for every card beyond the first in the longest suit.
func bidLimit(hand []cards.Card) int {
	longest := 0
	for _, s := range cards.Suits {
		longest = max(longest, len(cards.OfSuit(hand, s)))
	}
	limit := game.InitialBidValue + cards.TotalPoints(hand) + max(longest-1, 0)
	return min(limit, game.MaxBid)
}

func (b *Bot) bid(state game.State, thinking *ThinkingContext) game.Action {
	if state.BidWinner == partnerOf(state.Seat) {
		thinking.AddThought("Partner holds the bid at %d", state.BidValue)
		return game.Pass()
	}

	limit := bidLimit(state.Hand)
	next := max(state.BidValue+1, game.MinBid)
	thinking.AddThought("Hand supports bidding to %d", limit)
	if next > limit {
		thinking.AddThought("Next bid %d is too high", next)
		return game.Pass()
	}
	thinking.AddThought("Raising to %d", next)
	return game.Bid(next)
}

// trumpSuit picks the longest suit, breaking ties on points then suit order.
func (b *Bot) trumpSuit(hand []cards.Card, thinking *ThinkingContext) cards.Suit {
	best := cards.Spades
	bestLen, bestPoints := -1, -1
	for _, s := range cards.Suits {
		held := cards.OfSuit(hand, s)
		n, pts := len(held), cards.TotalPoints(held)
		if n > bestLen || (n == bestLen && pts > bestPoints) {
			best, bestLen, bestPoints = s, n, pts
		}
	}
	thinking.AddThought("Longest suit is %s with %d cards", best.Name(), bestLen)
	return best
}

func (b *Bot) play(state game.State, thinking *ThinkingContext) game.Action {
	legal := legalCards(state)
	if len(state.Trick) == 0 {
		return game.Play(b.lead(state.Hand, legal, thinking))
	}

	var trump cards.Suit
	revealed := state.TrumpSuit != nil
	if revealed {
		trump = *state.TrumpSuit
	}

	winner := game.ResolveTrick(state.Trick, trump, revealed)
	if winner == partnerOf(state.Seat) {
		c := richest(legal)
		thinking.AddThought("Partner is winning, adding %s", c)
		return game.Play(c)
	}

	var winning []cards.Card
	for _, c := range legal {
		trial := append(slices.Clone(state.Trick), game.PlayedCard{Seat: state.Seat, Card: c})
		if game.ResolveTrick(trial, trump, revealed) == state.Seat {
			winning = append(winning, c)
		}
	}
	if len(winning) > 0 {
		c := cheapest(winning)
		thinking.AddThought("Taking the trick with %s", c)
		return game.Play(c)
	}

	c := cheapest(legal)
	thinking.AddThought("Cannot win, discarding %s", c)
	return game.Play(c)
}

func (b *Bot) lead(hand, legal []cards.Card, thinking *ThinkingContext) cards.Card {
	for _, c := range legal {
		if c.Rank == cards.Jack {
			thinking.AddThought("Leading the master %s", c)
			return c
		}
	}

	var suit cards.Suit
	longest := 0
	for _, s := range cards.Suits {
		if n := len(cards.OfSuit(hand, s)); n > longest {
			suit, longest = s, n
		}
	}
	if from := cards.OfSuit(legal, suit); len(from) > 0 {
		c := cheapest(from)
		thinking.AddThought("Leading low from %s", suit.Name())
		return c
	}
	return cheapest(legal)
}

// cheapest returns the card giving away the fewest points, weakest first.
func cheapest(cs []cards.Card) cards.Card {
	return slices.MinFunc(cs, func(a, b cards.Card) int {
		if a.Points() != b.Points() {
			return a.Points() - b.Points()
		}
		return int(b.Rank) - int(a.Rank)
	})
}

// richest returns the card worth the most points, weakest first on ties.
func richest(cs []cards.Card) cards.Card {
	return slices.MaxFunc(cs, func(a, b cards.Card) int {
		if a.Points() != b.Points() {
			return a.Points() - b.Points()
		}
		return int(a.Rank) - int(b.Rank)
	})
}
