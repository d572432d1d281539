package agent

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/game"
)

// RandBot makes uniform random legal actions
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	if rng == nil {
		panic("rand bot requires an rng")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Name() string { return "random" }

func (r *RandBot) MakeDecision(state game.State) (Decision, error) {
	if err := checkToAct(state); err != nil {
		return Decision{}, err
	}
	a := state.LegalActions[r.rng.IntN(len(state.LegalActions))]
	r.logger.Debug("Random decision", "seat", state.Seat, "phase", state.Phase, "action", a)
	return Decision{Action: a, Reasoning: "random legal action"}, nil
}

// FirstBot always takes the first legal action. In bidding that is the
// lowest available bid, so a table of FirstBots bids the auction to the top.
type FirstBot struct{}

func (FirstBot) Name() string { return "first" }

func (FirstBot) MakeDecision(state game.State) (Decision, error) {
	if err := checkToAct(state); err != nil {
		return Decision{}, err
	}
	return Decision{Action: state.LegalActions[0], Reasoning: "first legal action"}, nil
}
