// Package env wraps a game.Engine as a turn-based reinforcement learning
// environment: actions are flat ids in [0, game.NumActions), every step
// exposes a legal-action mask, and Run plays a round with one agent per
// seat and returns per-seat trajectories and payoffs.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/game"
)

var (
	// ErrNoAgents is returned by Run before SetAgents is called.
	ErrNoAgents = errors.New("env: agents not set")
	// ErrStepLimit is returned by Run when a round exceeds the step limit,
	// which only happens when agents keep passing through redeals.
	ErrStepLimit = errors.New("env: step limit exceeded")
)

// Mask marks the legal action ids
type Mask [game.NumActions]bool

// IDs returns the set ids in ascending order.
func (m Mask) IDs() []int {
	var ids []int
	for id, ok := range m {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Transition is one decision of a seat: the state it saw and the action
// it took.
type Transition struct {
	State    game.State  `json:"state"`
	Action   game.Action `json:"action"`
	ActionID int         `json:"action_id"`
}

// Trajectory is one seat's decisions in a round followed by its payoff.
type Trajectory struct {
	Seat        int          `json:"seat"`
	Transitions []Transition `json:"transitions"`
	Payoff      float64      `json:"payoff"`
}

// DetailedResult is the outcome of a finished round with its game log
type DetailedResult struct {
	Summary game.RoundSummary        `json:"summary"`
	Payoffs [game.NumPlayers]float64 `json:"payoffs"`
	Log     []string                 `json:"log"`
}

// Env is a single-threaded environment around one engine.
type Env struct {
	engine   *game.Engine
	agents   [game.NumPlayers]agent.Agent
	ready    bool
	maxSteps int
	logger   *log.Logger
}

// New creates an environment around a fresh engine.
func New(logger *log.Logger, opts ...game.Option) *Env {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts = append([]game.Option{game.WithLogger(logger)}, opts...)
	return &Env{
		engine: game.New(opts...),
		logger: logger.WithPrefix("env"),
	}
}

// Engine exposes the wrapped engine for read access.
func (e *Env) Engine() *game.Engine {
	return e.engine
}

// SetAgents assigns the agent for every seat.
func (e *Env) SetAgents(agents [game.NumPlayers]agent.Agent) {
	e.agents = agents
	e.ready = true
}

// SetMaxSteps bounds the decisions Run takes in one round. Zero means no
// limit.
func (e *Env) SetMaxSteps(n int) {
	e.maxSteps = n
}

// NumActions is the size of the flat action space
func (e *Env) NumActions() int {
	return game.NumActions
}

// Reset starts a new round, starting a new match first if the last one has
// been decided. It returns the view of the seat to act.
func (e *Env) Reset() (game.State, int, error) {
	if _, over := e.engine.MatchWinner(); over {
		e.logger.Debug("Match decided, starting a new one", "scores", e.engine.MatchScores())
		e.engine.ResetMatch()
	}
	return e.engine.InitRound()
}

// Step applies the action with the given flat id for the current seat.
func (e *Env) Step(id int) (game.State, int, error) {
	a, err := game.ActionFromID(id)
	if err != nil {
		return e.engine.StateFor(e.engine.CurrentPlayer()), e.engine.CurrentPlayer(), err
	}
	return e.engine.ApplyAction(a)
}

// IsOver reports whether the current round has finished
func (e *Env) IsOver() bool {
	return e.engine.IsRoundOver()
}

// CurrentPlayer returns the seat to act
func (e *Env) CurrentPlayer() int {
	return e.engine.CurrentPlayer()
}

// State returns the view of a seat
func (e *Env) State(seat int) game.State {
	return e.engine.StateFor(seat)
}

// ActionMask marks the ids legal for the current seat.
func (e *Env) ActionMask() Mask {
	var m Mask
	for _, id := range e.engine.LegalIDs() {
		m[id] = true
	}
	return m
}

// LegalIDs returns the ids legal for the current seat, ascending.
func (e *Env) LegalIDs() []int {
	return e.engine.LegalIDs()
}

// Payoffs returns the per-seat payoffs of the finished round
func (e *Env) Payoffs() [game.NumPlayers]float64 {
	return e.engine.Payoffs()
}

// DetailedResult returns the round summary, payoffs and game log.
func (e *Env) DetailedResult() DetailedResult {
	return DetailedResult{
		Summary: e.engine.RoundSummary(),
		Payoffs: e.engine.Payoffs(),
		Log:     e.engine.GameLog(),
	}
}

// Run resets and plays one round to completion, asking the agent of each
// seat to act in turn.
func (e *Env) Run(ctx context.Context) ([game.NumPlayers]Trajectory, [game.NumPlayers]float64, error) {
	var trajectories [game.NumPlayers]Trajectory
	var payoffs [game.NumPlayers]float64
	if !e.ready {
		return trajectories, payoffs, ErrNoAgents
	}
	for seat := range trajectories {
		trajectories[seat].Seat = seat
	}

	state, player, err := e.Reset()
	if err != nil {
		return trajectories, payoffs, err
	}

	for steps := 0; !e.engine.IsRoundOver(); steps++ {
		if err := ctx.Err(); err != nil {
			return trajectories, payoffs, err
		}
		if e.maxSteps > 0 && steps >= e.maxSteps {
			return trajectories, payoffs, fmt.Errorf("%w: %d steps in round %d", ErrStepLimit, steps, e.engine.Round())
		}

		decision, err := e.agents[player].MakeDecision(state)
		if err != nil {
			return trajectories, payoffs, fmt.Errorf("seat %d (%s): %w", player, e.agents[player].Name(), err)
		}
		trajectories[player].Transitions = append(trajectories[player].Transitions, Transition{
			State:    state,
			Action:   decision.Action,
			ActionID: decision.Action.ID(),
		})

		next, nextPlayer, err := e.engine.ApplyAction(decision.Action)
		if err != nil {
			return trajectories, payoffs, fmt.Errorf("seat %d (%s): %w", player, e.agents[player].Name(), err)
		}
		state, player = next, nextPlayer
	}

	payoffs = e.engine.Payoffs()
	for seat := range trajectories {
		trajectories[seat].Payoff = payoffs[seat]
	}
	return trajectories, payoffs, nil
}
