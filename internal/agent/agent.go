// Package agent provides the players that drive a game.Engine: uniform
// random, first-legal, a rule-of-thumb heuristic bot and Lua-scripted bots.
//
// Agents receive the acting seat's game.State and return a decision. They
// never see another seat's hand or an unrevealed trump, because the state
// view does not carry them.
package agent

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
)

var (
	// ErrNotToAct is returned when an agent is asked to decide for a view
	// whose seat is not the one expected to act.
	ErrNotToAct = errors.New("seat is not to act")
	// ErrInvalidDecision is returned when an agent produces an action that is
	// not in the legal set of the view it was given.
	ErrInvalidDecision = errors.New("invalid decision")
)

// Decision is an agent's chosen action with optional reasoning
type Decision struct {
	Action    game.Action
	Reasoning string
}

// Agent chooses actions for one seat
type Agent interface {
	Name() string
	MakeDecision(state game.State) (Decision, error)
}

// Close releases agents that hold resources, such as Lua interpreters.
func Close(agents ...Agent) error {
	var errs []error
	for _, a := range agents {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", a.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkToAct(state game.State) error {
	if !state.ToAct() {
		return fmt.Errorf("%w: seat %d, current player %d, phase %s",
			ErrNotToAct, state.Seat, state.CurrentPlayer, state.Phase)
	}
	return nil
}

func checkLegal(state game.State, a game.Action) error {
	if !slices.Contains(state.LegalActions, a) {
		return fmt.Errorf("%w: %s is not legal for seat %d during %s", ErrInvalidDecision, a, state.Seat, state.Phase)
	}
	return nil
}

// ThinkingContext accumulates reasoning during decision making
type ThinkingContext struct {
	thoughts []string
}

// AddThought adds a thought to the reasoning
func (tc *ThinkingContext) AddThought(format string, args ...any) {
	tc.thoughts = append(tc.thoughts, fmt.Sprintf(format, args...))
}

// GetThoughts returns the reasoning joined into one line
func (tc *ThinkingContext) GetThoughts() string {
	if len(tc.thoughts) == 0 {
		return "No clear reasoning available"
	}
	return strings.Join(tc.thoughts, ". ")
}

func legalCards(state game.State) []cards.Card {
	var out []cards.Card
	for _, a := range state.LegalActions {
		if a.Kind == game.ActionPlay {
			out = append(out, a.Card)
		}
	}
	return out
}

func partnerOf(seat int) int {
	return (seat + 2) % game.NumPlayers
}
