package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction reports an action outside the current legal set.
	// The engine state is unchanged and the caller may retry.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidPhase reports an operation invoked outside its phase.
	ErrInvalidPhase = errors.New("invalid round state")
	// ErrMatchOver is returned by InitRound once a team has won the match.
	ErrMatchOver = errors.New("match is over")
)

// IllegalActionError describes a rejected action
type IllegalActionError struct {
	Seat   int
	Phase  Phase
	Action Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s by player %d during %s: %s", e.Action, e.Seat, e.Phase, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }
