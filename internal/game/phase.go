package game

import "fmt"

// Phase is a state of the round state machine
type Phase int

const (
	PhaseDeal Phase = iota
	PhaseBidding
	PhaseTrumpSelection
	PhasePlay
	PhaseEnd
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseDeal:
		return "deal"
	case PhaseBidding:
		return "bidding"
	case PhaseTrumpSelection:
		return "trump_selection"
	case PhasePlay:
		return "play"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseDeal; candidate <= PhaseEnd; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// RedealPolicy decides who deals after a round in which every seat passed.
type RedealPolicy int

const (
	// RedealRotate passes the deal to the next seat, so a void round counts
	// as a dealer rotation.
	RedealRotate RedealPolicy = iota
	// RedealSameDealer has the dealer of the void round deal again.
	RedealSameDealer
)

// String returns the configuration name of the policy
func (p RedealPolicy) String() string {
	switch p {
	case RedealRotate:
		return "rotate"
	case RedealSameDealer:
		return "same"
	default:
		return "unknown"
	}
}

// ParseRedealPolicy parses "rotate" or "same".
func ParseRedealPolicy(s string) (RedealPolicy, error) {
	switch s {
	case "", "rotate":
		return RedealRotate, nil
	case "same", "same_dealer":
		return RedealSameDealer, nil
	}
	return 0, fmt.Errorf("unknown redeal policy %q (want rotate or same)", s)
}

// LogLifetime decides when the game log is cleared.
type LogLifetime int

const (
	// LogPerRound clears the game log at every InitRound.
	LogPerRound LogLifetime = iota
	// LogPerMatch keeps the log until ResetMatch.
	LogPerMatch
)

// String returns the configuration name of the lifetime
func (l LogLifetime) String() string {
	switch l {
	case LogPerRound:
		return "round"
	case LogPerMatch:
		return "match"
	default:
		return "unknown"
	}
}

// ParseLogLifetime parses "round" or "match".
func ParseLogLifetime(s string) (LogLifetime, error) {
	switch s {
	case "", "round":
		return LogPerRound, nil
	case "match":
		return LogPerMatch, nil
	}
	return 0, fmt.Errorf("unknown log lifetime %q (want round or match)", s)
}
