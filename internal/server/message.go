package server

import (
	"github.com/lox/twentynine/internal/game"
)

// MessageType identifies a websocket message
type MessageType string

// Client → Server
const (
	MessageTypeReset MessageType = "reset"
	MessageTypeStep  MessageType = "step"
)

// Server → Client
const (
	MessageTypeHello MessageType = "hello"
	MessageTypeState MessageType = "state"
	MessageTypeError MessageType = "error"
)

// MessageTypeLog requests the game log and carries the reply.
const MessageTypeLog MessageType = "log"

// Request is a client message. Action is the flat action id of a step.
type Request struct {
	Type   MessageType `json:"type"`
	Action *int        `json:"action,omitempty"`
}

// Response is a server message
type Response struct {
	Type        MessageType               `json:"type"`
	Session     string                    `json:"session,omitempty"`
	Seed        int64                     `json:"seed,omitempty"`
	State       *game.State               `json:"state,omitempty"`
	Player      int                       `json:"player"`
	LegalIDs    []int                     `json:"legal_ids,omitempty"`
	Done        bool                      `json:"done"`
	Payoffs     *[game.NumPlayers]float64 `json:"payoffs,omitempty"`
	Summary     *game.RoundSummary        `json:"summary,omitempty"`
	MatchWinner *int                      `json:"match_winner"`
	Log         []string                  `json:"log,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// Rules describes the action space and scoring for clients
type Rules struct {
	NumActions   int            `json:"num_actions"`
	CardIDs      [2]int         `json:"card_ids"`
	MinBid       int            `json:"min_bid"`
	MaxBid       int            `json:"max_bid"`
	BidIDOffset  int            `json:"bid_id_offset"`
	PassID       int            `json:"pass_id"`
	TrumpIDBase  int            `json:"trump_id_base"`
	Suits        []string       `json:"suits"`
	Ranks        []string       `json:"ranks"`
	Points       map[string]int `json:"points"`
	WinningScore int            `json:"winning_score"`
	LosingScore  int            `json:"losing_score"`
}
