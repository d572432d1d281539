package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/twentynine/internal/env"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// sessionPlayers names every seat of a server match in the store: the
// client controls all four.
var sessionPlayers = [game.NumPlayers]string{"client", "client", "client", "client"}

// session is one websocket client driving its own engine. Requests are
// handled in order on the connection's read goroutine.
type session struct {
	id      string
	seed    int64
	matchID string
	stored  bool
	conn    *websocket.Conn
	env     *env.Env
	store   Store
	logger  *log.Logger
	idle    *quartz.Timer
}

func newSession(conn *websocket.Conn, seed int64, st Store, opts []game.Option, logger *log.Logger) *session {
	id := uuid.NewString()
	logger = logger.With("session", id)
	opts = append(append([]game.Option{}, opts...), game.WithSeed(seed))
	return &session{
		id:     id,
		seed:   seed,
		conn:   conn,
		env:    env.New(logger, opts...),
		store:  st,
		logger: logger,
	}
}

// serve runs the session until the client disconnects or stays idle for
// longer than idleTimeout.
func (s *session) serve(ctx context.Context, clock quartz.Clock, idleTimeout time.Duration) {
	defer s.conn.Close()

	if idleTimeout > 0 {
		s.idle = clock.AfterFunc(idleTimeout, func() {
			s.logger.Info("Closing idle session", "timeout", idleTimeout)
			_ = s.conn.Close()
		}, "session", "idle")
		defer s.idle.Stop()
	}

	s.conn.SetReadLimit(maxMessageSize)
	if err := s.write(Response{Type: MessageTypeHello, Session: s.id, Seed: s.seed}); err != nil {
		return
	}

	for ctx.Err() == nil {
		var req Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Read failed", "error", err)
			}
			return
		}
		if s.idle != nil {
			s.idle.Reset(idleTimeout, "session", "idle")
		}

		if err := s.write(s.handle(ctx, req)); err != nil {
			s.logger.Debug("Write failed", "error", err)
			return
		}
	}
}

func (s *session) write(resp Response) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(resp)
}

// handle applies one request and builds the reply. Rejected requests leave
// the engine unchanged.
func (s *session) handle(ctx context.Context, req Request) Response {
	s.logger.Debug("Received message", "type", req.Type)

	switch req.Type {
	case MessageTypeReset:
		if _, decided := s.env.Engine().MatchWinner(); decided || s.matchID == "" {
			s.matchID = uuid.NewString()
			s.stored = false
		}
		if _, _, err := s.env.Reset(); err != nil {
			return errorResponse(err)
		}
		return s.stateResponse()

	case MessageTypeStep:
		if req.Action == nil {
			return errorResponse(errors.New("step requires an action id"))
		}
		if _, _, err := s.env.Step(*req.Action); err != nil {
			return errorResponse(err)
		}
		if s.env.IsOver() {
			s.record(ctx)
		}
		return s.stateResponse()

	case MessageTypeLog:
		return Response{
			Type:   MessageTypeLog,
			Player: s.env.CurrentPlayer(),
			Done:   s.env.IsOver(),
			Log:    s.env.Engine().GameLog(),
		}
	}
	return errorResponse(fmt.Errorf("unknown message type %q", req.Type))
}

// stateResponse reports the view of the seat to act. Finished rounds add
// the payoffs and summary.
func (s *session) stateResponse() Response {
	e := s.env.Engine()
	player := e.CurrentPlayer()
	state := e.StateFor(player)
	resp := Response{
		Type:     MessageTypeState,
		State:    &state,
		Player:   player,
		LegalIDs: e.LegalIDs(),
		Done:     e.IsRoundOver(),
	}
	if resp.Done {
		payoffs := e.Payoffs()
		summary := e.RoundSummary()
		resp.Payoffs = &payoffs
		resp.Summary = &summary
	}
	if winner, ok := e.MatchWinner(); ok {
		resp.MatchWinner = &winner
	}
	return resp
}

// record stores a finished round. Store failures are logged and do not
// end the session.
func (s *session) record(ctx context.Context) {
	if s.store == nil {
		return
	}
	e := s.env.Engine()
	rec := e.Record()
	if !s.stored {
		if err := s.store.StartMatch(ctx, s.matchID, store.SourceServer, s.seed, sessionPlayers); err != nil {
			s.logger.Warn("Failed to store match", "match", s.matchID, "error", err)
			return
		}
		s.stored = true
	}
	if err := s.store.RecordRound(ctx, s.matchID, rec, e.GameLog()); err != nil {
		s.logger.Warn("Failed to store round", "match", s.matchID, "round", rec.Round, "error", err)
		return
	}
	if winner, ok := e.MatchWinner(); ok {
		if err := s.store.FinishMatch(ctx, s.matchID, winner, e.MatchScores()); err != nil {
			s.logger.Warn("Failed to finish match", "match", s.matchID, "error", err)
		}
	}
}

func errorResponse(err error) Response {
	return Response{Type: MessageTypeError, Error: err.Error()}
}
