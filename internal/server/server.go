// Package server exposes the game engine as a websocket environment. Each
// connection owns one engine and drives every seat with flat action ids.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/randutil"
	"github.com/lox/twentynine/internal/store"
)

// Store persists server matches. *store.DB implements it.
type Store interface {
	StartMatch(ctx context.Context, id, source string, seed int64, players [game.NumPlayers]string) error
	RecordRound(ctx context.Context, matchID string, rec game.RoundRecord, gameLog []string) error
	FinishMatch(ctx context.Context, id string, winner int, scores [2]int) error
	GetMatch(ctx context.Context, id string) (*store.Match, error)
	Standings(ctx context.Context) ([]store.Standing, error)
}

// Config configures a Server
type Config struct {
	IdleTimeout   time.Duration // Zero disables the idle timeout
	MaxSessions   int           // Zero means unlimited
	EngineOptions []game.Option
	Store         Store // Optional
	Clock         quartz.Clock
}

// Server serves websocket sessions and a small JSON API
type Server struct {
	config   Config
	clock    quartz.Clock
	logger   *log.Logger
	upgrader websocket.Upgrader
	sessions atomic.Int64
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a server
func New(config Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config: config,
		clock:  clock,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/standings", s.handleStandings)
		r.Get("/matches/{id}", s.handleMatch)
	})
	return r
}

// Sessions returns the number of open sessions
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// and waits for open sessions to close.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.cancel()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", "sessions", s.Sessions())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close ends every session and waits for them to finish. Hijacked
// websocket connections are not closed by http.Server.Shutdown.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	seed, err := parseSeed(r.URL.Query().Get("seed"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if n := s.sessions.Add(1); s.config.MaxSessions > 0 && n > int64(s.config.MaxSessions) {
		s.sessions.Add(-1)
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sessions.Add(-1)
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sess := newSession(conn, seed, s.config.Store, s.config.EngineOptions, s.logger)
	s.logger.Info("Session opened", "session", sess.id, "seed", seed, "total", s.Sessions())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sessions.Add(-1)

		// Unblock the read loop on shutdown.
		stop := context.AfterFunc(s.ctx, func() { _ = conn.Close() })
		defer stop()

		sess.serve(s.ctx, s.clock, s.config.IdleTimeout)
		s.logger.Info("Session closed", "session", sess.id)
	}()
}

func parseSeed(text string) (int64, error) {
	if text == "" {
		_, seed := randutil.NewTimeSeeded()
		return seed, nil
	}
	seed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q", text)
	}
	return seed, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, rules())
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	if s.config.Store == nil {
		http.Error(w, "no store configured", http.StatusNotFound)
		return
	}
	standings, err := s.config.Store.Standings(r.Context())
	if err != nil {
		s.logger.Error("Failed to load standings", "error", err)
		http.Error(w, "failed to load standings", http.StatusInternalServerError)
		return
	}
	if standings == nil {
		standings = []store.Standing{}
	}
	writeJSON(w, standings)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.config.Store == nil {
		http.Error(w, "no store configured", http.StatusNotFound)
		return
	}
	m, err := s.config.Store.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load match", "error", err)
		http.Error(w, "failed to load match", http.StatusInternalServerError)
		return
	}
	writeJSON(w, m)
}

func rules() Rules {
	r := Rules{
		NumActions:   game.NumActions,
		CardIDs:      [2]int{0, game.NumCardActions - 1},
		MinBid:       game.MinBid,
		MaxBid:       game.MaxBid,
		BidIDOffset:  game.BidIDOffset,
		PassID:       game.PassID,
		TrumpIDBase:  game.TrumpIDBase,
		Points:       map[string]int{},
		WinningScore: game.WinningScore,
		LosingScore:  game.LosingScore,
	}
	for _, suit := range cards.Suits {
		r.Suits = append(r.Suits, suit.String())
	}
	for _, rank := range cards.Ranks {
		r.Ranks = append(r.Ranks, rank.String())
		r.Points[rank.String()] = rank.Points()
	}
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
