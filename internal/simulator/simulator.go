// Package simulator plays batches of full matches between configured agents
// in parallel and accumulates statistics for one tracked seat.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/env"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/randutil"
	"github.com/lox/twentynine/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// MaxRoundsPerMatch stops a match whose scores keep swinging without either
// team reaching the winning score.
const MaxRoundsPerMatch = 1000

// Config holds configuration for running simulations
type Config struct {
	Matches       int
	Workers       int   // Defaults to GOMAXPROCS
	Seed          int64 // Zero picks a time-based seed
	Agents        [game.NumPlayers]agent.Spec
	TrackSeat     int
	MaxSteps      int // Per round; zero means unlimited
	EngineOptions []game.Option
	Recorder      Recorder
	Clock         quartz.Clock
	Logger        *log.Logger
}

// MatchInfo identifies the match a round belongs to
type MatchInfo struct {
	ID      string
	Index   int
	Seed    int64
	Players [game.NumPlayers]string
}

// MatchResult is the outcome of one simulated match
type MatchResult struct {
	MatchInfo
	Winner   int // Winning team
	Scores   [2]int
	Rounds   int
	Started  time.Time
	Duration time.Duration
}

// Recorder receives every finished round and match. Implementations must be
// safe for concurrent use; rounds of one match arrive in order from one
// goroutine.
type Recorder interface {
	RecordRound(ctx context.Context, match MatchInfo, rec game.RoundRecord, gameLog []string) error
	RecordMatch(ctx context.Context, result MatchResult) error
}

// Result is the outcome of a simulation run
type Result struct {
	Seed     int64
	Players  [game.NumPlayers]string
	Stats    *statistics.Statistics
	Matches  []MatchResult
	TeamWins [2]int
	Duration time.Duration
}

// Simulator runs match simulations
type Simulator struct {
	config Config
	logger *log.Logger
	clock  quartz.Clock
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Seed == 0 {
		_, config.Seed = randutil.NewTimeSeeded()
	}
	return &Simulator{
		config: config,
		logger: logger.WithPrefix("simulator"),
		clock:  clock,
	}
}

// Seed returns the base seed every match seed is derived from
func (s *Simulator) Seed() int64 {
	return s.config.Seed
}

// Run plays the configured number of matches and returns the results.
// Matches are seeded independently, so a run replays identically for a
// given seed whatever the worker count.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Matches < 1 {
		return nil, fmt.Errorf("matches must be positive")
	}
	if s.config.TrackSeat < 0 || s.config.TrackSeat >= game.NumPlayers {
		return nil, fmt.Errorf("track seat %d out of range", s.config.TrackSeat)
	}
	for seat, spec := range s.config.Agents {
		if !agent.ValidKind(spec.Kind) {
			return nil, fmt.Errorf("seat %d: unknown agent %q", seat, spec.Kind)
		}
	}

	start := s.clock.Now()
	s.logger.Info("Starting simulation",
		"matches", s.config.Matches,
		"workers", s.config.Workers,
		"seed", s.config.Seed,
		"track_seat", s.config.TrackSeat)

	results := make([]MatchResult, s.config.Matches)
	perMatch := make([]*statistics.Statistics, s.config.Matches)
	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Matches {
		g.Go(func() error {
			res, stats, err := s.playMatch(gctx, i)
			if err != nil {
				return err
			}
			results[i] = res
			perMatch[i] = stats

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			if done%100 == 0 {
				s.logger.Debug("Progress", "completed", done, "total", s.config.Matches)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in match order so values line up with the seeds.
	result := &Result{
		Seed:    s.config.Seed,
		Stats:   &statistics.Statistics{},
		Matches: results,
	}
	for i, stats := range perMatch {
		result.Stats.Merge(stats)
		result.TeamWins[results[i].Winner]++
	}
	if len(results) > 0 {
		result.Players = results[0].Players
	}
	result.Duration = s.clock.Since(start)

	if err := result.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"rounds", result.Stats.Rounds,
		"duration", result.Duration,
		"mean", fmt.Sprintf("%.4f", result.Stats.Mean()))
	return result, nil
}

// playMatch plays one match to completion with fresh agents.
func (s *Simulator) playMatch(ctx context.Context, index int) (MatchResult, *statistics.Statistics, error) {
	seed := randutil.Derive(s.config.Seed, index)
	info := MatchInfo{
		ID:    uuid.NewString(),
		Index: index,
		Seed:  seed,
	}
	logger := s.logger.With("match", index, "seed", seed)

	var agents [game.NumPlayers]agent.Agent
	for seat, spec := range s.config.Agents {
		a, err := agent.Build(spec, randutil.New(randutil.Derive(seed, seat+1)), logger)
		if err != nil {
			agent.Close(agents[:seat]...)
			return MatchResult{}, nil, fmt.Errorf("seat %d: %w", seat, err)
		}
		agents[seat] = a
		info.Players[seat] = a.Name()
	}
	defer agent.Close(agents[:]...)

	opts := append([]game.Option{}, s.config.EngineOptions...)
	opts = append(opts, game.WithSeed(seed))
	e := env.New(logger, opts...)
	e.SetAgents(agents)
	e.SetMaxSteps(s.config.MaxSteps)

	res := MatchResult{MatchInfo: info, Started: s.clock.Now()}
	stats := &statistics.Statistics{}
	for {
		if res.Rounds >= MaxRoundsPerMatch {
			return res, nil, fmt.Errorf("match %d (seed %d): no winner after %d rounds", index, seed, res.Rounds)
		}
		_, payoffs, err := e.Run(ctx)
		if err != nil {
			return res, nil, fmt.Errorf("match %d (seed %d) round %d: %w", index, seed, res.Rounds+1, err)
		}
		res.Rounds++

		rec := e.Engine().Record()
		stats.Add(s.roundResult(rec, payoffs, seed))
		if s.config.Recorder != nil {
			if err := s.config.Recorder.RecordRound(ctx, info, rec, e.Engine().GameLog()); err != nil {
				return res, nil, fmt.Errorf("recording round: %w", err)
			}
		}

		if winner, over := e.Engine().MatchWinner(); over {
			res.Winner = winner
			break
		}
	}
	res.Scores = e.Engine().MatchScores()
	res.Duration = s.clock.Since(res.Started)
	logger.Debug("Match finished", "winner", res.Winner, "scores", res.Scores, "rounds", res.Rounds)

	if s.config.Recorder != nil {
		if err := s.config.Recorder.RecordMatch(ctx, res); err != nil {
			return res, nil, fmt.Errorf("recording match: %w", err)
		}
	}
	return res, stats, nil
}

func (s *Simulator) roundResult(rec game.RoundRecord, payoffs [game.NumPlayers]float64, seed int64) statistics.RoundResult {
	seat := s.config.TrackSeat
	team := game.TeamOf(seat)
	sum := rec.Summary
	return statistics.RoundResult{
		Payoff:        payoffs[seat],
		Seed:          seed,
		Seat:          seat,
		Dealer:        rec.Dealer,
		BidValue:      sum.BidValue,
		BidWinner:     sum.BidWinner,
		OwnTeamBid:    sum.HasBid() && sum.BiddingTeam == team,
		Successful:    sum.Successful,
		TeamPoints:    sum.TeamPoints[team],
		TrumpRevealed: sum.TrumpRevealed,
		Redeals:       sum.Redeals,
	}
}

// Recorders fans rounds and matches out to several recorders in order.
type Recorders []Recorder

// RecordRound implements Recorder
func (rs Recorders) RecordRound(ctx context.Context, match MatchInfo, rec game.RoundRecord, gameLog []string) error {
	for _, r := range rs {
		if err := r.RecordRound(ctx, match, rec, gameLog); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatch implements Recorder
func (rs Recorders) RecordMatch(ctx context.Context, result MatchResult) error {
	for _, r := range rs {
		if err := r.RecordMatch(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
