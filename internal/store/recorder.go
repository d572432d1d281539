package store

import (
	"context"

	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/simulator"
)

// Sources recorded with each match
const (
	SourceSimulation = "simulation"
	SourceServer     = "server"
)

// SimulationRecorder stores simulated matches
type SimulationRecorder struct {
	db *DB
}

// NewSimulationRecorder returns a simulator.Recorder backed by db.
func NewSimulationRecorder(db *DB) *SimulationRecorder {
	return &SimulationRecorder{db: db}
}

// RecordRound implements simulator.Recorder. The match row is created with
// its first round.
func (r *SimulationRecorder) RecordRound(ctx context.Context, match simulator.MatchInfo, rec game.RoundRecord, gameLog []string) error {
	if rec.Round == 1 {
		if err := r.db.StartMatch(ctx, match.ID, SourceSimulation, match.Seed, match.Players); err != nil {
			return err
		}
	}
	return r.db.RecordRound(ctx, match.ID, rec, gameLog)
}

// RecordMatch implements simulator.Recorder
func (r *SimulationRecorder) RecordMatch(ctx context.Context, result simulator.MatchResult) error {
	return r.db.FinishMatch(ctx, result.ID, result.Winner, result.Scores)
}
