package simulator

import (
	"context"

	"github.com/coder/quartz"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/history"
)

// HistoryRecorder writes every finished round to a history file
type HistoryRecorder struct {
	writer *history.Writer
	clock  quartz.Clock
}

// NewHistoryRecorder writes round files below dir.
func NewHistoryRecorder(dir string, clock quartz.Clock) *HistoryRecorder {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &HistoryRecorder{writer: history.NewWriter(dir), clock: clock}
}

// RecordRound implements Recorder
func (h *HistoryRecorder) RecordRound(_ context.Context, match MatchInfo, rec game.RoundRecord, gameLog []string) error {
	_, err := h.writer.Write(history.FromRecord(rec, history.Meta{
		Match:   match.ID,
		Seed:    match.Seed,
		Players: match.Players[:],
		Time:    h.clock.Now(),
		Log:     gameLog,
	}))
	return err
}

// RecordMatch implements Recorder
func (h *HistoryRecorder) RecordMatch(context.Context, MatchResult) error {
	return nil
}
