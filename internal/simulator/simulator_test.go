package simulator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/env"
	"github.com/lox/twentynine/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mixedAgents = [game.NumPlayers]agent.Spec{
	{Kind: "bot"},
	{Kind: "random"},
	{Kind: "bot"},
	{Kind: "first"},
}

type fakeRecorder struct {
	mu      sync.Mutex
	rounds  map[string]int
	matches []MatchResult
	err     error
}

func (f *fakeRecorder) RecordRound(_ context.Context, match MatchInfo, rec game.RoundRecord, gameLog []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.rounds == nil {
		f.rounds = map[string]int{}
	}
	f.rounds[match.ID]++
	if rec.Round != f.rounds[match.ID] {
		return errors.New("rounds out of order")
	}
	if !rec.Summary.Complete || len(gameLog) == 0 {
		return errors.New("unfinished round recorded")
	}
	return nil
}

func (f *fakeRecorder) RecordMatch(_ context.Context, result MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, result)
	return nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	sim := New(Config{Matches: 3})
	assert.Positive(t, sim.config.Workers)
	assert.NotZero(t, sim.Seed())
	assert.NotNil(t, sim.logger)

	sim = New(Config{Matches: 3, Seed: 77, Workers: 2})
	assert.Equal(t, int64(77), sim.Seed())
	assert.Equal(t, 2, sim.config.Workers)
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	run := func(workers int) *Result {
		res, err := New(Config{
			Matches:  6,
			Workers:  workers,
			Seed:     99,
			Agents:   mixedAgents,
			MaxSteps: 1000,
			Clock:    quartz.NewMock(t),
		}).Run(context.Background())
		require.NoError(t, err)
		return res
	}

	serial := run(1)
	parallel := run(4)

	assert.Equal(t, serial.Stats.Values, parallel.Stats.Values)
	assert.Equal(t, serial.TeamWins, parallel.TeamWins)
	require.Len(t, parallel.Matches, 6)
	for i := range serial.Matches {
		assert.Equal(t, serial.Matches[i].Seed, parallel.Matches[i].Seed)
		assert.Equal(t, serial.Matches[i].Scores, parallel.Matches[i].Scores)
		assert.Equal(t, serial.Matches[i].Rounds, parallel.Matches[i].Rounds)
	}
	assert.Equal(t, [game.NumPlayers]string{"bot", "random", "bot", "first"}, serial.Players)
	assert.Equal(t, 6, serial.TeamWins[0]+serial.TeamWins[1])
	assert.Zero(t, serial.Duration, "mock clock does not advance")
}

func TestRunResults(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	res, err := New(Config{
		Matches:   4,
		Workers:   2,
		Seed:      5,
		Agents:    mixedAgents,
		TrackSeat: 1,
		Recorder:  rec,
	}).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, res.Stats.Validate())

	require.Len(t, rec.matches, 4)
	total := 0
	for _, m := range res.Matches {
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, m.Rounds, rec.rounds[m.ID])
		total += m.Rounds

		winner, loser := m.Scores[m.Winner], m.Scores[1-m.Winner]
		assert.True(t, winner >= game.WinningScore || loser <= game.LosingScore,
			"match %d ended at %v", m.Index, m.Scores)
	}
	assert.Equal(t, total, res.Stats.Rounds)
	for _, v := range res.Stats.Values {
		assert.Contains(t, []float64{-1, 1}, v)
	}
}

func TestRunRecorderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	_, err := New(Config{
		Matches:  2,
		Seed:     5,
		Agents:   mixedAgents,
		Recorder: &fakeRecorder{err: boom},
	}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunStepLimit(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		Matches:  1,
		Seed:     5,
		Agents:   mixedAgents,
		MaxSteps: 2,
	}).Run(context.Background())
	assert.ErrorIs(t, err, env.ErrStepLimit)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{Matches: 2, Seed: 5, Agents: mixedAgents}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Matches: 0}).Run(context.Background())
	assert.Error(t, err)

	_, err = New(Config{Matches: 1, TrackSeat: 4}).Run(context.Background())
	assert.Error(t, err)

	agents := mixedAgents
	agents[2] = agent.Spec{Kind: "oracle"}
	_, err = New(Config{Matches: 1, Agents: agents}).Run(context.Background())
	assert.Error(t, err)

	agents[2] = agent.Spec{Kind: "lua", Script: filepath.Join(t.TempDir(), "missing.lua")}
	_, err = New(Config{Matches: 1, Agents: agents}).Run(context.Background())
	assert.Error(t, err)
}

func TestHistoryRecorder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := New(Config{
		Matches:  2,
		Seed:     11,
		Agents:   mixedAgents,
		Recorder: Recorders{NewHistoryRecorder(dir, quartz.NewMock(t))},
	}).Run(context.Background())
	require.NoError(t, err)

	for _, m := range res.Matches {
		entries, err := os.ReadDir(filepath.Join(dir, m.ID))
		require.NoError(t, err)
		assert.Len(t, entries, m.Rounds)
	}
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	res, err := New(Config{Matches: 2, Seed: 3, Agents: mixedAgents}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, res, 0)
	out := buf.String()
	assert.Contains(t, out, "FINAL RESULTS (seat 0, bot)")
	assert.Contains(t, out, "Matches played: 2")
	assert.Contains(t, out, "BIDDING ANALYSIS")
	assert.Contains(t, out, "SEAT ANALYSIS")
}
