package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/env"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/history"
	"github.com/lox/twentynine/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstBots() [game.NumPlayers]agent.Agent {
	return [game.NumPlayers]agent.Agent{agent.FirstBot{}, agent.FirstBot{}, agent.FirstBot{}, agent.FirstBot{}}
}

func TestPlayMatchRounds(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	engine := game.New(game.WithSeed(7))
	require.NoError(t, playMatch(context.Background(), &out, engine, firstBots(), 3, 0))

	text := out.String()
	assert.Contains(t, text, "29 Match")
	assert.Contains(t, text, "Players: 0=first, 1=first, 2=first, 3=first")
	assert.Equal(t, 3, strings.Count(text, "--- Round Summary ---"))
	assert.Contains(t, text, "Round 3")
	assert.Contains(t, text, "  -> ")
	assert.Contains(t, text, "Match unfinished")
	assert.Equal(t, 3, engine.Round())
}

func TestPlayMatchToWinner(t *testing.T) {
	t.Parallel()

	var agents [game.NumPlayers]agent.Agent
	for seat := range agents {
		agents[seat] = agent.NewRandBot(randutil.New(int64(seat+1)), nil)
	}

	var out bytes.Buffer
	engine := game.New(game.WithSeed(11))
	require.NoError(t, playMatch(context.Background(), &out, engine, agents, 1000, 0))

	team, ok := engine.MatchWinner()
	require.True(t, ok)
	assert.Contains(t, out.String(), fmt.Sprintf("Team %d wins the match", team))
	assert.Equal(t, engine.Round(), strings.Count(out.String(), "--- Round Summary ---"))
}

func TestPlayMatchStepLimit(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := playMatch(context.Background(), &out, game.New(game.WithSeed(1)), firstBots(), 1, 3)
	require.ErrorIs(t, err, env.ErrStepLimit)
}

func TestPlayMatchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := playMatch(ctx, &out, game.New(game.WithSeed(1)), firstBots(), 1, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseAgents(t *testing.T) {
	t.Parallel()

	specs, err := parseAgents([]string{"random", "bot", " first ", "lua:bots/greedy.lua"})
	require.NoError(t, err)
	assert.Equal(t, agent.Spec{Kind: "random"}, specs[0])
	assert.Equal(t, agent.Spec{Kind: "bot"}, specs[1])
	assert.Equal(t, agent.Spec{Kind: "first"}, specs[2])
	assert.Equal(t, agent.Spec{Kind: "lua", Script: "bots/greedy.lua"}, specs[3])

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"too few", []string{"random", "random"}, "needs 4 values"},
		{"unknown kind", []string{"random", "random", "random", "oracle"}, "unknown agent"},
		{"lua without script", []string{"lua", "random", "random", "random"}, "needs a script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAgents(tt.values)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildAgents(t *testing.T) {
	t.Parallel()

	specs := [game.NumPlayers]agent.Spec{{Kind: "random"}, {Kind: "first"}, {Kind: "bot"}, {Kind: "random"}}
	agents, err := buildAgents(specs, 3, log.New(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, "random", agents[0].Name())
	assert.Equal(t, "first", agents[1].Name())
	assert.Equal(t, "bot", agents[2].Name())

	specs[3] = agent.Spec{Kind: "lua", Script: filepath.Join(t.TempDir(), "missing.lua")}
	_, err = buildAgents(specs, 3, log.New(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seat 3")
}

func TestGlobalsLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "twentynine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "warn"
seat "2" {
  agent = "bot"
}
`), 0o644))

	var buf bytes.Buffer
	cfg, logger, err := (&Globals{Config: path}).load(&buf)
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	specs, err := agentSpecs(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "bot", specs[2].Kind)

	_, logger, err = (&Globals{Config: path, LogLevel: "error"}).load(&buf)
	require.NoError(t, err)
	assert.Equal(t, log.ErrorLevel, logger.GetLevel())

	_, logger, err = (&Globals{Config: path, Debug: true}).load(&buf)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	_, _, err = (&Globals{Config: path, LogLevel: "loud"}).load(&buf)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`seat "9" { agent = "bot" }`), 0o644))
	_, _, err = (&Globals{Config: path}).load(&buf)
	require.Error(t, err)
}

func TestPrintRules(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printRules(&out)
	text := out.String()
	assert.Contains(t, text, "Actions (51 ids)")
	assert.Contains(t, text, "0-7")
	assert.Contains(t, text, "24-31")
	assert.Contains(t, text, "32-45")
	assert.Contains(t, text, "bid value = id - 16")
	assert.Contains(t, text, "46")
	assert.Contains(t, text, "Ranks, highest first (J 9 A 10 K Q 8 7)")
	assert.Contains(t, text, "28 points")
}

func TestRenderHistory(t *testing.T) {
	t.Parallel()

	engine := game.New(game.WithSeed(5))
	var out bytes.Buffer
	require.NoError(t, playMatch(context.Background(), &out, engine, firstBots(), 1, 0))

	h := history.FromRecord(engine.Record(), history.Meta{
		Match:   "m-1",
		Seed:    5,
		Players: []string{"first", "first", "first", "first"},
		Log:     engine.GameLog(),
	})
	dir := t.TempDir()
	path, err := history.NewWriter(dir).Write(h)
	require.NoError(t, err)

	read, err := history.ReadFile(path)
	require.NoError(t, err)

	var rendered bytes.Buffer
	renderHistory(&rendered, read, true, true)
	text := rendered.String()
	assert.Contains(t, text, "Match m-1, round 1")
	assert.Contains(t, text, "Players: first, first, first, first")
	assert.Contains(t, text, "Hand 3: ")
	assert.Contains(t, text, "--- Actions ---")
	assert.Contains(t, text, "p1 bid 16")
	assert.Contains(t, text, "--- Game Log ---")
	assert.Contains(t, text, "Match score:")

	rendered.Reset()
	renderHistory(&rendered, read, false, false)
	assert.NotContains(t, rendered.String(), "--- Game Log ---")
	assert.NotContains(t, rendered.String(), "--- Actions ---")
}
