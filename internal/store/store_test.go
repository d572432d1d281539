package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedRound(t *testing.T) game.RoundRecord {
	t.Helper()
	e := game.New(game.WithSeed(8))
	_, _, err := e.InitRound()
	require.NoError(t, err)
	for steps := 0; !e.IsRoundOver(); steps++ {
		require.Less(t, steps, 200)
		_, _, err := e.ApplyAction(e.LegalActions()[0])
		require.NoError(t, err)
	}
	return e.Record()
}

func TestRoundArgs(t *testing.T) {
	t.Parallel()

	rec := finishedRound(t)
	args, err := roundArgs(rec)
	require.NoError(t, err)
	require.Len(t, args, 14)

	assert.Equal(t, rec.Round, args[0])
	assert.Equal(t, rec.Summary.BidValue, args[3])
	assert.Equal(t, rec.Trump.String(), args[5])

	var bids []game.BidEntry
	require.NoError(t, json.Unmarshal(args[11].([]byte), &bids))
	assert.Equal(t, rec.Bids, bids)

	var payoffs [game.NumPlayers]float64
	require.NoError(t, json.Unmarshal(args[13].([]byte), &payoffs))
	assert.Equal(t, rec.Payoffs, payoffs)
}

func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TWENTYNINE_TEST_DSN")
	if dsn == "" {
		t.Skip("TWENTYNINE_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestMatchLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id := uuid.NewString()
	players := [game.NumPlayers]string{"bot", "random", "bot", "random"}
	require.NoError(t, db.StartMatch(ctx, id, SourceServer, 8, players))
	require.NoError(t, db.StartMatch(ctx, id, SourceServer, 8, players), "restarting is a no-op")

	rec := finishedRound(t)
	require.NoError(t, db.RecordRound(ctx, id, rec, []string{"log line"}))
	require.NoError(t, db.FinishMatch(ctx, id, 0, [2]int{6, 2}))

	m, err := db.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, players, m.Players)
	assert.Equal(t, 1, m.Rounds)
	assert.Equal(t, [2]int{6, 2}, m.Scores)
	require.NotNil(t, m.WinnerTeam)
	assert.Equal(t, 0, *m.WinnerTeam)
	assert.NotNil(t, m.FinishedAt)

	standings, err := db.Standings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, standings)
}

func TestMissingMatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	missing := uuid.NewString()
	_, err := db.GetMatch(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.FinishMatch(ctx, missing, 1, [2]int{0, 6}), ErrNotFound)
	assert.ErrorIs(t, db.RecordRound(ctx, missing, finishedRound(t), nil), ErrNotFound)
}

func TestSimulationRecorder(t *testing.T) {
	db := testDB(t)

	res, err := simulator.New(simulator.Config{
		Matches:  2,
		Seed:     4,
		Agents:   [game.NumPlayers]agent.Spec{{Kind: "bot"}, {Kind: "first"}, {Kind: "bot"}, {Kind: "first"}},
		Recorder: NewSimulationRecorder(db),
	}).Run(context.Background())
	require.NoError(t, err)

	for _, r := range res.Matches {
		m, err := db.GetMatch(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, SourceSimulation, m.Source)
		assert.Equal(t, r.Rounds, m.Rounds)
		assert.Equal(t, r.Scores, m.Scores)
	}
}
