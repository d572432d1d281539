// Package store persists matches and rounds in PostgreSQL.
package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lox/twentynine/internal/game"
)

//go:embed schema.sql
var schema embed.FS

// ErrNotFound is returned when a match does not exist.
var ErrNotFound = errors.New("store: not found")

// DB wraps a connection pool
type DB struct{ *pgxpool.Pool }

// Open connects to the database at dsn.
func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connecting: %w", err)
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// Match is a stored match
type Match struct {
	ID         string                  `json:"id"`
	Source     string                  `json:"source"`
	Seed       int64                   `json:"seed"`
	Players    [game.NumPlayers]string `json:"players"`
	WinnerTeam *int                    `json:"winner_team"`
	Scores     [2]int                  `json:"scores"`
	Rounds     int                     `json:"rounds"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt *time.Time              `json:"finished_at"`
}

// Standing aggregates finished matches by agent name. A name seated
// twice in one match counts twice.
type Standing struct {
	Agent string  `json:"agent"`
	Seats int     `json:"seats"`
	Wins  int     `json:"wins"`
	Rate  float64 `json:"win_rate"`
}

// StartMatch records a new match. Starting a match that already exists is
// a no-op.
func (db *DB) StartMatch(ctx context.Context, id, source string, seed int64, players [game.NumPlayers]string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO matches(id, source, seed, players)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, id, source, seed, players[:])
	return err
}

// RecordRound stores a finished round and bumps the match's round count
// and running scores in one transaction.
func (db *DB) RecordRound(ctx context.Context, matchID string, rec game.RoundRecord, gameLog []string) error {
	args, err := roundArgs(rec)
	if err != nil {
		return err
	}
	if gameLog == nil {
		gameLog = []string{}
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	tag, err := tx.Exec(ctx, `
		UPDATE matches
		   SET rounds = rounds + 1,
		       team0_score = $2,
		       team1_score = $3
		 WHERE id = $1
	`, matchID, rec.MatchScores[0], rec.MatchScores[1])
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO rounds(
			match_id, round, dealer, redeals,
			bid_value, bid_winner, trump, trump_revealed, successful,
			team0_points, team1_points,
			hands, bids, tricks, payoffs, game_log
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, append([]any{matchID}, append(args, gameLog)...)...); err != nil {
		return fmt.Errorf("store: inserting round %d: %w", rec.Round, err)
	}

	return tx.Commit(ctx)
}

// FinishMatch stores the winner and final scores.
func (db *DB) FinishMatch(ctx context.Context, id string, winner int, scores [2]int) error {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		   SET winner_team = $2,
		       team0_score = $3,
		       team1_score = $4,
		       finished_at = now()
		 WHERE id = $1
	`, id, winner, scores[0], scores[1])
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return nil
}

// GetMatch loads one match
func (db *DB) GetMatch(ctx context.Context, id string) (*Match, error) {
	var (
		m       Match
		players []string
		winner  *int16
	)
	err := db.QueryRow(ctx, `
		SELECT id::text, source, seed, players, winner_team,
		       team0_score, team1_score, rounds, started_at, finished_at
		  FROM matches WHERE id = $1
	`, id).Scan(&m.ID, &m.Source, &m.Seed, &players, &winner,
		&m.Scores[0], &m.Scores[1], &m.Rounds, &m.StartedAt, &m.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	copy(m.Players[:], players)
	if winner != nil {
		w := int(*winner)
		m.WinnerTeam = &w
	}
	return &m, nil
}

// Standings ranks agents by wins over finished matches.
func (db *DB) Standings(ctx context.Context) ([]Standing, error) {
	rows, err := db.Query(ctx, `
		SELECT p.name,
		       COUNT(*) AS seats,
		       COUNT(*) FILTER (WHERE m.winner_team = (p.ord - 1) % 2) AS wins
		  FROM matches m
		 CROSS JOIN LATERAL unnest(m.players) WITH ORDINALITY AS p(name, ord)
		 WHERE m.finished_at IS NOT NULL
		 GROUP BY p.name
		 ORDER BY wins DESC, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Agent, &s.Seats, &s.Wins); err != nil {
			return nil, err
		}
		if s.Seats > 0 {
			s.Rate = float64(s.Wins) / float64(s.Seats)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// roundArgs flattens a round record into the rounds columns after
// match_id and before game_log.
func roundArgs(rec game.RoundRecord) ([]any, error) {
	var trump any
	if rec.Trump != nil {
		trump = rec.Trump.String()
	}
	docs := make([]any, 0, 4)
	for _, v := range []any{rec.Hands, rec.Bids, rec.Tricks, rec.Payoffs} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("store: encoding round %d: %w", rec.Round, err)
		}
		docs = append(docs, b)
	}
	sum := rec.Summary
	return append([]any{
		rec.Round, rec.Dealer, sum.Redeals,
		sum.BidValue, sum.BidWinner, trump, sum.TrumpRevealed, sum.Successful,
		sum.TeamPoints[0], sum.TeamPoints[1],
	}, docs...), nil
}
