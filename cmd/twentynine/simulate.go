package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/simulator"
	"github.com/lox/twentynine/internal/store"
)

// SimulateCmd runs batches of matches between agents
type SimulateCmd struct {
	Matches    int      `help:"Number of matches (0 uses the config)"`
	Workers    int      `help:"Parallel workers (0 uses the config, then GOMAXPROCS)"`
	Seed       int64    `help:"Base seed (0 uses the config seed, then the clock)"`
	Agents     []string `sep:"," help:"Agent per seat, overriding the config: random, first, bot or lua:<script>"`
	TrackSeat  *int     `help:"Seat whose statistics are reported (default from config)"`
	HistoryDir string   `type:"path" help:"Write every round as a TOML history file under this directory"`
	DSN        string   `env:"TWENTYNINE_DSN" help:"Postgres connection string for recording results"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	specs, err := agentSpecs(cfg, c.Agents)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}

	sim := cfg.Simulation
	config := simulator.Config{
		Matches:       intOr(c.Matches, sim.Matches),
		Workers:       intOr(c.Workers, sim.Workers),
		Seed:          seedOr(c.Seed, cfg.Match.Seed),
		Agents:        specs,
		TrackSeat:     sim.TrackSeat,
		MaxSteps:      sim.MaxSteps,
		EngineOptions: opts,
		Logger:        logger,
	}
	if c.TrackSeat != nil {
		if *c.TrackSeat < 0 || *c.TrackSeat >= game.NumPlayers {
			return fmt.Errorf("track seat must be between 0 and %d", game.NumPlayers-1)
		}
		config.TrackSeat = *c.TrackSeat
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorders simulator.Recorders
	if dir := stringOr(c.HistoryDir, sim.HistoryDir); dir != "" {
		logger.Info("Writing round histories", "dir", dir)
		recorders = append(recorders, simulator.NewHistoryRecorder(dir, nil))
	}
	if dsn := stringOr(c.DSN, cfg.Store.DSN); dsn != "" {
		db, err := openStore(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("Recording results to postgres")
		recorders = append(recorders, store.NewSimulationRecorder(db))
	}
	if len(recorders) > 0 {
		config.Recorder = recorders
	}

	result, err := simulator.New(config).Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, result, config.TrackSeat)
	return nil
}

// openStore connects to postgres and applies the schema.
func openStore(ctx context.Context, dsn string) (*store.DB, error) {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to store: %w", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	return db, nil
}

func intOr(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func stringOr(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
