package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/randutil"
	"github.com/lox/twentynine/internal/tui"
)

// HumanCmd plays a match in the terminal against agents
type HumanCmd struct {
	Seat    int      `default:"0" help:"Seat the human plays (0-3)"`
	Seed    int64    `help:"Match seed (0 uses the config seed, then the clock)"`
	Agents  []string `sep:"," help:"Agent per seat, overriding the config; the human's entry is ignored"`
	LogFile string   `type:"path" help:"Write operational logs to this file instead of discarding them"`
}

func (c *HumanCmd) Run(g *Globals) error {
	if c.Seat < 0 || c.Seat >= game.NumPlayers {
		return fmt.Errorf("seat must be between 0 and %d", game.NumPlayers-1)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	cfg, logger, err := g.load(out)
	if err != nil {
		return err
	}
	specs, err := agentSpecs(cfg, c.Agents)
	if err != nil {
		return err
	}
	// The human's seat needs no agent.
	specs[c.Seat] = agent.Spec{Kind: "first"}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	seed := seedOr(c.Seed, cfg.Match.Seed)
	if seed == 0 {
		_, seed = randutil.NewTimeSeeded()
	}
	logger.Info("Starting human match", "seed", seed, "seat", c.Seat)

	agents, err := buildAgents(specs, seed, logger)
	if err != nil {
		return err
	}
	defer agent.Close(agents[:]...)
	agents[c.Seat] = nil

	engine := game.New(append(opts, game.WithSeed(seed), game.WithLogger(logger))...)
	return tui.Run(tui.New(engine, agents, c.Seat, logger))
}
