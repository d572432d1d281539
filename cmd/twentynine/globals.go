package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/config"
	"github.com/lox/twentynine/internal/game"
	"github.com/muesli/termenv"
)

// Globals are flags shared by every command
type Globals struct {
	Config   string `short:"c" default:"twentynine.hcl" env:"TWENTYNINE_CONFIG" help:"HCL configuration file (missing file uses defaults)"`
	LogLevel string `env:"TWENTYNINE_LOG_LEVEL" help:"Log level: debug, info, warn or error (overrides the config file)"`
	Debug    bool   `env:"TWENTYNINE_DEBUG" help:"Enable debug logging"`
	NoColor  bool   `env:"NO_COLOR" help:"Disable coloured output"`
}

// load reads and validates the configuration and builds the root logger
// writing to w.
func (g *Globals) load(w io.Writer) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", g.Config, err)
	}

	logger, err := g.logger(w, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (g *Globals) logger(w io.Writer, configured string) (*log.Logger, error) {
	name := configured
	if g.LogLevel != "" {
		name = g.LogLevel
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", name)
	}
	if g.Debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	if g.NoColor {
		logger.SetColorProfile(termenv.Ascii)
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return logger, nil
}

// parseAgents reads per-seat agents written as "kind" or "lua:script".
func parseAgents(values []string) ([game.NumPlayers]agent.Spec, error) {
	var specs [game.NumPlayers]agent.Spec
	if len(values) != game.NumPlayers {
		return specs, fmt.Errorf("--agents needs %d values, got %d", game.NumPlayers, len(values))
	}
	for seat, v := range values {
		kind, script, _ := strings.Cut(strings.TrimSpace(v), ":")
		if !agent.ValidKind(kind) {
			return specs, fmt.Errorf("seat %d: unknown agent %q (want one of %v)", seat, kind, agent.Kinds)
		}
		if kind == "lua" && script == "" {
			return specs, fmt.Errorf("seat %d: lua agent needs a script, as in lua:bots/greedy.lua", seat)
		}
		specs[seat] = agent.Spec{Kind: kind, Script: script}
	}
	return specs, nil
}

// agentSpecs returns the flag agents when given, else the configured seats.
func agentSpecs(cfg *config.Config, flags []string) ([game.NumPlayers]agent.Spec, error) {
	if len(flags) > 0 {
		return parseAgents(flags)
	}
	return cfg.AgentSpecs()
}

// seedOr returns the first non-zero seed.
func seedOr(seeds ...int64) int64 {
	for _, s := range seeds {
		if s != 0 {
			return s
		}
	}
	return 0
}
