// Package config loads the HCL configuration shared by the twentynine
// commands: engine rules, seat agents, simulation, server and store.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/game"
)

// Config represents the complete configuration
type Config struct {
	LogLevel   string              `hcl:"log_level,optional"`
	Match      *MatchSettings      `hcl:"match,block"`
	Seats      []SeatConfig        `hcl:"seat,block"`
	Simulation *SimulationSettings `hcl:"simulation,block"`
	Server     *ServerSettings     `hcl:"server,block"`
	Store      *StoreSettings      `hcl:"store,block"`
}

// MatchSettings configures the engine
type MatchSettings struct {
	Seed         int64  `hcl:"seed,optional"`
	RedealPolicy string `hcl:"redeal_policy,optional"`
	LogLifetime  string `hcl:"log_lifetime,optional"`
	FirstDealer  int    `hcl:"first_dealer,optional"`
}

// SeatConfig assigns an agent to a seat
type SeatConfig struct {
	Seat   string `hcl:"seat,label"`
	Agent  string `hcl:"agent"`
	Script string `hcl:"script,optional"`
}

// SimulationSettings configures batch play
type SimulationSettings struct {
	Matches    int    `hcl:"matches,optional"`
	Workers    int    `hcl:"workers,optional"`
	TrackSeat  int    `hcl:"track_seat,optional"`
	MaxSteps   int    `hcl:"max_steps,optional"`
	HistoryDir string `hcl:"history_dir,optional"`
}

// ServerSettings configures the websocket environment server
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	IdleTimeout string `hcl:"idle_timeout,optional"`
	MaxSessions int    `hcl:"max_sessions,optional"`
}

// StoreSettings configures the postgres result store
type StoreSettings struct {
	DSN string `hcl:"dsn,optional"`
}

// Defaults
const (
	DefaultLogLevel    = "info"
	DefaultMatches     = 100
	DefaultMaxSteps    = 10000
	DefaultAddress     = "localhost:8029"
	DefaultIdleTimeout = "5m"
	DefaultMaxSessions = 64
	DefaultAgent       = "random"
)

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and applies defaults. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Match == nil {
		c.Match = &MatchSettings{}
	}
	if c.Simulation == nil {
		c.Simulation = &SimulationSettings{}
	}
	if c.Simulation.Matches == 0 {
		c.Simulation.Matches = DefaultMatches
	}
	if c.Simulation.MaxSteps == 0 {
		c.Simulation.MaxSteps = DefaultMaxSteps
	}
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.IdleTimeout == "" {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.MaxSessions == 0 {
		c.Server.MaxSessions = DefaultMaxSessions
	}
	if c.Store == nil {
		c.Store = &StoreSettings{}
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, err := game.ParseRedealPolicy(c.Match.RedealPolicy); err != nil {
		return err
	}
	if _, err := game.ParseLogLifetime(c.Match.LogLifetime); err != nil {
		return err
	}
	if c.Match.FirstDealer < 0 || c.Match.FirstDealer >= game.NumPlayers {
		return fmt.Errorf("first_dealer must be between 0 and %d", game.NumPlayers-1)
	}

	seen := map[int]bool{}
	for _, s := range c.Seats {
		seat, err := strconv.Atoi(s.Seat)
		if err != nil || seat < 0 || seat >= game.NumPlayers {
			return fmt.Errorf("seat %q: label must be 0-%d", s.Seat, game.NumPlayers-1)
		}
		if seen[seat] {
			return fmt.Errorf("seat %d configured twice", seat)
		}
		seen[seat] = true
		if !agent.ValidKind(s.Agent) {
			return fmt.Errorf("seat %d: unknown agent %q", seat, s.Agent)
		}
		if s.Agent == "lua" && s.Script == "" {
			return fmt.Errorf("seat %d: lua agent requires a script", seat)
		}
	}

	if c.Simulation.Matches < 1 {
		return fmt.Errorf("simulation matches must be positive")
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("simulation workers cannot be negative")
	}
	if c.Simulation.TrackSeat < 0 || c.Simulation.TrackSeat >= game.NumPlayers {
		return fmt.Errorf("track_seat must be between 0 and %d", game.NumPlayers-1)
	}
	if _, err := c.Server.Timeout(); err != nil {
		return err
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be positive")
	}
	return nil
}

// EngineOptions converts the match settings into engine options. The seed
// is not included; callers decide how to seed each engine.
func (c *Config) EngineOptions() ([]game.Option, error) {
	redeal, err := game.ParseRedealPolicy(c.Match.RedealPolicy)
	if err != nil {
		return nil, err
	}
	lifetime, err := game.ParseLogLifetime(c.Match.LogLifetime)
	if err != nil {
		return nil, err
	}
	return []game.Option{
		game.WithRedealPolicy(redeal),
		game.WithLogLifetime(lifetime),
		game.WithFirstDealer(c.Match.FirstDealer),
	}, nil
}

// AgentSpecs returns the agent of every seat; unconfigured seats get the
// default agent.
func (c *Config) AgentSpecs() ([game.NumPlayers]agent.Spec, error) {
	var specs [game.NumPlayers]agent.Spec
	for i := range specs {
		specs[i] = agent.Spec{Kind: DefaultAgent}
	}
	for _, s := range c.Seats {
		seat, err := strconv.Atoi(s.Seat)
		if err != nil || seat < 0 || seat >= game.NumPlayers {
			return specs, fmt.Errorf("seat %q: label must be 0-%d", s.Seat, game.NumPlayers-1)
		}
		specs[seat] = agent.Spec{Kind: s.Agent, Script: s.Script}
	}
	return specs, nil
}

// Timeout parses the idle timeout
func (s *ServerSettings) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(s.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid idle_timeout %q: %w", s.IdleTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("idle_timeout cannot be negative")
	}
	return d, nil
}
