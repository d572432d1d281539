package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/twentynine/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level = "debug"

match {
  seed          = 42
  redeal_policy = "same_dealer"
  log_lifetime  = "match"
  first_dealer  = 2
}

seat "0" {
  agent = "bot"
}

seat "1" {
  agent  = "lua"
  script = "bots/greedy.lua"
}

simulation {
  matches     = 250
  workers     = 4
  track_seat  = 1
  history_dir = "histories"
}

server {
  address      = ":9000"
  idle_timeout = "30s"
}

store {
  dsn = "postgres://localhost/twentynine"
}
`

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(42), cfg.Match.Seed)
	assert.Equal(t, 2, cfg.Match.FirstDealer)
	assert.Len(t, cfg.Seats, 2)

	assert.Equal(t, 250, cfg.Simulation.Matches)
	assert.Equal(t, 4, cfg.Simulation.Workers)
	assert.Equal(t, 1, cfg.Simulation.TrackSeat)
	assert.Equal(t, DefaultMaxSteps, cfg.Simulation.MaxSteps)
	assert.Equal(t, "histories", cfg.Simulation.HistoryDir)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, DefaultMaxSessions, cfg.Server.MaxSessions)
	timeout, err := cfg.Server.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	assert.Equal(t, "postgres://localhost/twentynine", cfg.Store.DSN)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultMatches, cfg.Simulation.Matches)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, DefaultIdleTimeout, cfg.Server.IdleTimeout)
	assert.Empty(t, cfg.Store.DSN)

	specs, err := cfg.AgentSpecs()
	require.NoError(t, err)
	for _, s := range specs {
		assert.Equal(t, agent.Spec{Kind: DefaultAgent}, s)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "twentynine.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Match.Seed)

	require.NoError(t, os.WriteFile(path, []byte("match {"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestAgentSpecs(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample), "sample.hcl")
	require.NoError(t, err)

	specs, err := cfg.AgentSpecs()
	require.NoError(t, err)
	assert.Equal(t, agent.Spec{Kind: "bot"}, specs[0])
	assert.Equal(t, agent.Spec{Kind: "lua", Script: "bots/greedy.lua"}, specs[1])
	assert.Equal(t, agent.Spec{Kind: DefaultAgent}, specs[2])
	assert.Equal(t, agent.Spec{Kind: DefaultAgent}, specs[3])
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	cfg.Match.RedealPolicy = "sideways"
	_, err = cfg.EngineOptions()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"redeal policy", func(c *Config) { c.Match.RedealPolicy = "never" }},
		{"log lifetime", func(c *Config) { c.Match.LogLifetime = "forever" }},
		{"first dealer", func(c *Config) { c.Match.FirstDealer = 4 }},
		{"seat label", func(c *Config) { c.Seats = []SeatConfig{{Seat: "north", Agent: "bot"}} }},
		{"seat range", func(c *Config) { c.Seats = []SeatConfig{{Seat: "7", Agent: "bot"}} }},
		{"duplicate seat", func(c *Config) {
			c.Seats = []SeatConfig{{Seat: "1", Agent: "bot"}, {Seat: "1", Agent: "random"}}
		}},
		{"unknown agent", func(c *Config) { c.Seats = []SeatConfig{{Seat: "0", Agent: "oracle"}} }},
		{"lua without script", func(c *Config) { c.Seats = []SeatConfig{{Seat: "0", Agent: "lua"}} }},
		{"matches", func(c *Config) { c.Simulation.Matches = -1 }},
		{"workers", func(c *Config) { c.Simulation.Workers = -2 }},
		{"track seat", func(c *Config) { c.Simulation.TrackSeat = 4 }},
		{"idle timeout", func(c *Config) { c.Server.IdleTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Server.IdleTimeout = "-1s" }},
		{"max sessions", func(c *Config) { c.Server.MaxSessions = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
