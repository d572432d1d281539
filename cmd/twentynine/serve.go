package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/twentynine/internal/server"
)

// ServeCmd serves the environment over websockets
type ServeCmd struct {
	Addr        string `help:"Listen address (default from config)"`
	MaxSessions int    `help:"Maximum concurrent sessions (0 uses the config)"`
	DSN         string `env:"TWENTYNINE_DSN" help:"Postgres connection string for recording results"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	idle, err := cfg.Server.Timeout()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := server.Config{
		IdleTimeout:   idle,
		MaxSessions:   intOr(c.MaxSessions, cfg.Server.MaxSessions),
		EngineOptions: opts,
	}
	if dsn := stringOr(c.DSN, cfg.Store.DSN); dsn != "" {
		db, err := openStore(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		config.Store = db
	}

	addr := stringOr(c.Addr, cfg.Server.Address)
	logger.Info("Starting 29 environment server",
		"addr", addr,
		"idle_timeout", idle,
		"max_sessions", config.MaxSessions,
		"store", config.Store != nil)

	return server.New(config, logger).ListenAndServe(ctx, addr)
}
