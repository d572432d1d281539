package game

import (
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/randutil"
)

// Option configures an Engine during creation.
type Option func(*engineConfig)

type engineConfig struct {
	rng          *rand.Rand
	logger       *log.Logger
	redeal       RedealPolicy
	logLifetime  LogLifetime
	firstDealer  int
	deckOrder    []cards.Card
	hasDeckOrder bool
}

// WithRNG sets the random source used for shuffling.
func WithRNG(rng *rand.Rand) Option {
	return func(c *engineConfig) {
		c.rng = rng
	}
}

// WithSeed seeds the shuffler deterministically.
func WithSeed(seed int64) Option {
	return func(c *engineConfig) {
		c.rng = randutil.New(seed)
	}
}

// WithLogger sets the operational logger. Engine events are logged at
// debug level. Default discards.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithRedealPolicy decides who deals after an all-pass round.
// Default is RedealRotate.
func WithRedealPolicy(p RedealPolicy) Option {
	return func(c *engineConfig) {
		c.redeal = p
	}
}

// WithLogLifetime decides whether the game log is cleared every round or
// kept for the whole match. Default is LogPerRound.
func WithLogLifetime(l LogLifetime) Option {
	return func(c *engineConfig) {
		c.logLifetime = l
	}
}

// WithFirstDealer sets the dealer of the first round. Default is seat 0.
func WithFirstDealer(seat int) Option {
	return func(c *engineConfig) {
		c.firstDealer = seat
	}
}

// WithDeckOrder stacks the deck: every deal uses exactly this card order
// instead of shuffling. The order must be a permutation of the 32 cards.
func WithDeckOrder(order []cards.Card) Option {
	return func(c *engineConfig) {
		c.deckOrder = slices.Clone(order)
		c.hasDeckOrder = true
	}
}

// New creates an engine ready for InitRound.
//
// Example usage:
//
//	// Production - time-seeded shuffling
//	e := game.New(game.WithLogger(logger))
//
//	// Testing - deterministic shuffling
//	e := game.New(game.WithSeed(42))
func New(opts ...Option) *Engine {
	cfg := &engineConfig{
		redeal:      RedealRotate,
		logLifetime: LogPerRound,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.firstDealer < 0 || cfg.firstDealer >= NumPlayers {
		panic("first dealer out of range")
	}
	if cfg.hasDeckOrder {
		if _, err := cards.NewStackedDeck(cfg.deckOrder); err != nil {
			panic(err.Error())
		}
	}
	if cfg.rng == nil {
		cfg.rng, _ = randutil.NewTimeSeeded()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	e := &Engine{
		rng:         cfg.rng,
		logger:      cfg.logger.WithPrefix("engine"),
		redeal:      cfg.redeal,
		logLifetime: cfg.logLifetime,
		firstDealer: cfg.firstDealer,
		deck:        cards.NewDeck(cfg.rng),
	}
	if cfg.hasDeckOrder {
		e.deckOrder = cfg.deckOrder
	}
	for seat := range e.players {
		e.players[seat] = newPlayer(seat)
	}
	e.ResetMatch()
	return e
}
