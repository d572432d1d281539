package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/env"
	"github.com/lox/twentynine/internal/game"
	"github.com/lox/twentynine/internal/randutil"
)

// PlayCmd plays one match between agents, printing the game log as it grows
type PlayCmd struct {
	Seed   int64    `help:"Match seed (0 uses the config seed, then the clock)"`
	Agents []string `sep:"," help:"Agent per seat, overriding the config: random, first, bot or lua:<script>"`
	Rounds int      `help:"Stop after this many rounds (0 plays until a team wins)"`
}

func (c *PlayCmd) Run(g *Globals) error {
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

	seed := seedOr(c.Seed, cfg.Match.Seed)
	if seed == 0 {
		_, seed = randutil.NewTimeSeeded()
	}
	logger.Info("Starting match", "seed", seed)

	agents, err := buildAgents(specs, seed, logger)
	if err != nil {
		return err
	}
	defer agent.Close(agents[:]...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := game.New(append(opts, game.WithSeed(seed), game.WithLogger(logger))...)
	return playMatch(ctx, os.Stdout, engine, agents, c.Rounds, cfg.Simulation.MaxSteps)
}

// buildAgents creates the agent of every seat, each with its own random
// stream derived from seed.
func buildAgents(specs [game.NumPlayers]agent.Spec, seed int64, logger *log.Logger) ([game.NumPlayers]agent.Agent, error) {
	var agents [game.NumPlayers]agent.Agent
	for seat, spec := range specs {
		a, err := agent.Build(spec, randutil.New(randutil.Derive(seed, seat+1)), logger.With("player", seat))
		if err != nil {
			_ = agent.Close(agents[:seat]...)
			return agents, fmt.Errorf("seat %d: %w", seat, err)
		}
		agents[seat] = a
	}
	return agents, nil
}

// playMatch plays rounds until a team wins the match or maxRounds rounds
// have been played. New game log lines are printed after every action and
// a summary after every round.
func playMatch(ctx context.Context, w io.Writer, engine *game.Engine, agents [game.NumPlayers]agent.Agent, maxRounds, maxSteps int) error {
	header(w, "29 Match")
	names := make([]string, len(agents))
	for seat, a := range agents {
		names[seat] = fmt.Sprintf("%d=%s", seat, a.Name())
	}
	fmt.Fprintf(w, "  Players: %s\n", strings.Join(names, ", "))

	for played := 0; maxRounds == 0 || played < maxRounds; played++ {
		if _, decided := engine.MatchWinner(); decided {
			break
		}

		before := len(engine.GameLog())
		if _, _, err := engine.InitRound(); err != nil {
			return err
		}
		seen := before
		if len(engine.GameLog()) <= before {
			seen = 0
		}
		header(w, fmt.Sprintf("Round %d", engine.Round()))
		seen = printLog(w, engine.GameLog(), seen)

		for steps := 0; !engine.IsRoundOver(); steps++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if maxSteps > 0 && steps >= maxSteps {
				return fmt.Errorf("%w: %d steps in round %d", env.ErrStepLimit, steps, engine.Round())
			}
			seat := engine.CurrentPlayer()
			decision, err := agents[seat].MakeDecision(engine.StateFor(seat))
			if err == nil {
				_, _, err = engine.ApplyAction(decision.Action)
			}
			if err != nil {
				return fmt.Errorf("player %d (%s): %w", seat, agents[seat].Name(), err)
			}
			seen = printLog(w, engine.GameLog(), seen)
		}

		printRoundSummary(w, engine.RoundSummary(), engine.MatchScores())
	}

	scores := engine.MatchScores()
	if team, ok := engine.MatchWinner(); ok {
		header(w, fmt.Sprintf("Team %d wins the match", team))
	} else {
		header(w, "Match unfinished")
	}
	fmt.Fprintf(w, "  Final score: Team 0: %d | Team 1: %d after %d rounds\n", scores[0], scores[1], engine.Round())
	return nil
}

func header(w io.Writer, title string) {
	line := strings.Repeat("=", 30)
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n", line, title, line)
}

// printLog writes lines[seen:] and returns the new count of seen lines.
func printLog(w io.Writer, lines []string, seen int) int {
	seen = min(seen, len(lines))
	for _, line := range lines[seen:] {
		fmt.Fprintf(w, "  -> %s\n", line)
	}
	return len(lines)
}

func printRoundSummary(w io.Writer, s game.RoundSummary, scores [2]int) {
	fmt.Fprintln(w, "\n--- Round Summary ---")
	if s.HasBid() {
		fmt.Fprintf(w, "  Bid: %d by player %d (team %d)\n", s.BidValue, s.BidWinner, s.BiddingTeam)
		if s.Trump != nil {
			revealed := "never revealed"
			if s.TrumpRevealed {
				revealed = "revealed"
			}
			fmt.Fprintf(w, "  Trump: %s (%s)\n", s.Trump.Name(), revealed)
		}
		result := "LOST"
		if s.Successful {
			result = "WON"
		}
		fmt.Fprintf(w, "  Team %d %s the bid.\n", s.BiddingTeam, result)
		fmt.Fprintf(w, "  Points: Team 0: %d | Team 1: %d\n", s.TeamPoints[0], s.TeamPoints[1])
	} else {
		fmt.Fprintln(w, "  Round ended without a bid.")
	}
	fmt.Fprintf(w, "\n  Match score: Team 0: %d | Team 1: %d\n", scores[0], scores[1])
}
