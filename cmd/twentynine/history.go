package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/twentynine/internal/history"
)

// HistoryCmd is the root command for round history utilities
type HistoryCmd struct {
	Show HistoryShowCmd `cmd:"" help:"Print round history files written by simulate"`
}

// HistoryShowCmd renders round history files
type HistoryShowCmd struct {
	Files   []string `arg:"" name:"file" help:"Round history files (.toml)"`
	NoLog   bool     `help:"Omit the game log"`
	Actions bool     `help:"List every action in order"`
}

func (cmd *HistoryShowCmd) Run() error {
	if len(cmd.Files) == 0 {
		return errors.New("history show requires at least one file")
	}
	for i, path := range cmd.Files {
		h, err := history.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		renderHistory(os.Stdout, h, !cmd.NoLog, cmd.Actions)
	}
	return nil
}

func renderHistory(w io.Writer, h *history.RoundHistory, withLog, withActions bool) {
	header(w, fmt.Sprintf("Match %s, round %d", h.Match, h.Round))
	if h.Time != "" {
		fmt.Fprintf(w, "  Played: %s (seed %d)\n", h.Time, h.Seed)
	}
	if len(h.Players) > 0 {
		fmt.Fprintf(w, "  Players: %s\n", strings.Join(h.Players, ", "))
	}
	fmt.Fprintf(w, "  Dealer: player %d, redeals: %d\n", h.Dealer, h.Redeals)
	for seat, hand := range h.Hands {
		fmt.Fprintf(w, "  Hand %d: %s\n", seat, strings.Join(hand, " "))
	}

	if withActions {
		fmt.Fprintln(w, "\n--- Actions ---")
		for _, a := range h.Actions {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}
	if withLog && len(h.Log) > 0 {
		fmt.Fprintln(w, "\n--- Game Log ---")
		for _, line := range h.Log {
			fmt.Fprintf(w, "  -> %s\n", line)
		}
	}

	fmt.Fprintln(w, "\n--- Result ---")
	if h.BidWinner < 0 {
		fmt.Fprintln(w, "  Round ended without a bid.")
	} else {
		result := "LOST"
		if h.Successful {
			result = "WON"
		}
		trump := h.Trump
		if trump == "" {
			trump = "none"
		} else if !h.TrumpRevealed {
			trump += " (never revealed)"
		}
		fmt.Fprintf(w, "  Bid %d by player %d, trump %s: %s\n", h.BidValue, h.BidWinner, trump, result)
	}
	if len(h.TeamPoints) == 2 {
		fmt.Fprintf(w, "  Points: Team 0: %d | Team 1: %d\n", h.TeamPoints[0], h.TeamPoints[1])
	}
	if len(h.MatchScores) == 2 {
		fmt.Fprintf(w, "  Match score: Team 0: %d | Team 1: %d\n", h.MatchScores[0], h.MatchScores[1])
	}
}
