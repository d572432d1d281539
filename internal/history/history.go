// Package history writes finished rounds as human-readable TOML files, one
// file per round, for replay and offline analysis.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lox/twentynine/internal/fileutil"
	"github.com/lox/twentynine/internal/game"
)

// Variant identifies the game in every history file.
const Variant = "29"

// RoundHistory is the on-disk form of a finished round. Hands hold every
// card each seat was dealt, so files are full-information records.
type RoundHistory struct {
	Variant       string     `toml:"variant"`
	Match         string     `toml:"match"`
	Round         int        `toml:"round"`
	Seed          int64      `toml:"seed,omitempty"`
	Time          string     `toml:"time,omitempty"`
	Players       []string   `toml:"players,omitempty"`
	Dealer        int        `toml:"dealer"`
	Redeals       int        `toml:"redeals"`
	Hands         [][]string `toml:"hands"`
	Actions       []string   `toml:"actions"`
	BidValue      int        `toml:"bid_value"`
	BidWinner     int        `toml:"bid_winner"`
	Trump         string     `toml:"trump,omitempty"`
	TrumpRevealed bool       `toml:"trump_revealed"`
	Successful    bool       `toml:"bid_successful"`
	TeamPoints    []int      `toml:"team_points"`
	Payoffs       []float64  `toml:"payoffs"`
	MatchScores   []int      `toml:"match_scores"`
	Log           []string   `toml:"log,omitempty"`
}

// Meta carries the match context a round record does not know about
type Meta struct {
	Match   string
	Seed    int64
	Players []string
	Time    time.Time
	Log     []string
}

// FormatAction renders one action as "p<seat> <verb> <arg>".
func FormatAction(seat int, a game.Action) string {
	player := fmt.Sprintf("p%d", seat)
	switch a.Kind {
	case game.ActionBid:
		return fmt.Sprintf("%s bid %d", player, a.Bid)
	case game.ActionPass:
		return player + " pass"
	case game.ActionTrump:
		return fmt.Sprintf("%s trump %s", player, a.Suit)
	case game.ActionPlay:
		return fmt.Sprintf("%s play %s", player, a.Card)
	default:
		return "# " + player + " " + a.String()
	}
}

// FromRecord converts an engine round record.
func FromRecord(rec game.RoundRecord, meta Meta) *RoundHistory {
	h := &RoundHistory{
		Variant:       Variant,
		Match:         meta.Match,
		Round:         rec.Round,
		Seed:          meta.Seed,
		Players:       meta.Players,
		Dealer:        rec.Dealer,
		Redeals:       rec.Summary.Redeals,
		BidValue:      rec.Summary.BidValue,
		BidWinner:     rec.Summary.BidWinner,
		TrumpRevealed: rec.Summary.TrumpRevealed,
		Successful:    rec.Summary.Successful,
		TeamPoints:    rec.Summary.TeamPoints[:],
		Payoffs:       rec.Payoffs[:],
		MatchScores:   rec.MatchScores[:],
		Log:           meta.Log,
	}
	if !meta.Time.IsZero() {
		h.Time = meta.Time.UTC().Format(time.RFC3339)
	}
	if rec.Trump != nil {
		h.Trump = rec.Trump.String()
	}

	h.Hands = make([][]string, len(rec.Hands))
	for seat, hand := range rec.Hands {
		h.Hands[seat] = make([]string, len(hand))
		for i, c := range hand {
			h.Hands[seat][i] = c.String()
		}
	}

	for _, b := range rec.Bids {
		h.Actions = append(h.Actions, FormatAction(b.Seat, b.Action))
	}
	if rec.Trump != nil {
		h.Actions = append(h.Actions, FormatAction(rec.Summary.BidWinner, game.ChooseTrump(*rec.Trump)))
	}
	for _, t := range rec.Tricks {
		for _, p := range t.Plays {
			h.Actions = append(h.Actions, FormatAction(p.Seat, game.Play(p.Card)))
		}
	}
	return h
}

// Encode writes the round history as TOML.
func Encode(w io.Writer, h *RoundHistory) error {
	if h == nil {
		return fmt.Errorf("history: round history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(h)
}

// Decode reads a round history written by Encode.
func Decode(r io.Reader) (*RoundHistory, error) {
	var h RoundHistory
	if _, err := toml.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("history: decoding: %w", err)
	}
	if h.Variant != Variant {
		return nil, fmt.Errorf("history: unexpected variant %q", h.Variant)
	}
	return &h, nil
}

// ReadFile decodes a history file from disk.
func ReadFile(path string) (*RoundHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Writer stores round histories under a directory, one subdirectory per
// match. It is safe for concurrent use as long as rounds of one match are
// written by one goroutine.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Path returns where a round of a match is written
func (w *Writer) Path(match string, round int) string {
	return filepath.Join(w.dir, match, fmt.Sprintf("round-%03d.toml", round))
}

// Write stores the history atomically and returns its path.
func (w *Writer) Write(h *RoundHistory) (string, error) {
	if h.Match == "" {
		return "", fmt.Errorf("history: round %d has no match id", h.Round)
	}
	path := w.Path(h.Match, h.Round)
	err := fileutil.WriteAtomic(path, 0o644, func(out io.Writer) error {
		return Encode(out, h)
	})
	if err != nil {
		return "", fmt.Errorf("history: writing %s: %w", path, err)
	}
	return path, nil
}
