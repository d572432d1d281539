package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
	"github.com/muesli/termenv"
)

// RulesCmd prints the flat action id table and card values
type RulesCmd struct{}

func (c *RulesCmd) Run(g *Globals) error {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	printRules(os.Stdout)
	return nil
}

func printRules(w io.Writer) {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	styled := func(t *table.Table) *table.Table {
		return t.Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	}

	actions := styled(table.New()).Headers("IDs", "Action", "Meaning")
	for _, suit := range cards.Suits {
		first := cards.NewCard(suit, cards.Ranks[0]).ID()
		last := cards.NewCard(suit, cards.Ranks[len(cards.Ranks)-1]).ID()
		actions.Row(fmt.Sprintf("%d-%d", first, last), "play", fmt.Sprintf("%s cards in rank order", suit.Name()))
	}
	actions.Row(
		fmt.Sprintf("%d-%d", game.Bid(game.MinBid).ID(), game.Bid(game.MaxBid).ID()),
		"bid",
		fmt.Sprintf("bid value = id - %d (%d-%d)", game.BidIDOffset, game.MinBid, game.MaxBid),
	)
	actions.Row(fmt.Sprint(game.PassID), "pass", "pass during bidding")
	for _, suit := range cards.Suits {
		actions.Row(fmt.Sprint(game.ChooseTrump(suit).ID()), "trump", fmt.Sprintf("bid winner names %s trump", suit.Name()))
	}

	ranks := styled(table.New()).Headers("Rank", "Points")
	for _, rank := range cards.Ranks {
		ranks.Row(rank.String(), fmt.Sprint(rank.Points()))
	}

	names := make([]string, len(cards.Ranks))
	for i, r := range cards.Ranks {
		names[i] = r.String()
	}

	fmt.Fprintf(w, "Actions (%d ids):\n%s\n\n", game.NumActions, actions.Render())
	fmt.Fprintf(w, "Ranks, highest first (%s):\n%s\n\n", strings.Join(names, " "), ranks.Render())
	fmt.Fprintf(w, "Each deck holds %d points. The bidding team needs at least its bid.\n", cards.TotalPoints(cards.Full()))
	fmt.Fprintf(w, "A won bid scores +1 for the bidding team, a lost bid -1.\n")
	fmt.Fprintf(w, "A team reaching %d wins the match; one reaching %d loses it.\n", game.WinningScore, game.LosingScore)
}
