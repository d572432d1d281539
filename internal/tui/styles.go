package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/game"
)

// Palette
var (
	focusColor  = lipgloss.Color("#04B575")
	borderColor = lipgloss.Color("#626262")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(focusColor).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0"))

	BidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	TrumpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Underline(true)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(borderColor)
)

// suitStyles colour a four-colour deck.
var suitStyles = [cards.NumSuits]lipgloss.Style{
	cards.Spades:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true),
	cards.Hearts:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	cards.Diamonds: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")).Bold(true),
	cards.Clubs:    lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
}

var teamStyles = [2]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#F4A261")),
}

// SuitStyle colours a suit
func SuitStyle(s cards.Suit) lipgloss.Style {
	return suitStyles[s]
}

// CardStyle colours a card by suit
func CardStyle(c cards.Card) lipgloss.Style {
	return SuitStyle(c.Suit)
}

// SeatStyle colours a seat by team
func SeatStyle(seat int) lipgloss.Style {
	return teamStyles[game.TeamOf(seat)]
}

// paneStyle is the rounded border around every pane.
func paneStyle(focused bool) lipgloss.Style {
	color := borderColor
	if focused {
		color = focusColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color)
}
