// Package tui lets a person play one seat against agents in the terminal.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/twentynine/cards"
	"github.com/lox/twentynine/internal/agent"
	"github.com/lox/twentynine/internal/game"
)

// maxAgentSteps bounds how many agent decisions run between two human
// inputs, so agents that always pass cannot spin forever.
const maxAgentSteps = 500

// Model is the Bubble Tea model of a human-vs-agents match. The engine is
// driven synchronously from Update: after each human action the agents
// act until it is the human's turn again or the round ends.
type Model struct {
	engine *game.Engine
	agents [game.NumPlayers]agent.Agent
	human  int
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	seen        int
	status      string
	errMsg      string
	chosenTrump *cards.Suit
	fatal       bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// New creates the model and deals the first round. agents[human] is
// ignored.
func New(engine *game.Engine, agents [game.NumPlayers]agent.Agent, human int, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		engine:      engine,
		agents:      agents,
		human:       human,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
	m.startRound()
	return m
}

// Run starts the program on the alternate screen and blocks until the
// player quits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if m.submit(input) {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles one line of input and reports whether to quit.
func (m *Model) submit(input string) bool {
	m.errMsg = ""
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	if m.fatal {
		return true
	}

	if m.engine.IsRoundOver() {
		if _, over := m.engine.MatchWinner(); over {
			m.engine.ResetMatch()
			m.seen = 0
			m.addLog(HeaderStyle.Render(" New match "))
		}
		m.startRound()
		return false
	}

	if m.engine.CurrentPlayer() != m.human {
		return false
	}
	a, err := game.ParseAction(input)
	if err != nil {
		m.errMsg = fmt.Sprintf("Cannot read %q. Try one of: %s", input, m.legalText())
		return false
	}
	if _, _, err := m.engine.ApplyAction(a); err != nil {
		var illegal *game.IllegalActionError
		if errors.As(err, &illegal) {
			m.errMsg = fmt.Sprintf("%s is not allowed: %s", a, illegal.Reason)
		} else {
			m.errMsg = err.Error()
		}
		return false
	}
	if a.Kind == game.ActionTrump {
		suit := a.Suit
		m.chosenTrump = &suit
	}
	m.advance()
	return false
}

func (m *Model) startRound() {
	m.chosenTrump = nil
	before := len(m.engine.GameLog())
	if _, _, err := m.engine.InitRound(); err != nil {
		m.fail(err)
		return
	}
	// A log that did not grow was cleared for the new round.
	if len(m.engine.GameLog()) <= before {
		m.seen = 0
	}
	m.advance()
}

// advance lets the agents act until the human is to act or the round ends.
func (m *Model) advance() {
	for steps := 0; !m.engine.IsRoundOver() && m.engine.CurrentPlayer() != m.human; steps++ {
		if steps >= maxAgentSteps {
			m.fail(fmt.Errorf("agents took more than %d steps", maxAgentSteps))
			return
		}
		seat := m.engine.CurrentPlayer()
		decision, err := m.agents[seat].MakeDecision(m.engine.StateFor(seat))
		if err == nil {
			_, _, err = m.engine.ApplyAction(decision.Action)
		}
		if err != nil {
			m.fail(fmt.Errorf("player %d (%s): %w", seat, m.agents[seat].Name(), err))
			return
		}
		if decision.Reasoning != "" {
			m.logger.Debug("Agent decision", "player", seat, "action", decision.Action, "reasoning", decision.Reasoning)
		}
	}
	m.syncLog()
	m.updateStatus()
}

func (m *Model) fail(err error) {
	m.logger.Error("Game stopped", "error", err)
	m.syncLog()
	m.fatal = true
	m.errMsg = err.Error()
	m.status = "The game cannot continue. Enter to quit."
}

// syncLog copies engine log lines not shown yet.
func (m *Model) syncLog() {
	lines := m.engine.GameLog()
	m.seen = min(m.seen, len(lines))
	for _, line := range lines[m.seen:] {
		m.addLog(line)
	}
	m.seen = len(lines)
}

func (m *Model) updateStatus() {
	if !m.engine.IsRoundOver() {
		m.status = fmt.Sprintf("Your turn (%s)", m.engine.Phase())
		return
	}
	sum := m.engine.RoundSummary()
	payoff := m.engine.Payoffs()[m.human]
	result := ErrorStyle.Render("You lost the round.")
	if payoff > 0 {
		result = SuccessStyle.Render("You won the round!")
	}
	m.status = fmt.Sprintf("%s Team %d bid %d and took %d points.", result,
		sum.BiddingTeam, sum.BidValue, sum.TeamPoints[sum.BiddingTeam])
	if team, over := m.engine.MatchWinner(); over {
		m.status += fmt.Sprintf(" Team %d wins the match. Enter for a new match.", team)
	} else {
		m.status += " Enter for the next round."
	}
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) legalText() string {
	var out []string
	for _, a := range m.engine.LegalActions() {
		out = append(out, a.String())
	}
	return strings.Join(out, " ")
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := paneStyle(m.focusedPane == 1).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := paneStyle(false).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logPane := paneStyle(m.focusedPane == 0).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows scores, bidding and the current trick
func (m *Model) renderSidebarPane() string {
	state := m.engine.StateFor(m.human)
	var b strings.Builder

	scores := state.MatchScores
	b.WriteString(ScoreStyle.Render(fmt.Sprintf("Match: us %d, them %d", scores[game.TeamOf(m.human)], scores[1-game.TeamOf(m.human)])))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Round %d, dealer P%d\n", m.engine.Round(), state.Dealer))
	if state.BidWinner != game.NoSeat {
		b.WriteString(fmt.Sprintf("Bid: %d by P%d\n", state.BidValue, state.BidWinner))
	} else {
		b.WriteString("Bid: none yet\n")
	}

	switch {
	case state.TrumpSuit != nil:
		b.WriteString("Trump: " + TrumpStyle.Render(state.TrumpSuit.Name()) + "\n")
	case m.chosenTrump != nil:
		b.WriteString("Trump: " + TrumpStyle.Render(m.chosenTrump.Name()) + " (hidden)\n")
	default:
		b.WriteString("Trump: hidden\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Players:"))
	b.WriteString("\n")
	for seat := range game.NumPlayers {
		name := "you"
		if seat != m.human {
			name = m.agents[seat].Name()
		}
		marker := " "
		if seat == state.CurrentPlayer && !m.engine.IsRoundOver() {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %-10s %d cards\n", marker, SeatStyle(seat).Render(fmt.Sprintf("P%d", seat)), name, state.HandSizes[seat]))
	}

	if len(state.Trick) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Trick:"))
		b.WriteString("\n")
		for _, p := range state.Trick {
			b.WriteString(fmt.Sprintf("  %s %s\n", SeatStyle(p.Seat).Render(fmt.Sprintf("P%d", p.Seat)), CardStyle(p.Card).Render(p.Card.Pretty())))
		}
	}
	return b.String()
}

// renderActionPane renders the hand, legal actions and input
func (m *Model) renderActionPane() string {
	state := m.engine.StateFor(m.human)
	var b strings.Builder

	b.WriteString(HandInfoStyle.Render("Hand: "))
	b.WriteString(formatCards(state.Hand))
	b.WriteString("\n")

	if state.ToAct() {
		b.WriteString(m.renderAvailableActions(state.LegalActions))
		b.WriteString("\n")
		m.actionInput.Placeholder = "pass, 17, H, SJ ..."
	} else {
		m.actionInput.Placeholder = "Enter to continue, 'quit' to exit"
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func (m *Model) renderAvailableActions(actions []game.Action) string {
	var out []string
	for _, a := range actions {
		switch a.Kind {
		case game.ActionPass:
			out = append(out, PassStyle.Render("[pass]"))
		case game.ActionBid:
			out = append(out, BidStyle.Render(fmt.Sprintf("[%d]", a.Bid)))
		case game.ActionTrump:
			out = append(out, TrumpStyle.Render("["+a.Suit.String()+"]"))
		case game.ActionPlay:
			out = append(out, CardStyle(a.Card).Render("["+a.Card.String()+"]"))
		}
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(out, " ")
}

func formatCards(cs []cards.Card) string {
	if len(cs) == 0 {
		return "[]"
	}
	formatted := make([]string, len(cs))
	for i, c := range cs {
		formatted[i] = CardStyle(c).Render(c.Pretty())
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
