// Package tui is a Bubble Tea front-end for the console commands.
package tui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/rhythmbet/internal/console"
	"github.com/lox/rhythmbet/internal/game"
)

const (
	paneLog = iota
	paneInput
)

// Model is the Bubble Tea model of a game session.
type Model struct {
	game    *game.Game
	console *console.Console
	output  *bytes.Buffer
	logger  *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	gameLog     []string
	focusedPane int
	quitting    bool

	width       int
	height      int
	initialized bool
}

// New creates a model driving g.
func New(g *game.Game, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "join alice bob, start, next, bet alice bob 2, play alice 9876543, help"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = CommandStyle
	ti.TextStyle = LogStyle
	ti.Prompt = "> "

	out := &bytes.Buffer{}
	return &Model{
		game:        g,
		console:     console.New(g, out, logger),
		output:      out,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		gameLog:     []string{InfoStyle.Render("Type help for the list of commands.")},
		focusedPane: paneInput,
	}
}

// Run starts an interactive session on the terminal.
func Run(g *game.Game, logger *log.Logger, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(g, logger), opts...).Run()
	return err
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == paneLog {
				m.focusedPane = paneInput
				m.input.Focus()
			} else {
				m.focusedPane = paneLog
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == paneInput {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if m.submit(line) {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs line through the console and records the result. It reports
// whether the user asked to quit.
func (m *Model) submit(line string) bool {
	if line == "" {
		return false
	}
	m.addLog(CommandStyle.Render("> " + line))

	m.output.Reset()
	err := m.console.Execute(line)
	if errors.Is(err, console.ErrQuit) {
		return true
	}
	if text := strings.TrimRight(m.output.String(), "\n"); text != "" {
		m.addLog(LogStyle.Render(text))
	}
	if err != nil {
		m.addLog(ErrorStyle.Render("error: " + err.Error()))
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
	return false
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
}

// Log returns the log entries shown so far.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputContent := m.renderInputPane()
	inputHeight := lipgloss.Height(inputContent)
	inputPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(paneInput)).
		Width(max(m.width-2, 1)).
		Render(inputContent)

	sidebar := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebar), 28)
	paneHeight := max(m.height-inputHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebar)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(paneLog)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, top, inputPane)
}

func (m *Model) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" %s ", m.game.GameType())))
	b.WriteString("\n")
	switch m.game.Phase() {
	case game.PhaseUnavailable, game.PhaseFinished:
		b.WriteString(PhaseStyle.Render(m.game.Phase().String()))
	default:
		b.WriteString(PhaseStyle.Render(fmt.Sprintf("Turn %d/%d %s", m.game.Turn(), m.game.Turns(), m.game.Phase())))
	}
	b.WriteString("\n")
	if q, ok := m.game.Quest(); ok && m.game.Phase() != game.PhaseFinished {
		b.WriteString(WarningStyle.Render(q.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	standings := m.game.Standings()
	if len(standings) == 0 {
		b.WriteString(InfoStyle.Render("No players yet"))
		return b.String()
	}
	top := standings[0].Score
	for _, p := range standings {
		line := fmt.Sprintf("%-12s %5d", p.ID, p.Score)
		if p.Score == top {
			line = LeaderStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.game.CardState() != game.CardUnavailable {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Card: " + m.game.CardState().String()))
	}
	return b.String()
}

func (m *Model) renderInputPane() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == paneLog {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}
