// Package monitor is a terminal dashboard that follows a running pipeline's event stream.
package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/mudra/internal/app"
)

// historyLen is how many emitted commands the dashboard keeps.
const historyLen = 12

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	commandStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	msgs <-chan tea.Msg

	connected bool
	url       string
	err       error

	last    app.Event
	hasLast bool
	frames  int
	emitted int
	history []app.Event
	table   table.Model

	width int
}

// NewModel creates a dashboard fed by msgs (see Listen).
func NewModel(msgs <-chan tea.Msg) *Model {
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(historyLen),
		table.WithWidth(62),
	)
	t.SetStyles(historyTableStyles())
	return &Model{msgs: msgs, table: t}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitFor(m.msgs)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case connectedMsg:
		m.connected = true
		m.url = msg.url
		m.err = nil
		return m, waitFor(m.msgs)
	case disconnectedMsg:
		m.connected = false
		m.err = msg.err
		return m, waitFor(m.msgs)
	case eventMsg:
		m.apply(app.Event(msg))
		return m, waitFor(m.msgs)
	default:
		return m, nil
	}
}

func (m *Model) apply(ev app.Event) {
	m.last = ev
	m.hasLast = true
	m.frames++
	if ev.Emitted {
		m.emitted++
		m.history = append(m.history, ev)
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}
		m.table.SetRows(historyRows(m.history))
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mudra monitor"))
	b.WriteString("  ")
	switch {
	case m.connected:
		b.WriteString(mutedStyle.Render("connected to " + m.url))
	case m.err != nil:
		b.WriteString(errorStyle.Render("disconnected: " + m.err.Error()))
	default:
		b.WriteString(mutedStyle.Render("connecting..."))
	}
	b.WriteString("\n\n")

	if !m.hasLast {
		b.WriteString(mutedStyle.Render("waiting for frames"))
		b.WriteString("\n")
		return b.String()
	}

	c := m.last.Classification
	state := "enabled"
	if !m.last.Enabled {
		state = "paused"
	}
	cards := []string{
		card("Left hand", c.Left.String()),
		card("Right hand", c.Right.String()),
		card("Command", commandStyle.Render(c.Command.String())),
		card("Hands", fmt.Sprintf("%d", m.last.Hands)),
		card("Detection", state),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")

	b.WriteString(mutedStyle.Render(fmt.Sprintf("frames %d  emitted %d", m.frames, m.emitted)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("recent: "))
	b.WriteString(historyString(m.history))
	b.WriteString("\n\n")
	if len(m.history) > 0 {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
	}
	b.WriteString(mutedStyle.Render("up/down to scroll, q to quit"))
	b.WriteString("\n")
	return b.String()
}

func card(title, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value))
}

func historyString(h []app.Event) string {
	if len(h) == 0 {
		return "-"
	}
	parts := make([]string, len(h))
	for i, ev := range h {
		parts[i] = ev.Classification.Command.String()
	}
	return strings.Join(parts, " ")
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Cmd", Width: 3},
		{Title: "Left hand", Width: 19},
		{Title: "Right hand", Width: 20},
	}
}

// historyRows lists emissions newest first.
func historyRows(h []app.Event) []table.Row {
	rows := make([]table.Row, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		c := h[i].Classification
		rows = append(rows, table.Row{
			h[i].Timestamp.Format("15:04:05.000"),
			c.Command.String(),
			c.Left.String(),
			c.Right.String(),
		})
	}
	return rows
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
