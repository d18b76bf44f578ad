package relay

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	receivedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#00B7C3")).
			Padding(0, 1)
	sendStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#C850C0")).
			PaddingLeft(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Console renders relay activity as styled blocks.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewConsole writes to out. A nil out discards everything.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{out: out, now: time.Now}
}

func (c *Console) stamp() string {
	return c.now().Format("15:04:05.000")
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// Received logs an incoming gesture message.
func (c *Console) Received(what, value string) {
	body := labelStyle.Render("Received @ "+c.stamp()) + "\n" +
		what + ": " + valueStyle.Render(value)
	c.println(receivedStyle.Render(body))
}

// Sent logs a command written to the actuator.
func (c *Console) Sent(command string) {
	body := labelStyle.Render("SERIAL @ "+c.stamp()) + "\n" +
		"Sending: " + valueStyle.Render(command)
	c.println(sendStyle.Render(body))
}

// Connected logs a new client.
func (c *Console) Connected(addr string) {
	c.println(okStyle.Render("Client connected from " + addr))
}

// Disconnected logs a client going away.
func (c *Console) Disconnected(addr string) {
	c.println(warnStyle.Render("Client disconnected: " + addr))
}

// Info logs a neutral status line.
func (c *Console) Info(msg string) {
	c.println(okStyle.Render(msg))
}

// Warn logs a recoverable problem.
func (c *Console) Warn(msg string) {
	c.println(warnStyle.Render(msg))
}

// Error logs a failure.
func (c *Console) Error(msg string) {
	c.println(errorStyle.Render(msg))
}
