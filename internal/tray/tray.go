// Package tray provides a system tray interface for the mudra gesture pipeline.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/gesture"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle  *systray.MenuItem
	menuLeft    *systray.MenuItem
	menuRight   *systray.MenuItem
	menuCommand *systray.MenuItem
}

// New creates a new Tray reflecting the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, unblocking Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

// statusTitles returns the left, right and command menu titles for c.
func statusTitles(c gesture.Classification) (left, right, command string) {
	return "Left: " + c.Left.String(),
		"Right: " + c.Right.String(),
		"Command: " + c.Command.String()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-gesture motor control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture detection")
	systray.AddSeparator()

	left, right, command := statusTitles(gesture.ClassifyFrame(nil))
	t.menuLeft = systray.AddMenuItem(left, "Left hand motor selection")
	t.menuLeft.Disable()
	t.menuRight = systray.AddMenuItem(right, "Right hand rotation")
	t.menuRight.Disable()
	t.menuCommand = systray.AddMenuItem(command, "Last command")
	t.menuCommand.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus shows the latest classification in the menu.
func (t *Tray) SetStatus(c gesture.Classification) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLeft == nil {
		return
	}
	left, right, command := statusTitles(c)
	t.menuLeft.SetTitle(left)
	t.menuRight.SetTitle(right)
	t.menuCommand.SetTitle(command)
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
