// Package transmit decides which resolved commands are sent to the controller
// and delivers them without holding up frame processing.
package transmit

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultInterval is the minimum spacing used by the time-gated policy.
const DefaultInterval = 200 * time.Millisecond

// Policy names accepted by NewPolicy.
const (
	PolicyChange = "change"
	PolicyTime   = "time"
)

// State is what the transmitter remembers between frames. The zero value is Idle.
type State struct {
	Last     gesture.Command
	LastSent time.Time
}

// Idle reports whether nothing has been emitted yet.
func (s State) Idle() bool {
	return !s.Last.Valid()
}

// Policy decides whether a command is emitted. Next is pure: it returns the state
// to hold afterwards and whether c should be emitted now.
type Policy interface {
	Next(s State, c gesture.Command, now time.Time) (State, bool)
	Name() string
}

// ChangeGated emits the first command and then only commands that differ from
// the last one emitted.
type ChangeGated struct{}

func (ChangeGated) Next(s State, c gesture.Command, now time.Time) (State, bool) {
	if !s.Idle() && s.Last == c {
		return s, false
	}
	return State{Last: c, LastSent: now}, true
}

func (ChangeGated) Name() string { return PolicyChange }

// TimeGated emits the current command whenever at least Interval has passed since
// the last emission, whether or not it changed.
type TimeGated struct {
	Interval time.Duration
}

func (p TimeGated) Next(s State, c gesture.Command, now time.Time) (State, bool) {
	if !s.Idle() && now.Sub(s.LastSent) < p.Interval {
		return s, false
	}
	return State{Last: c, LastSent: now}, true
}

func (TimeGated) Name() string { return PolicyTime }

// NewPolicy returns the policy with the given name. A non-positive interval
// selects DefaultInterval for the time-gated policy.
func NewPolicy(name string, interval time.Duration) (Policy, error) {
	switch name {
	case "", PolicyChange:
		return ChangeGated{}, nil
	case PolicyTime:
		if interval <= 0 {
			interval = DefaultInterval
		}
		return TimeGated{Interval: interval}, nil
	}
	return nil, fmt.Errorf("unknown transmit policy %q", name)
}
