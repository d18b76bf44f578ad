package relay

import (
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/transport"
)

// Servo bank limits.
const (
	Channels     = 6
	MinAngle     = 0
	MaxAngle     = 180
	DefaultAngle = 90
	DefaultStep  = 1
)

// ServoBank tracks the angle of each motor channel. Motor N drives channel N-1.
type ServoBank struct {
	mu     sync.Mutex
	angles [Channels]int
	step   int
}

// NewServoBank creates a bank with every channel at DefaultAngle.
// A non-positive step uses DefaultStep.
func NewServoBank(step int) *ServoBank {
	if step <= 0 {
		step = DefaultStep
	}
	b := &ServoBank{step: step}
	for i := range b.angles {
		b.angles[i] = DefaultAngle
	}
	return b
}

// Apply steps the selected motor one increment in the given direction and
// reports whether any angle changed. Non-motor selections and NoGesture leave the bank untouched.
func (b *ServoBank) Apply(left gesture.LeftSelection, right gesture.RightDirection) (transport.ServoAngles, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	motor := left.Motor()
	if motor == 0 {
		return b.snapshot(), false
	}
	ch := motor - 1

	before := b.angles[ch]
	switch right {
	case gesture.RightClockwise:
		b.angles[ch] = clamp(before + b.step)
	case gesture.RightAntiClockwise:
		b.angles[ch] = clamp(before - b.step)
	}
	return b.snapshot(), b.angles[ch] != before
}

// Angles returns the current angle of every channel.
func (b *ServoBank) Angles() transport.ServoAngles {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Set moves a channel directly, clamped to the servo range.
func (b *ServoBank) Set(channel, angle int) bool {
	if channel < 0 || channel >= Channels {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.angles[channel] = clamp(angle)
	return true
}

func (b *ServoBank) snapshot() transport.ServoAngles {
	out := make(transport.ServoAngles, Channels)
	for i, a := range b.angles {
		out[i] = a
	}
	return out
}

func clamp(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
