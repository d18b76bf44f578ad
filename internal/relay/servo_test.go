package relay

import (
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestServoBank_Apply(t *testing.T) {
	tests := []struct {
		name      string
		step      int
		start     int
		left      gesture.LeftSelection
		right     gesture.RightDirection
		channel   int
		wantAngle int
		wantMoved bool
	}{
		{"clockwise steps up", 1, 90, gesture.LeftMotor1, gesture.RightClockwise, 0, 91, true},
		{"anticlockwise steps down", 1, 90, gesture.LeftMotor6, gesture.RightAntiClockwise, 5, 89, true},
		{"clamped at max", 5, 178, gesture.LeftMotor2, gesture.RightClockwise, 1, 180, true},
		{"stays at max", 1, 180, gesture.LeftMotor2, gesture.RightClockwise, 1, 180, false},
		{"stays at min", 1, 0, gesture.LeftMotor3, gesture.RightAntiClockwise, 2, 0, false},
		{"no rotation", 1, 90, gesture.LeftMotor4, gesture.RightNoGesture, 3, 90, false},
		{"fist moves nothing", 1, 90, gesture.LeftFist, gesture.RightClockwise, 0, 90, false},
		{"unknown moves nothing", 1, 90, gesture.LeftUnknown, gesture.RightClockwise, 0, 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewServoBank(tt.step)
			b.Set(tt.channel, tt.start)

			angles, moved := b.Apply(tt.left, tt.right)
			if moved != tt.wantMoved {
				t.Errorf("moved = %v, want %v", moved, tt.wantMoved)
			}
			if angles[tt.channel] != tt.wantAngle {
				t.Errorf("angle = %d, want %d", angles[tt.channel], tt.wantAngle)
			}
			if len(angles) != Channels {
				t.Errorf("got %d channels, want %d", len(angles), Channels)
			}
		})
	}
}

func TestServoBank_Defaults(t *testing.T) {
	b := NewServoBank(0)
	if b.step != DefaultStep {
		t.Errorf("step = %d, want %d", b.step, DefaultStep)
	}
	for ch, a := range b.Angles() {
		if a != DefaultAngle {
			t.Errorf("channel %d = %d, want %d", ch, a, DefaultAngle)
		}
	}

	if b.Set(Channels, 10) || b.Set(-1, 10) {
		t.Error("Set() should reject out-of-range channels")
	}
	b.Set(0, 500)
	if got := b.Angles()[0]; got != MaxAngle {
		t.Errorf("Set() clamp = %d, want %d", got, MaxAngle)
	}
}
