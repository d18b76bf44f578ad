package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

const (
	index  = detector.IndexTip
	middle = detector.MiddleTip
	ring   = detector.RingTip
	little = detector.PinkyTip
)

func TestSelectLeft(t *testing.T) {
	tests := []struct {
		name string
		tips []int
		want LeftSelection
	}{
		{"no fingers is a fist", nil, LeftFist},
		{"index alone", []int{index}, LeftMotor1},
		{"middle alone", []int{middle}, LeftUnknown},
		{"ring alone", []int{ring}, LeftUnknown},
		{"little alone", []int{little}, LeftMotor6},
		{"index and middle", []int{index, middle}, LeftMotor2},
		{"middle and little", []int{middle, little}, LeftMotor2},
		{"middle and ring", []int{middle, ring}, LeftMotor2},
		{"ring and little", []int{ring, little}, LeftMotor5},
		{"index and little", []int{index, little}, LeftUnknown},
		{"index and ring", []int{index, ring}, LeftUnknown},
		{"index middle ring", []int{index, middle, ring}, LeftMotor3},
		{"middle ring little", []int{middle, ring, little}, LeftMotor3},
		{"index middle little", []int{index, middle, little}, LeftUnknown},
		{"all four", []int{index, middle, ring, little}, LeftMotor4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectLeft(Fingers(tt.tips...)); got != tt.want {
				t.Errorf("SelectLeft(%v) = %s, want %s", tt.tips, got, tt.want)
			}
		})
	}
}

func TestSelectLeft_Total(t *testing.T) {
	for s := FingerSet(0); s < 16; s++ {
		got := SelectLeft(s)
		if got == LeftNone {
			t.Errorf("SelectLeft(%s) returned LeftNone; only an absent hand may", s)
		}
		if _, ok := leftNames[got]; !ok {
			t.Errorf("SelectLeft(%s) returned undefined value %d", s, got)
		}
	}
}

func TestClassifyLeft(t *testing.T) {
	t.Run("absent hand", func(t *testing.T) {
		if got := ClassifyLeft(nil); got != LeftNone {
			t.Errorf("ClassifyLeft(nil) = %s, want %s", got, LeftNone)
		}
	})

	t.Run("hand without landmarks", func(t *testing.T) {
		hand := detector.NewHand(detector.Left)
		if got := ClassifyLeft(&hand); got != LeftNone {
			t.Errorf("got %s, want %s", got, LeftNone)
		}
	})

	t.Run("partial hand still classifies", func(t *testing.T) {
		hand := detector.HandWithFingers(detector.Left, index, middle)
		hand.Points[middle].Y = math.NaN()
		if got := ClassifyLeft(&hand); got != LeftMotor1 {
			t.Errorf("got %s, want %s", got, LeftMotor1)
		}
	})

	t.Run("fixture fist", func(t *testing.T) {
		hand := detector.FistHand(detector.Left)
		if got := ClassifyLeft(&hand); got != LeftFist {
			t.Errorf("got %s, want %s", got, LeftFist)
		}
	})
}

func TestClassifyRight(t *testing.T) {
	t.Run("threshold boundary", func(t *testing.T) {
		tests := []struct {
			distance float64
			want     RightDirection
		}{
			{0.0, RightClockwise},
			{0.05, RightClockwise},
			{0.1, RightAntiClockwise},
			{0.3, RightAntiClockwise},
			{0.5, RightAntiClockwise},
		}

		for _, tt := range tests {
			hand := detector.PinchHand(tt.distance)
			if got := ClassifyRight(&hand); got != tt.want {
				t.Errorf("distance %v: got %s, want %s", tt.distance, got, tt.want)
			}
		}
	})

	t.Run("uses only x and y", func(t *testing.T) {
		hand := detector.PinchHand(0.05)
		hand.Points[detector.ThumbTip].Z = -3
		hand.Points[detector.IndexTip].Z = 3
		if got := ClassifyRight(&hand); got != RightClockwise {
			t.Errorf("got %s, want %s", got, RightClockwise)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		if got := ClassifyRight(nil); got != RightNoGesture {
			t.Errorf("nil hand: got %s", got)
		}

		hand := detector.PinchHand(0.05)
		hand.Points[detector.ThumbTip].X = math.NaN()
		if got := ClassifyRight(&hand); got != RightNoGesture {
			t.Errorf("missing thumb x: got %s", got)
		}

		hand = detector.PinchHand(0.05)
		hand.Points[detector.IndexTip].Y = math.Inf(-1)
		if got := ClassifyRight(&hand); got != RightNoGesture {
			t.Errorf("infinite index y: got %s", got)
		}

		empty := detector.NewHand(detector.Right)
		if got := ClassifyRight(&empty); got != RightNoGesture {
			t.Errorf("empty hand: got %s", got)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("motor table", func(t *testing.T) {
		tests := []struct {
			left  LeftSelection
			right RightDirection
			want  Command
		}{
			{LeftMotor1, RightClockwise, CommandB},
			{LeftMotor1, RightAntiClockwise, CommandC},
			{LeftMotor2, RightClockwise, CommandD},
			{LeftMotor2, RightAntiClockwise, CommandE},
			{LeftMotor3, RightClockwise, CommandF},
			{LeftMotor3, RightAntiClockwise, CommandG},
			{LeftMotor4, RightClockwise, CommandH},
			{LeftMotor4, RightAntiClockwise, CommandI},
			{LeftMotor5, RightClockwise, CommandJ},
			{LeftMotor5, RightAntiClockwise, CommandK},
			{LeftMotor6, RightClockwise, CommandL},
			{LeftMotor6, RightAntiClockwise, CommandM},
		}

		for _, tt := range tests {
			if got := Resolve(tt.left, tt.right); got != tt.want {
				t.Errorf("Resolve(%s, %s) = %s, want %s", tt.left, tt.right, got, tt.want)
			}
		}
	})

	t.Run("no right gesture always stops", func(t *testing.T) {
		for l := LeftNone; l <= LeftUnknown; l++ {
			if got := Resolve(l, RightNoGesture); got != CommandA {
				t.Errorf("Resolve(%s, no gesture) = %s, want A", l, got)
			}
		}
	})

	t.Run("no motor always stops", func(t *testing.T) {
		for _, l := range []LeftSelection{LeftNone, LeftFist, LeftUnknown} {
			for _, r := range []RightDirection{RightClockwise, RightAntiClockwise} {
				if got := Resolve(l, r); got != CommandA {
					t.Errorf("Resolve(%s, %s) = %s, want A", l, r, got)
				}
			}
		}
	})

	t.Run("total over every combination", func(t *testing.T) {
		for l := LeftSelection(-1); l <= LeftUnknown+1; l++ {
			for r := RightDirection(-1); r <= RightAntiClockwise+1; r++ {
				if got := Resolve(l, r); !got.Valid() {
					t.Errorf("Resolve(%d, %d) = %d, not a valid command", l, r, got)
				}
			}
		}
	})
}

func TestClassifyFrame(t *testing.T) {
	tests := []struct {
		name  string
		hands []detector.HandLandmarks
		want  Classification
	}{
		{
			name:  "no hands",
			hands: nil,
			want:  Classification{LeftNone, RightNoGesture, CommandA},
		},
		{
			name:  "right hand only",
			hands: []detector.HandLandmarks{detector.PinchHand(0.05)},
			want:  Classification{LeftNone, RightClockwise, CommandA},
		},
		{
			name: "motor 1 clockwise",
			hands: []detector.HandLandmarks{
				detector.HandWithFingers(detector.Left, index),
				detector.PinchHand(0.05),
			},
			want: Classification{LeftMotor1, RightClockwise, CommandB},
		},
		{
			name: "motor 5 anticlockwise",
			hands: []detector.HandLandmarks{
				detector.PinchHand(0.5),
				detector.HandWithFingers(detector.Left, ring, little),
			},
			want: Classification{LeftMotor5, RightAntiClockwise, CommandK},
		},
		{
			name: "left fist with rotation",
			hands: []detector.HandLandmarks{
				detector.FistHand(detector.Left),
				detector.PinchHand(0.5),
			},
			want: Classification{LeftFist, RightAntiClockwise, CommandA},
		},
		{
			name: "left hand only",
			hands: []detector.HandLandmarks{
				detector.HandWithFingers(detector.Left, index),
			},
			want: Classification{LeftMotor1, RightNoGesture, CommandA},
		},
		{
			name: "unknown label is ignored",
			hands: []detector.HandLandmarks{
				detector.HandWithFingers("Other", index),
				detector.PinchHand(0.05),
			},
			want: Classification{LeftNone, RightClockwise, CommandA},
		},
		{
			name: "empty hands",
			hands: []detector.HandLandmarks{
				detector.NewHand(detector.Left),
				detector.NewHand(detector.Right),
			},
			want: Classification{LeftNone, RightNoGesture, CommandA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFrame(tt.hands); got != tt.want {
				t.Errorf("ClassifyFrame() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyFrame_DuplicateHandedness(t *testing.T) {
	motor1 := detector.HandWithFingers(detector.Left, index)
	motor4 := detector.HandWithFingers(detector.Left, index, middle, ring, little)
	right := detector.PinchHand(0.05)

	t.Run("higher score wins", func(t *testing.T) {
		a, b := motor1, motor4
		a.Score, b.Score = 0.9, 0.6

		got := ClassifyFrame([]detector.HandLandmarks{a, right, b})
		if got.Left != LeftMotor1 {
			t.Errorf("got %s, want %s", got.Left, LeftMotor1)
		}
	})

	t.Run("equal scores keep the later hand", func(t *testing.T) {
		a, b := motor1, motor4
		a.Score, b.Score = 0.8, 0.8

		got := ClassifyFrame([]detector.HandLandmarks{a, right, b})
		if got.Left != LeftMotor4 || got.Command != CommandH {
			t.Errorf("got %+v, want Motor 4 / H", got)
		}
	})

	t.Run("duplicate right hands", func(t *testing.T) {
		near, far := detector.PinchHand(0.05), detector.PinchHand(0.5)
		near.Score, far.Score = 0.5, 0.7

		got := ClassifyFrame([]detector.HandLandmarks{motor1, far, near})
		if got.Right != RightAntiClockwise || got.Command != CommandC {
			t.Errorf("got %+v, want anticlockwise / C", got)
		}
	})
}

func TestClassifyFrame_Deterministic(t *testing.T) {
	hands := []detector.HandLandmarks{
		detector.HandWithFingers(detector.Left, middle, ring, little),
		detector.PinchHand(0.3),
	}

	first := ClassifyFrame(hands)
	for i := 0; i < 50; i++ {
		if got := ClassifyFrame(hands); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
	if first.Command != CommandG {
		t.Errorf("expected G, got %s", first.Command)
	}
}
