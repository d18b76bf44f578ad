package gesture

import "github.com/ayusman/mudra/internal/detector"

// PinchThreshold is the thumb-index tip distance, in normalized frame units,
// below which the right hand reads as clockwise. It does not scale with hand size.
const PinchThreshold = 0.1

// SelectLeft maps the extended fingers of a left hand to a motor selection.
// Rules are checked in order and the first match wins.
func SelectLeft(e FingerSet) LeftSelection {
	n := e.Len()
	switch {
	case n == 0:
		return LeftFist
	case n == 1 && e.Has(detector.IndexTip):
		return LeftMotor1
	case n == 2 && e.Has(detector.MiddleTip):
		return LeftMotor2
	case n == 3 && e.Has(detector.RingTip):
		return LeftMotor3
	case n == 4 && e.Has(detector.PinkyTip):
		return LeftMotor4
	case e.Has(detector.PinkyTip) && e.Has(detector.RingTip):
		return LeftMotor5
	case e.Has(detector.PinkyTip) && n == 1:
		return LeftMotor6
	}
	return LeftUnknown
}

// ClassifyLeft classifies a left hand. An absent or empty hand is LeftNone.
func ClassifyLeft(hand *detector.HandLandmarks) LeftSelection {
	if hand.Empty() {
		return LeftNone
	}
	return SelectLeft(ExtendedFingers(hand))
}

// ClassifyRight classifies a right hand by how close the thumb tip is to the index tip.
func ClassifyRight(hand *detector.HandLandmarks) RightDirection {
	d, ok := hand.Distance2D(detector.ThumbTip, detector.IndexTip)
	if !ok {
		return RightNoGesture
	}
	if d < PinchThreshold {
		return RightClockwise
	}
	return RightAntiClockwise
}

// motorCommands holds the {clockwise, anticlockwise} command for each motor.
var motorCommands = map[LeftSelection][2]Command{
	LeftMotor1: {CommandB, CommandC},
	LeftMotor2: {CommandD, CommandE},
	LeftMotor3: {CommandF, CommandG},
	LeftMotor4: {CommandH, CommandI},
	LeftMotor5: {CommandJ, CommandK},
	LeftMotor6: {CommandL, CommandM},
}

// Resolve combines both hands into a command. Every combination without a
// motor and a rotation resolves to Stop.
func Resolve(left LeftSelection, right RightDirection) Command {
	pair, ok := motorCommands[left]
	if !ok {
		return Stop
	}
	switch right {
	case RightClockwise:
		return pair[0]
	case RightAntiClockwise:
		return pair[1]
	}
	return Stop
}

// Classification is the outcome of one frame.
type Classification struct {
	Left    LeftSelection  `json:"left_hand"`
	Right   RightDirection `json:"right_hand"`
	Command Command        `json:"command"`
}

// ClassifyFrame picks at most one hand per label and classifies the frame.
// When a label is reported more than once the hand with the higher score is used;
// on equal scores the later one wins. Hands with an unknown label are ignored.
func ClassifyFrame(hands []detector.HandLandmarks) Classification {
	var left, right *detector.HandLandmarks
	for i := range hands {
		h := &hands[i]
		switch h.Handedness {
		case detector.Left:
			left = prefer(left, h)
		case detector.Right:
			right = prefer(right, h)
		}
	}

	c := Classification{
		Left:  ClassifyLeft(left),
		Right: ClassifyRight(right),
	}
	c.Command = Resolve(c.Left, c.Right)
	return c
}

func prefer(current, candidate *detector.HandLandmarks) *detector.HandLandmarks {
	if current == nil || candidate.Score >= current.Score {
		return candidate
	}
	return current
}
