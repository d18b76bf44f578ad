// Package gesture turns hand landmarks into motor selections, rotation directions
// and the single-letter commands understood by the actuator controller.
package gesture

import (
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// TrackedTips lists the fingertips considered for extension, in the order
// index, middle, ring, little. The thumb is not tracked.
var TrackedTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// FingerSet is a set of extended fingers keyed by tip index.
type FingerSet uint8

func bit(tip int) FingerSet {
	for i, t := range TrackedTips {
		if t == tip {
			return 1 << i
		}
	}
	return 0
}

// Fingers builds a set from tip indices. Untracked indices are ignored.
func Fingers(tips ...int) FingerSet {
	var s FingerSet
	for _, t := range tips {
		s |= bit(t)
	}
	return s
}

// Has reports whether the finger with the given tip index is in the set.
func (s FingerSet) Has(tip int) bool {
	b := bit(tip)
	return b != 0 && s&b != 0
}

// Len returns the number of fingers in the set.
func (s FingerSet) Len() int {
	n := 0
	for i := range TrackedTips {
		if s&(1<<i) != 0 {
			n++
		}
	}
	return n
}

// Tips returns the tip indices in the set in ascending order.
func (s FingerSet) Tips() []int {
	tips := make([]int, 0, len(TrackedTips))
	for i, t := range TrackedTips {
		if s&(1<<i) != 0 {
			tips = append(tips, t)
		}
	}
	return tips
}

func (s FingerSet) String() string {
	tips := s.Tips()
	parts := make([]string, len(tips))
	for i, t := range tips {
		parts[i] = strconv.Itoa(t)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ExtendedFingers returns the fingers whose tip lies strictly above the joint two
// landmarks below it (tip.Y < joint.Y, since Y grows downward in the image).
// A finger with a missing tip or joint Y is left out. A nil hand yields the empty set.
func ExtendedFingers(hand *detector.HandLandmarks) FingerSet {
	var s FingerSet
	if hand == nil {
		return s
	}
	for i, tip := range TrackedTips {
		t, j := hand.Points[tip], hand.Points[tip-2]
		if !t.HasY() || !j.HasY() {
			continue
		}
		if t.Y < j.Y {
			s |= 1 << i
		}
	}
	return s
}
