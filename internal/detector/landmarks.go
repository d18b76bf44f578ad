// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness is the detector-assigned label of a hand.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Valid reports whether h is one of the two known labels.
func (h Handedness) Valid() bool {
	return h == Left || h == Right
}

// Point3D represents a normalized landmark position. X and Y are fractions of the
// frame width and height (Y grows downward); Z is carried but not used for classification.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Missing returns a point whose coordinates are all NaN.
func Missing() Point3D {
	nan := math.NaN()
	return Point3D{X: nan, Y: nan, Z: nan}
}

// HasY reports whether the vertical coordinate is usable.
func (p Point3D) HasY() bool {
	return finite(p.Y)
}

// HasXY reports whether both planar coordinates are usable.
func (p Point3D) HasXY() bool {
	return finite(p.X) && finite(p.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness Handedness            `json:"handedness"`
	Score      float64               `json:"score"`
}

// NewHand returns a hand with the given label and every landmark missing.
func NewHand(handedness Handedness) HandLandmarks {
	h := HandLandmarks{Handedness: handedness}
	for i := range h.Points {
		h.Points[i] = Missing()
	}
	return h
}

// Empty reports whether the hand carries no usable landmark at all.
// A nil hand is empty.
func (h *HandLandmarks) Empty() bool {
	if h == nil {
		return true
	}
	for _, p := range h.Points {
		if finite(p.X) || finite(p.Y) {
			return false
		}
	}
	return true
}

// Distance2D returns the Euclidean distance between landmarks a and b in the image plane.
// The second return value is false when either point lacks an X or Y coordinate.
func (h *HandLandmarks) Distance2D(a, b int) (float64, bool) {
	if h == nil || a < 0 || b < 0 || a >= NumLandmarks || b >= NumLandmarks {
		return 0, false
	}
	pa, pb := h.Points[a], h.Points[b]
	if !pa.HasXY() || !pb.HasXY() {
		return 0, false
	}
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y), true
}
