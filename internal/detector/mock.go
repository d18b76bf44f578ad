package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Fixture geometry. Finger joints sit on a common baseline; an extended tip is
// drawn above it (smaller Y) and a curled tip below it.
const (
	fixtureJointY    = 0.55
	fixtureExtendedY = 0.40
	fixtureCurledY   = 0.65
)

// HandWithFingers returns an upright hand in which exactly the fingers whose tip
// indices are listed (IndexTip, MiddleTip, RingTip, PinkyTip) are extended.
// The thumb is held well away from the index tip.
func HandWithFingers(handedness Handedness, tips ...int) HandLandmarks {
	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.85}

	hand.Points[ThumbCMC] = Point3D{X: 0.60, Y: 0.80}
	hand.Points[ThumbMCP] = Point3D{X: 0.68, Y: 0.75}
	hand.Points[ThumbIP] = Point3D{X: 0.74, Y: 0.70}
	hand.Points[ThumbTip] = Point3D{X: 0.80, Y: 0.66}

	extended := make(map[int]bool, len(tips))
	for _, t := range tips {
		extended[t] = true
	}

	columns := map[int]float64{
		IndexTip:  0.58,
		MiddleTip: 0.52,
		RingTip:   0.46,
		PinkyTip:  0.40,
	}
	for tip, x := range columns {
		mcp := tip - 3
		hand.Points[mcp] = Point3D{X: x, Y: 0.68}
		hand.Points[tip-2] = Point3D{X: x, Y: fixtureJointY}
		tipY := fixtureCurledY
		if extended[tip] {
			hand.Points[tip-1] = Point3D{X: x, Y: 0.47}
			tipY = fixtureExtendedY
		} else {
			hand.Points[tip-1] = Point3D{X: x, Y: 0.60}
		}
		hand.Points[tip] = Point3D{X: x, Y: tipY}
	}

	return hand
}

// FistHand returns a hand with every finger curled.
func FistHand(handedness Handedness) HandLandmarks {
	return HandWithFingers(handedness)
}

// PinchHand returns a right hand whose thumb tip and index tip are exactly
// distance apart along the X axis. The thumb tip sits on the frame edge so the
// separation is represented without rounding.
func PinchHand(distance float64) HandLandmarks {
	hand := HandWithFingers(Right, IndexTip)
	hand.Points[ThumbTip] = Point3D{X: 0, Y: 0.45}
	hand.Points[IndexTip] = Point3D{X: distance, Y: 0.45}
	return hand
}
