package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SignALandmarks returns a preset HandLandmarks for the Libras letter A:
// a closed fist with the thumb resting against the side of the index finger.
// Coordinates are already normalized to [0,1].
func SignALandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.96,
	}

	// Wrist at the base of the frame
	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	// Thumb pressed against the side of the fist
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: 0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.64, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.59, Z: 0.0}

	// Index finger curled into the palm
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.62, Z: -0.01}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.58, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.62, Z: -0.06}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.66, Z: -0.04}

	// Middle finger curled
	landmarks.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.61, Z: -0.01}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.57, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.61, Z: -0.06}
	landmarks.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.65, Z: -0.04}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.47, Y: 0.62, Z: -0.01}
	landmarks.Points[RingPIP] = Point3D{X: 0.47, Y: 0.58, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.46, Y: 0.62, Z: -0.06}
	landmarks.Points[RingTip] = Point3D{X: 0.45, Y: 0.66, Z: -0.04}

	// Pinky curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.43, Y: 0.64, Z: -0.01}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.43, Y: 0.60, Z: -0.04}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.42, Y: 0.63, Z: -0.05}
	landmarks.Points[PinkyTip] = Point3D{X: 0.41, Y: 0.67, Z: -0.03}

	return landmarks
}

// SignBLandmarks returns a preset HandLandmarks for the Libras letter B:
// fingers extended upward and held together, thumb folded across the palm.
// Coordinates are already normalized to [0,1].
func SignBLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.82, Z: 0.0}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.53, Y: 0.70, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.49, Y: 0.67, Z: -0.04}
	landmarks.Points[ThumbTip] = Point3D{X: 0.45, Y: 0.66, Z: -0.05}

	// Index finger extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.54, Y: 0.62, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.54, Y: 0.51, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.54, Y: 0.43, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.54, Y: 0.35, Z: 0.0}

	// Middle finger extended (slightly longer)
	landmarks.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.61, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.49, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.31, Z: 0.0}

	// Ring finger extended
	landmarks.Points[RingMCP] = Point3D{X: 0.48, Y: 0.62, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.48, Y: 0.51, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.48, Y: 0.42, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.48, Y: 0.34, Z: 0.0}

	// Pinky extended
	landmarks.Points[PinkyMCP] = Point3D{X: 0.45, Y: 0.64, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.45, Y: 0.55, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.45, Y: 0.48, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.45, Y: 0.41, Z: 0.0}

	return landmarks
}

// PixelSignALandmarks returns SignALandmarks scaled to pixel coordinates
// for the given frame size. Z is left untouched.
func PixelSignALandmarks(width, height int) HandLandmarks {
	lm := SignALandmarks()
	for i := range lm.Points {
		lm.Points[i].X *= float64(width)
		lm.Points[i].Y *= float64(height)
	}
	return lm
}
