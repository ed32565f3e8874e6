package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	faces []FaceLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []FaceLandmarks) {
	m.faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]FaceLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.faces, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// NeutralFaceLandmarks returns a preset face centered near (320, 240) in a
// 640x480 frame: eyes open (EAR = 0.30), level, mouth relaxed.
func NeutralFaceLandmarks() FaceLandmarks {
	landmarks := FaceLandmarks{
		Score: 0.95,
	}

	// Left eye, open: lids 6px above/below the corner line, 40px wide
	landmarks.Points[LeftEyeOuter] = Point3D{X: 260, Y: 200}
	landmarks.Points[LeftEyeUpperOuter] = Point3D{X: 272, Y: 194}
	landmarks.Points[LeftEyeUpperInner] = Point3D{X: 288, Y: 194}
	landmarks.Points[LeftEyeInner] = Point3D{X: 300, Y: 200}
	landmarks.Points[LeftEyeLowerInner] = Point3D{X: 288, Y: 206}
	landmarks.Points[LeftEyeLowerOuter] = Point3D{X: 272, Y: 206}

	// Right eye mirrored
	landmarks.Points[RightEyeOuter] = Point3D{X: 380, Y: 200}
	landmarks.Points[RightEyeUpperOuter] = Point3D{X: 368, Y: 194}
	landmarks.Points[RightEyeUpperInner] = Point3D{X: 352, Y: 194}
	landmarks.Points[RightEyeInner] = Point3D{X: 340, Y: 200}
	landmarks.Points[RightEyeLowerInner] = Point3D{X: 352, Y: 206}
	landmarks.Points[RightEyeLowerOuter] = Point3D{X: 368, Y: 206}

	// Brows a relaxed distance above the eyes
	landmarks.Points[LeftBrow] = Point3D{X: 280, Y: 182}
	landmarks.Points[RightBrow] = Point3D{X: 360, Y: 182}

	// Mouth closed and relaxed: 50px wide, 8px tall
	landmarks.Points[MouthLeft] = Point3D{X: 295, Y: 290}
	landmarks.Points[MouthRight] = Point3D{X: 345, Y: 290}
	landmarks.Points[MouthUpper] = Point3D{X: 320, Y: 286}
	landmarks.Points[MouthLower] = Point3D{X: 320, Y: 294}

	landmarks.Points[NoseTip] = Point3D{X: 320, Y: 232, Z: -12}
	landmarks.Points[Chin] = Point3D{X: 320, Y: 330}
	landmarks.Points[Forehead] = Point3D{X: 320, Y: 130}

	return landmarks
}

// ClosedEyesFaceLandmarks returns the neutral face with both eyes shut
// (EAR = 0.05), for driving the blink state machine in tests.
func ClosedEyesFaceLandmarks() FaceLandmarks {
	landmarks := NeutralFaceLandmarks()

	// Collapse both lids to 1px above/below the corner line
	landmarks.Points[LeftEyeUpperOuter].Y = 199
	landmarks.Points[LeftEyeUpperInner].Y = 199
	landmarks.Points[LeftEyeLowerInner].Y = 201
	landmarks.Points[LeftEyeLowerOuter].Y = 201

	landmarks.Points[RightEyeUpperOuter].Y = 199
	landmarks.Points[RightEyeUpperInner].Y = 199
	landmarks.Points[RightEyeLowerInner].Y = 201
	landmarks.Points[RightEyeLowerOuter].Y = 201

	return landmarks
}

// SmilingFaceLandmarks returns the neutral face with the mouth corners
// pulled wide (mouth width two thirds of the eye span).
func SmilingFaceLandmarks() FaceLandmarks {
	landmarks := NeutralFaceLandmarks()

	landmarks.Points[MouthLeft] = Point3D{X: 280, Y: 288}
	landmarks.Points[MouthRight] = Point3D{X: 360, Y: 288}
	landmarks.Points[MouthUpper] = Point3D{X: 320, Y: 286}
	landmarks.Points[MouthLower] = Point3D{X: 320, Y: 294}

	return landmarks
}

// SurprisedFaceLandmarks returns the neutral face with the mouth dropped
// open (taller than it is wide) and the brows raised.
func SurprisedFaceLandmarks() FaceLandmarks {
	landmarks := NeutralFaceLandmarks()

	landmarks.Points[MouthLeft] = Point3D{X: 300, Y: 285}
	landmarks.Points[MouthRight] = Point3D{X: 340, Y: 285}
	landmarks.Points[MouthUpper] = Point3D{X: 320, Y: 272}
	landmarks.Points[MouthLower] = Point3D{X: 320, Y: 304}

	landmarks.Points[LeftBrow].Y = 174
	landmarks.Points[RightBrow].Y = 174

	return landmarks
}
