// Package detector provides face landmark detection interfaces and types for facial analysis.
package detector

// Face landmark indices for the canonical 21-point layout used by the
// analysis pipeline. The points are a fixed subset of the MediaPipe face
// mesh. Each eye follows the classic 6-point ordering used for the Eye
// Aspect Ratio: corner, two upper-lid points, opposite corner, two
// lower-lid points.
const (
	LeftEyeOuter      = 0
	LeftEyeUpperOuter = 1
	LeftEyeUpperInner = 2
	LeftEyeInner      = 3
	LeftEyeLowerInner = 4
	LeftEyeLowerOuter = 5

	RightEyeOuter      = 6
	RightEyeUpperOuter = 7
	RightEyeUpperInner = 8
	RightEyeInner      = 9
	RightEyeLowerInner = 10
	RightEyeLowerOuter = 11

	LeftBrow  = 12
	RightBrow = 13

	MouthLeft  = 14
	MouthRight = 15
	MouthUpper = 16
	MouthLower = 17

	NoseTip  = 18
	Chin     = 19
	Forehead = 20

	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// Coordinates are in pixels; Z is the detector's relative depth estimate
// and may be zero when the oracle provides only 2D positions.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks represents the 21 face landmarks for one detected face
// in one frame, plus the detector's confidence score in [0,1].
type FaceLandmarks struct {
	Points [NumLandmarks]Point3D `json:"points"`
	Score  float64               `json:"score"`
}

// LeftEye returns the six left-eye landmarks in EAR ordering.
func (f *FaceLandmarks) LeftEye() [6]Point3D {
	return [6]Point3D{
		f.Points[LeftEyeOuter],
		f.Points[LeftEyeUpperOuter],
		f.Points[LeftEyeUpperInner],
		f.Points[LeftEyeInner],
		f.Points[LeftEyeLowerInner],
		f.Points[LeftEyeLowerOuter],
	}
}

// RightEye returns the six right-eye landmarks in EAR ordering.
func (f *FaceLandmarks) RightEye() [6]Point3D {
	return [6]Point3D{
		f.Points[RightEyeOuter],
		f.Points[RightEyeUpperOuter],
		f.Points[RightEyeUpperInner],
		f.Points[RightEyeInner],
		f.Points[RightEyeLowerInner],
		f.Points[RightEyeLowerOuter],
	}
}

// Shift returns a copy of the landmarks translated by (dx, dy).
// Depth and score are preserved.
func (f *FaceLandmarks) Shift(dx, dy float64) FaceLandmarks {
	shifted := FaceLandmarks{Score: f.Score}
	for i := 0; i < NumLandmarks; i++ {
		shifted.Points[i] = Point3D{
			X: f.Points[i].X + dx,
			Y: f.Points[i].Y + dy,
			Z: f.Points[i].Z,
		}
	}
	return shifted
}
