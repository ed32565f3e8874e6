package geometry

import (
	"math"
	"testing"

	"github.com/ayusman/drishti/internal/detector"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEyeAspectRatio(t *testing.T) {
	t.Run("open eye", func(t *testing.T) {
		face := detector.NeutralFaceLandmarks()

		left := EyeAspectRatio(face.LeftEye())
		if !almostEqual(left, 0.30) {
			t.Errorf("left EAR = %v, want 0.30", left)
		}

		right := EyeAspectRatio(face.RightEye())
		if !almostEqual(right, 0.30) {
			t.Errorf("right EAR = %v, want 0.30", right)
		}
	})

	t.Run("closed eye", func(t *testing.T) {
		face := detector.ClosedEyesFaceLandmarks()

		left := EyeAspectRatio(face.LeftEye())
		if !almostEqual(left, 0.05) {
			t.Errorf("left EAR = %v, want 0.05", left)
		}
	})

	t.Run("degenerate horizontal span", func(t *testing.T) {
		var eye [6]detector.Point3D
		// All six points coincide
		for i := range eye {
			eye[i] = detector.Point3D{X: 100, Y: 100}
		}

		if got := EyeAspectRatio(eye); got != 0 {
			t.Errorf("EAR on collapsed eye = %v, want 0", got)
		}
	})
}

func TestBoundingBox(t *testing.T) {
	face := detector.NeutralFaceLandmarks()
	box := BoundingBox(&face)

	// Raw extent: x in [260, 380], y in [130, 330]
	rawWidth := 120.0
	rawHeight := 200.0

	if !almostEqual(box.MinX, 260-rawWidth*BoxPadding) {
		t.Errorf("MinX = %v, want %v", box.MinX, 260-rawWidth*BoxPadding)
	}
	if !almostEqual(box.MaxX, 380+rawWidth*BoxPadding) {
		t.Errorf("MaxX = %v, want %v", box.MaxX, 380+rawWidth*BoxPadding)
	}
	if !almostEqual(box.MinY, 130-rawHeight*BoxPadding) {
		t.Errorf("MinY = %v, want %v", box.MinY, 130-rawHeight*BoxPadding)
	}
	if !almostEqual(box.MaxY, 330+rawHeight*BoxPadding) {
		t.Errorf("MaxY = %v, want %v", box.MaxY, 330+rawHeight*BoxPadding)
	}

	center := box.Center()
	if !almostEqual(center.X, 320) || !almostEqual(center.Y, 230) {
		t.Errorf("center = %v, want (320, 230)", center)
	}
}

func TestCentroidTracksShift(t *testing.T) {
	face := detector.NeutralFaceLandmarks()
	shifted := face.Shift(10, -20)

	a := Centroid(&face)
	b := Centroid(&shifted)

	if !almostEqual(b.X-a.X, 10) || !almostEqual(b.Y-a.Y, -20) {
		t.Errorf("centroid moved by (%v, %v), want (10, -20)", b.X-a.X, b.Y-a.Y)
	}
}

func TestFaceRatios(t *testing.T) {
	t.Run("neutral", func(t *testing.T) {
		face := detector.NeutralFaceLandmarks()
		r := FaceRatios(&face)

		if !r.Valid {
			t.Fatal("ratios should be valid for the neutral face")
		}
		if !almostEqual(r.MouthOpen, 8.0/50.0) {
			t.Errorf("MouthOpen = %v, want %v", r.MouthOpen, 8.0/50.0)
		}
		if !almostEqual(r.MouthWidth, 50.0/120.0) {
			t.Errorf("MouthWidth = %v, want %v", r.MouthWidth, 50.0/120.0)
		}
		if r.BrowLift <= 0 {
			t.Errorf("BrowLift = %v, want > 0", r.BrowLift)
		}
	})

	t.Run("degenerate face", func(t *testing.T) {
		var face detector.FaceLandmarks // all points at origin
		r := FaceRatios(&face)
		if r.Valid {
			t.Error("ratios should be invalid for collapsed geometry")
		}
	})
}

func TestDistance(t *testing.T) {
	got := Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if math.Abs(got-5) > epsilon {
		t.Errorf("Distance = %v, want 5", got)
	}
}
