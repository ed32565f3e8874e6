// Package geometry provides pure functions deriving per-face metrics from
// landmark sets: eye aspect ratios, bounding boxes, expression ratios, and
// head pose. Given identical input the output is reproducible; nothing in
// this package holds state.
package geometry

import (
	"math"

	"github.com/ayusman/drishti/internal/detector"
)

// minSpan is the minimum denominator for any ratio computed here.
// Spans below it are treated as degenerate geometry.
const minSpan = 1e-6

// BoxPadding is the fixed fraction of width/height added around the raw
// landmark extent when computing a bounding box.
const BoxPadding = 0.1

// Point represents a 2D point in the image plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	MinX float64 `json:"x_min"`
	MinY float64 `json:"y_min"`
	MaxX float64 `json:"x_max"`
	MaxY float64 `json:"y_max"`
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Center returns the box centroid.
func (b Box) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// distance2D measures two landmarks in the image plane, ignoring depth.
func distance2D(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// EyeAspectRatio computes the EAR for one eye given its six landmarks in
// canonical ordering (corner, two upper-lid points, opposite corner, two
// lower-lid points):
//
//	EAR = (|p2-p6| + |p3-p5|) / (2 * |p1-p4|)
//
// Low values indicate a closed eye. A degenerate horizontal span returns 0
// rather than dividing by near-zero.
func EyeAspectRatio(eye [6]detector.Point3D) float64 {
	vertical := distance2D(eye[1], eye[5]) + distance2D(eye[2], eye[4])
	horizontal := distance2D(eye[0], eye[3])

	if horizontal < minSpan {
		return 0
	}
	return vertical / (2 * horizontal)
}

// BoundingBox computes the padded min/max extent of all landmarks.
func BoundingBox(f *detector.FaceLandmarks) Box {
	minX, maxX := f.Points[0].X, f.Points[0].X
	minY, maxY := f.Points[0].Y, f.Points[0].Y

	for i := 1; i < detector.NumLandmarks; i++ {
		p := f.Points[i]
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	padX := (maxX - minX) * BoxPadding
	padY := (maxY - minY) * BoxPadding

	return Box{
		MinX: minX - padX,
		MinY: minY - padY,
		MaxX: maxX + padX,
		MaxY: maxY + padY,
	}
}

// Centroid returns the centroid of the unpadded landmark extent.
func Centroid(f *detector.FaceLandmarks) Point {
	box := BoundingBox(f)
	return box.Center()
}

// Ratios are the scale-free measurements the expression classifier
// consumes. All are normalized by face geometry so they are independent
// of the face's distance from the camera.
type Ratios struct {
	// MouthOpen is mouth height over mouth width.
	MouthOpen float64
	// MouthWidth is mouth width over the outer eye span.
	MouthWidth float64
	// BrowLift is the brow-to-eye distance over the eye-to-chin height.
	BrowLift float64
	// Valid is false when the face geometry was too degenerate to measure.
	Valid bool
}

// FaceRatios derives the expression ratios from a landmark set.
func FaceRatios(f *detector.FaceLandmarks) Ratios {
	mouthWidth := distance2D(f.Points[detector.MouthLeft], f.Points[detector.MouthRight])
	mouthHeight := distance2D(f.Points[detector.MouthUpper], f.Points[detector.MouthLower])
	eyeSpan := distance2D(f.Points[detector.LeftEyeOuter], f.Points[detector.RightEyeOuter])

	eyeCenter := midpoint(f.Points[detector.LeftEyeOuter], f.Points[detector.RightEyeOuter])
	faceHeight := f.Points[detector.Chin].Y - eyeCenter.Y

	browY := (f.Points[detector.LeftBrow].Y + f.Points[detector.RightBrow].Y) / 2
	browLiftPx := eyeCenter.Y - browY

	if mouthWidth < minSpan || eyeSpan < minSpan || faceHeight < minSpan {
		return Ratios{}
	}

	return Ratios{
		MouthOpen:  mouthHeight / mouthWidth,
		MouthWidth: mouthWidth / eyeSpan,
		BrowLift:   browLiftPx / faceHeight,
		Valid:      true,
	}
}

func midpoint(a, b detector.Point3D) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
