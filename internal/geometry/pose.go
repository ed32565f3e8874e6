package geometry

import (
	"math"

	"github.com/ayusman/drishti/internal/detector"
)

// Reference face proportions for the weak-perspective pose solve.
// The nose tip sits noseDropNeutral of the eye-to-chin height below the
// eye line on a frontal face, and protrudes roughly noseDepthFrac of the
// outer eye span toward the camera. Rotating the head sweeps the nose tip
// across those reference distances, so the normalized offsets map to
// rotation angles through an arcsine.
const (
	noseDropNeutral = 0.25
	noseDepthFrac   = 0.6
)

// Pose is a head orientation in degrees. Yaw is rotation left/right,
// pitch up/down, roll the in-plane tilt.
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// HeadPose estimates head orientation from the 2D landmark projections.
//
// The solve is a weak-perspective approximation against the fixed
// reference proportions above; the assumed focal length cancels once the
// offsets are normalized by the inter-ocular span, so no camera
// calibration is required. Yaw and roll are in (-180, 180], pitch in
// [-90, 90].
//
// Returns ok=false when the geometry is too degenerate to solve (eye span
// or face height collapsed); callers should fall back to the last valid
// pose or a neutral one.
func HeadPose(f *detector.FaceLandmarks) (Pose, bool) {
	leftEye := f.Points[detector.LeftEyeOuter]
	rightEye := f.Points[detector.RightEyeOuter]
	nose := f.Points[detector.NoseTip]
	chin := f.Points[detector.Chin]

	eyeSpan := distance2D(leftEye, rightEye)
	eyeCenter := midpoint(leftEye, rightEye)
	faceHeight := chin.Y - eyeCenter.Y

	if eyeSpan < minSpan || faceHeight < minSpan {
		return Pose{}, false
	}

	// Yaw: lateral nose offset over the nose's reference depth.
	yawSin := (nose.X - eyeCenter.X) / (noseDepthFrac * eyeSpan)
	yaw := asinDegrees(yawSin)

	// Pitch: vertical nose offset relative to its neutral drop.
	pitchSin := ((nose.Y-eyeCenter.Y)/faceHeight - noseDropNeutral) / noseDepthFrac
	pitch := asinDegrees(pitchSin)

	// Roll: in-plane angle of the eye line.
	roll := math.Atan2(rightEye.Y-leftEye.Y, rightEye.X-leftEye.X) * 180 / math.Pi

	return Pose{
		Yaw:   wrapDegrees(yaw),
		Pitch: clampDegrees(pitch, 90),
		Roll:  wrapDegrees(roll),
	}, true
}

// asinDegrees converts a normalized offset to degrees, clamping the
// argument so an out-of-model face never produces NaN.
func asinDegrees(s float64) float64 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return math.Asin(s) * 180 / math.Pi
}

// wrapDegrees wraps an angle to (-180, 180].
func wrapDegrees(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// clampDegrees limits an angle to [-limit, limit].
func clampDegrees(deg, limit float64) float64 {
	if deg > limit {
		return limit
	}
	if deg < -limit {
		return -limit
	}
	return deg
}
