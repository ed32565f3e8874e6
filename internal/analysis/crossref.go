package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/drishti/internal/session"
)

// Cross-reference tolerances. Two views of the same scene will not agree
// exactly: detector jitter puts a few degrees on the pose and the views
// may catch blink transitions on different frames.
const (
	// MaxResultAge is how far apart (and how old) two frame results may
	// be and still describe the same moment.
	MaxResultAge = 5 * time.Second

	poseToleranceDeg = 15.0
	blinkTolerance   = 2
	faceCountSlack   = 1
)

// CrossRefResult reports how well two sessions' latest observations agree.
type CrossRefResult struct {
	// Comparable is false when either session has no result yet or the
	// results are too far apart in time to describe the same moment.
	Comparable bool `json:"comparable"`

	FaceCountMatch bool `json:"face_count_match"`
	PoseMatch      bool `json:"pose_match"`
	BlinkMatch     bool `json:"blink_match"`

	// OverallMatch is true when every applicable check passed.
	OverallMatch bool `json:"overall_match"`

	// Confidence is the fraction of applicable checks that passed,
	// in [0,1]. Zero when not comparable.
	Confidence float64 `json:"confidence"`
}

// CrossReference compares the latest results of two sessions, typically
// fed by two cameras watching the same subject. Pose and blink checks
// only apply when both views see exactly one face; with multiple faces
// there is no reliable pairing between the views, so those checks are
// skipped rather than guessed.
func CrossReference(a, b *session.Session) CrossRefResult {
	if a == nil || b == nil {
		return CrossRefResult{}
	}

	resultA, atA := a.Latest()
	resultB, atB := b.Latest()
	if resultA == nil || resultB == nil {
		return CrossRefResult{}
	}

	gap := atA.Sub(atB)
	if gap < 0 {
		gap = -gap
	}
	if gap > MaxResultAge {
		return CrossRefResult{}
	}

	out := CrossRefResult{Comparable: true}

	countDiff := resultA.Count - resultB.Count
	if countDiff < 0 {
		countDiff = -countDiff
	}
	out.FaceCountMatch = countDiff <= faceCountSlack

	checks := []float64{boolScore(out.FaceCountMatch)}

	if resultA.Count == 1 && resultB.Count == 1 {
		faceA := resultA.Faces[0]
		faceB := resultB.Faces[0]

		out.PoseMatch = poseAgrees(faceA, faceB)
		out.BlinkMatch = blinkAgrees(faceA, faceB)
		checks = append(checks, boolScore(out.PoseMatch), boolScore(out.BlinkMatch))
	}

	out.Confidence = stat.Mean(checks, nil)
	out.OverallMatch = out.Confidence == 1
	return out
}

func poseAgrees(a, b session.FaceResult) bool {
	return math.Abs(a.Pose.Yaw-b.Pose.Yaw) <= poseToleranceDeg &&
		math.Abs(a.Pose.Pitch-b.Pose.Pitch) <= poseToleranceDeg &&
		math.Abs(a.Pose.Roll-b.Pose.Roll) <= poseToleranceDeg
}

func blinkAgrees(a, b session.FaceResult) bool {
	diff := a.BlinkCount - b.BlinkCount
	if diff < 0 {
		diff = -diff
	}
	return diff <= blinkTolerance
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
