// Package analysis orchestrates the per-frame pipeline: detection,
// geometry, expression, tracking, and session bookkeeping.
package analysis

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/expression"
	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/track"
)

// ErrSessionBusy is returned when a frame arrives while the session is
// still processing a previous one. The frame is dropped, not queued.
var ErrSessionBusy = errors.New("session busy")

// Analyzer runs frames through the full analysis pipeline. It is safe
// for concurrent use across sessions; within a session, concurrent
// frames are skipped rather than serialized.
type Analyzer struct {
	detector detector.Detector
	registry *session.Registry
}

// New creates an Analyzer backed by the given detector and session
// registry.
func New(det detector.Detector, registry *session.Registry) *Analyzer {
	return &Analyzer{
		detector: det,
		registry: registry,
	}
}

// Registry exposes the session registry for statistics and reset calls.
func (a *Analyzer) Registry() *session.Registry {
	return a.registry
}

// ProcessFrame analyzes one frame within a session.
//
// An unusable frame or a detector timeout is recoverable: it logs,
// yields an empty result for that frame, and leaves the session state
// untouched. A busy session returns ErrSessionBusy and no result.
func (a *Analyzer) ProcessFrame(sessionID string, frame *gocv.Mat) (*session.Result, error) {
	now := time.Now()
	sess := a.registry.Ensure(sessionID, now)

	var width, height int
	if frame != nil && !frame.Empty() {
		width = frame.Cols()
		height = frame.Rows()
	}

	faces, err := a.detect(frame)
	if err != nil {
		if errors.Is(err, detector.ErrInvalidImage) || errors.Is(err, detector.ErrDetectTimeout) {
			log.Printf("session %s: dropping frame: %v", sessionID, err)
			return &session.Result{
				Faces:  []session.FaceResult{},
				Width:  width,
				Height: height,
				At:     now,
			}, nil
		}
		return nil, err
	}

	observations := make([]track.Observation, 0, len(faces))
	for i := range faces {
		observations = append(observations, buildObservation(frame, &faces[i]))
	}

	result, ok := sess.Apply(now, width, height, observations)
	if !ok {
		return nil, ErrSessionBusy
	}
	return result, nil
}

func (a *Analyzer) detect(frame *gocv.Mat) ([]detector.FaceLandmarks, error) {
	if err := detector.ValidateFrame(frame); err != nil {
		return nil, err
	}
	return a.detector.Detect(frame)
}

// buildObservation derives all per-face measurements for one detection.
func buildObservation(frame *gocv.Mat, face *detector.FaceLandmarks) track.Observation {
	box := geometry.BoundingBox(face)
	pose, poseOK := geometry.HeadPose(face)

	return track.Observation{
		Landmarks:  *face,
		Box:        box,
		Centroid:   box.Center(),
		LeftEAR:    geometry.EyeAspectRatio(face.LeftEye()),
		RightEAR:   geometry.EyeAspectRatio(face.RightEye()),
		Pose:       pose,
		PoseOK:     poseOK,
		Expression: expression.Classify(geometry.FaceRatios(face)),
		Quality:    geometry.FrameQuality(frame, box),
		Score:      face.Score,
	}
}
