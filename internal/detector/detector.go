package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// ErrInvalidImage is returned when a frame is empty or does not have
// three 8-bit channels. The analysis pipeline treats it as recoverable:
// the frame yields an empty result and the session continues.
var ErrInvalidImage = errors.New("invalid image")

// ErrDetectTimeout is returned when the detector does not answer within
// the configured timeout. Treated the same as ErrInvalidImage by callers.
var ErrDetectTimeout = errors.New("detection timed out")

// Detector defines the interface for face landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns landmarks for each detected face.
	// Returns an empty slice if no faces are detected.
	Detect(frame *gocv.Mat) ([]FaceLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// MaxFaces is the maximum number of faces to detect per frame (default: 5).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// Timeout bounds a single Detect call. A call that exceeds it fails
	// with ErrDetectTimeout rather than stalling the session.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:      5,
		MinConfidence: 0.5,
		Timeout:       2 * time.Second,
	}
}

// ValidateFrame checks that a frame is a usable 3-channel image.
// Returns ErrInvalidImage for nil, empty, or wrong-channel frames.
func ValidateFrame(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrInvalidImage
	}
	if frame.Channels() != 3 {
		return ErrInvalidImage
	}
	return nil
}
