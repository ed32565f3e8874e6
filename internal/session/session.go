// Package session maintains per-session analysis state: one tracker,
// running counters, and the latest frame result. Sessions are isolated
// from one another; the Registry hands them out by identifier.
package session

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/drishti/internal/blink"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/expression"
	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/track"
)

// FaceResult is one face's share of a frame result, shaped for the wire.
type FaceResult struct {
	ID         int              `json:"id"`
	Box        geometry.Box     `json:"box"`
	LeftEAR    float64          `json:"ear_left"`
	RightEAR   float64          `json:"ear_right"`
	EyeState   blink.State      `json:"eye_state"`
	BlinkCount int              `json:"blink_count"`
	Pose       geometry.Pose    `json:"pose"`
	Expression expression.Label `json:"expression"`
	Quality    geometry.Quality `json:"quality"`
	Score      float64          `json:"score"`

	// Landmarks are kept for overlay rendering but stay off the wire.
	Landmarks detector.FaceLandmarks `json:"-"`
}

// Result is the outcome of analyzing one frame within a session.
type Result struct {
	Faces  []FaceResult `json:"faces"`
	Count  int          `json:"count"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	At     time.Time    `json:"at"`
}

// Stats is a point-in-time summary of a session.
type Stats struct {
	Count           int     `json:"count"`
	UniqueFaces     int     `json:"unique_faces"`
	MaxFaces        int     `json:"max_faces"`
	TotalDetections int     `json:"total_detections"`
	DurationSeconds float64 `json:"session_duration_seconds"`
	AvgFacesPerSec  float64 `json:"avg_faces_per_second"`
}

// Session holds the analysis state for one client stream. Frame
// processing is serialized by a mutex with busy-skip semantics: a frame
// arriving while another is mid-flight is dropped, not queued, so a slow
// consumer never builds a backlog of stale frames.
type Session struct {
	ID string

	mu              sync.Mutex
	tracker         *track.Tracker
	totalDetections int
	maxFaces        int
	startTime       time.Time
	latest          *Result
	latestAt        time.Time
}

// New creates a session with the given tracker configuration.
func New(id string, config track.Config, now time.Time) *Session {
	return &Session{
		ID:        id,
		tracker:   track.NewTracker(config),
		startTime: now,
	}
}

// Apply feeds one frame's observations through the session's tracker and
// returns the frame result. The second return is false when the session
// was busy with another frame; the caller should skip, not retry.
func (s *Session) Apply(now time.Time, frameWidth, frameHeight int, observations []track.Observation) (*Result, bool) {
	if !s.mu.TryLock() {
		return nil, false
	}
	defer s.mu.Unlock()

	diag := frameDiagonal(frameWidth, frameHeight)
	faces := s.tracker.Update(now, diag, observations)

	result := &Result{
		Faces:  make([]FaceResult, 0, len(faces)),
		Count:  len(faces),
		Width:  frameWidth,
		Height: frameHeight,
		At:     now,
	}
	for _, face := range faces {
		result.Faces = append(result.Faces, FaceResult{
			ID:         face.ID,
			Box:        face.Box,
			LeftEAR:    face.LeftEAR,
			RightEAR:   face.RightEAR,
			EyeState:   face.EyeState(),
			BlinkCount: face.BlinkCount(),
			Pose:       face.Pose,
			Expression: face.Expression,
			Quality:    face.Quality,
			Score:      face.Score,
			Landmarks:  face.Landmarks,
		})
	}

	s.totalDetections += len(faces)
	if len(faces) > s.maxFaces {
		s.maxFaces = len(faces)
	}
	s.latest = result
	s.latestAt = now

	return result, true
}

// Stats returns the session's current counters.
func (s *Session) Stats(now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		UniqueFaces:     s.tracker.UniqueFaces(),
		TotalDetections: s.totalDetections,
		MaxFaces:        s.maxFaces,
	}
	if s.latest != nil {
		stats.Count = s.latest.Count
	}

	duration := now.Sub(s.startTime).Seconds()
	if duration > 0 {
		stats.DurationSeconds = duration
		stats.AvgFacesPerSec = float64(s.totalDetections) / duration
	}
	return stats
}

// Latest returns the most recent frame result and its timestamp, or nil
// if no frame has completed yet.
func (s *Session) Latest() (*Result, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.latestAt
}

// Reset clears the session's tracker and counters while keeping the
// session itself alive. Face identity numbering restarts from zero.
func (s *Session) Reset(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Reset()
	s.totalDetections = 0
	s.maxFaces = 0
	s.startTime = now
	s.latest = nil
	s.latestAt = time.Time{}
}

func frameDiagonal(width, height int) float64 {
	w := float64(width)
	h := float64(height)
	return math.Sqrt(w*w + h*h)
}
