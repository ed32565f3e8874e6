package session

import (
	"testing"
	"time"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/track"
)

func neutralObservation() track.Observation {
	face := detector.NeutralFaceLandmarks()
	box := geometry.BoundingBox(&face)
	return track.Observation{
		Landmarks: face,
		Box:       box,
		Centroid:  box.Center(),
		LeftEAR:   0.30,
		RightEAR:  0.30,
		Score:     face.Score,
	}
}

func closedObservation() track.Observation {
	obs := neutralObservation()
	obs.LeftEAR = 0.05
	obs.RightEAR = 0.05
	return obs
}

func TestSessionApply(t *testing.T) {
	now := time.Now()
	s := New("test", track.DefaultConfig(), now)

	result, ok := s.Apply(now, 640, 480, []track.Observation{neutralObservation()})
	if !ok {
		t.Fatal("apply reported busy on an idle session")
	}

	if result.Count != 1 {
		t.Errorf("count = %d, want 1", result.Count)
	}
	if len(result.Faces) != 1 {
		t.Fatalf("faces = %d, want 1", len(result.Faces))
	}
	if result.Width != 640 || result.Height != 480 {
		t.Errorf("frame size = %dx%d, want 640x480", result.Width, result.Height)
	}
	if result.Faces[0].ID != 0 {
		t.Errorf("first face id = %d, want 0", result.Faces[0].ID)
	}
}

func TestSessionBusySkip(t *testing.T) {
	now := time.Now()
	s := New("test", track.DefaultConfig(), now)

	// Simulate a frame mid-flight by holding the session lock.
	s.mu.Lock()
	result, ok := s.Apply(now, 640, 480, []track.Observation{neutralObservation()})
	s.mu.Unlock()

	if ok {
		t.Error("apply should report busy while another frame holds the lock")
	}
	if result != nil {
		t.Error("busy apply should not produce a result")
	}

	// The skipped frame must not have touched the counters.
	stats := s.Stats(now.Add(time.Second))
	if stats.TotalDetections != 0 {
		t.Errorf("total detections = %d, want 0 after skipped frame", stats.TotalDetections)
	}
}

func TestSessionStats(t *testing.T) {
	start := time.Now()
	s := New("test", track.DefaultConfig(), start)

	// 10 frames of one face, with one blink in the middle
	sequence := []track.Observation{
		neutralObservation(), neutralObservation(), neutralObservation(),
		closedObservation(), closedObservation(), closedObservation(),
		neutralObservation(), neutralObservation(), neutralObservation(), neutralObservation(),
	}

	now := start
	for _, obs := range sequence {
		now = now.Add(100 * time.Millisecond)
		if _, ok := s.Apply(now, 640, 480, []track.Observation{obs}); !ok {
			t.Fatal("apply reported busy")
		}
	}

	stats := s.Stats(now)
	if stats.Count != 1 {
		t.Errorf("count = %d, want 1", stats.Count)
	}
	if stats.UniqueFaces != 1 {
		t.Errorf("unique faces = %d, want 1", stats.UniqueFaces)
	}
	if stats.MaxFaces != 1 {
		t.Errorf("max faces = %d, want 1", stats.MaxFaces)
	}
	if stats.TotalDetections != 10 {
		t.Errorf("total detections = %d, want 10", stats.TotalDetections)
	}
	if stats.DurationSeconds <= 0 {
		t.Errorf("duration = %v, want > 0", stats.DurationSeconds)
	}
	if stats.AvgFacesPerSec <= 0 {
		t.Errorf("avg faces per second = %v, want > 0", stats.AvgFacesPerSec)
	}

	result, _ := s.Latest()
	if result == nil {
		t.Fatal("latest result missing")
	}
	if got := result.Faces[0].BlinkCount; got != 1 {
		t.Errorf("blink count = %d, want 1", got)
	}
}

func TestSessionMaxFacesHighWater(t *testing.T) {
	now := time.Now()
	s := New("test", track.DefaultConfig(), now)

	two := []track.Observation{neutralObservation(), func() track.Observation {
		face := detector.NeutralFaceLandmarks().Shift(-200, 0)
		box := geometry.BoundingBox(&face)
		return track.Observation{Landmarks: face, Box: box, Centroid: box.Center()}
	}()}

	s.Apply(now.Add(time.Millisecond), 640, 480, two)
	s.Apply(now.Add(2*time.Millisecond), 640, 480, []track.Observation{neutralObservation()})

	stats := s.Stats(now.Add(time.Second))
	if stats.MaxFaces != 2 {
		t.Errorf("max faces = %d, want high-water mark 2", stats.MaxFaces)
	}
	if stats.Count != 1 {
		t.Errorf("count = %d, want current count 1", stats.Count)
	}
	if stats.TotalDetections != 3 {
		t.Errorf("total detections = %d, want 3", stats.TotalDetections)
	}
}

func TestSessionReset(t *testing.T) {
	start := time.Now()
	s := New("test", track.DefaultConfig(), start)

	s.Apply(start.Add(time.Millisecond), 640, 480, []track.Observation{neutralObservation()})
	s.Reset(start.Add(time.Second))

	stats := s.Stats(start.Add(2 * time.Second))
	if stats.TotalDetections != 0 || stats.UniqueFaces != 0 || stats.MaxFaces != 0 {
		t.Errorf("stats after reset = %+v, want zeroed counters", stats)
	}

	if result, _ := s.Latest(); result != nil {
		t.Error("latest result should be cleared by reset")
	}

	// Identity numbering restarts after reset
	result, _ := s.Apply(start.Add(3*time.Second), 640, 480, []track.Observation{neutralObservation()})
	if result.Faces[0].ID != 0 {
		t.Errorf("first id after reset = %d, want 0", result.Faces[0].ID)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(track.DefaultConfig())
	now := time.Now()

	t.Run("lazy creation", func(t *testing.T) {
		if registry.Get("a") != nil {
			t.Error("session exists before first use")
		}
		s := registry.Ensure("a", now)
		if s == nil {
			t.Fatal("ensure returned nil")
		}
		if registry.Ensure("a", now) != s {
			t.Error("ensure created a second session for the same id")
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a := registry.Ensure("a", now)
		b := registry.Ensure("b", now)

		a.Apply(now.Add(time.Millisecond), 640, 480, []track.Observation{neutralObservation()})

		if got := b.Stats(now.Add(time.Second)).TotalDetections; got != 0 {
			t.Errorf("session b detections = %d, want 0", got)
		}
	})

	t.Run("unknown session stats are zeroed", func(t *testing.T) {
		stats := registry.Stats("never-seen", now)
		if stats != (Stats{}) {
			t.Errorf("stats = %+v, want zero", stats)
		}
	})

	t.Run("unknown session reset is a no-op", func(t *testing.T) {
		registry.Reset("never-seen", now) // must not panic
		if registry.Get("never-seen") != nil {
			t.Error("reset created a session")
		}
	})

	t.Run("unknown session latest is nil", func(t *testing.T) {
		if result, _ := registry.Latest("never-seen"); result != nil {
			t.Error("latest = non-nil for unknown session")
		}
	})
}
