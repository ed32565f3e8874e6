// Package track associates per-frame face detections with persistent
// identities across a stream of frames, and owns the per-identity temporal
// state: blink counting, rolling Eye Aspect Ratio history, and smoothed
// head pose.
package track

import (
	"sort"
	"time"

	"github.com/ayusman/drishti/internal/blink"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/expression"
	"github.com/ayusman/drishti/internal/geometry"
)

// Config holds the tracker tuning parameters.
type Config struct {
	// MatchDistanceFrac is the maximum centroid distance for matching a
	// detection to an existing face, as a fraction of the frame diagonal.
	MatchDistanceFrac float64

	// EvictAfterMissed is the number of consecutive unmatched frames
	// after which a face is destroyed (roughly 1-2 seconds at webcam
	// frame rates).
	EvictAfterMissed int

	// EARHistoryLen bounds the rolling Eye Aspect Ratio history kept per
	// face.
	EARHistoryLen int

	// PoseSmoothing is the exponential moving average weight given to a
	// new pose sample, in (0, 1].
	PoseSmoothing float64

	// Blink configures the per-face blink detectors.
	Blink blink.Config
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MatchDistanceFrac: 0.15,
		EvictAfterMissed:  15,
		EARHistoryLen:     30,
		PoseSmoothing:     0.3,
		Blink:             blink.DefaultConfig(),
	}
}

// Observation is one frame's raw measurement of one face, as produced by
// the geometry stage. Observations carry no identity; the tracker assigns
// one.
type Observation struct {
	Landmarks detector.FaceLandmarks
	Box       geometry.Box
	Centroid  geometry.Point
	LeftEAR   float64
	RightEAR  float64
	Pose      geometry.Pose
	PoseOK    bool
	Expression expression.Label
	Quality   geometry.Quality
	Score     float64
}

// centroidHistoryLen bounds the short position history used for the
// movement speed estimate.
const centroidHistoryLen = 5

type centroidSample struct {
	point geometry.Point
	at    time.Time
}

// TrackedFace is a persistent face identity. Identity numbers are unique
// for the tracker's lifetime and strictly increase; an evicted face's
// number is never reissued.
type TrackedFace struct {
	ID         int
	Box        geometry.Box
	Centroid   geometry.Point
	Landmarks  detector.FaceLandmarks
	LeftEAR    float64
	RightEAR   float64
	Pose       geometry.Pose
	Expression expression.Label
	Quality    geometry.Quality
	Score      float64
	FirstSeen  time.Time
	LastSeen   time.Time

	earHistory   []float64
	centroidHist []centroidSample
	blink        *blink.Detector
	poseValid    bool
	missed       int
}

// BlinkCount returns the cumulative number of completed blinks for this face.
func (f *TrackedFace) BlinkCount() int {
	return f.blink.Count()
}

// EyeState returns the blink detector's current eye state.
func (f *TrackedFace) EyeState() blink.State {
	return f.blink.State()
}

// EARHistory returns a copy of the rolling Eye Aspect Ratio history,
// oldest first.
func (f *TrackedFace) EARHistory() []float64 {
	out := make([]float64, len(f.earHistory))
	copy(out, f.earHistory)
	return out
}

// Missed returns how many consecutive frames this face has gone unmatched.
func (f *TrackedFace) Missed() int {
	return f.missed
}

// Speed estimates the face's movement in pixels per second over its recent
// position history. Returns 0 with fewer than two samples.
func (f *TrackedFace) Speed() float64 {
	if len(f.centroidHist) < 2 {
		return 0
	}

	first := f.centroidHist[0]
	last := f.centroidHist[len(f.centroidHist)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 {
		return 0
	}
	return geometry.Distance(first.point, last.point) / dt
}

// Tracker assigns frame observations to persistent identities using
// greedy nearest-centroid matching. It is not safe for concurrent use;
// the owning session serializes access.
type Tracker struct {
	config Config
	faces  map[int]*TrackedFace
	nextID int
}

// NewTracker creates a Tracker with the given configuration.
func NewTracker(config Config) *Tracker {
	if config.EARHistoryLen < 1 {
		config.EARHistoryLen = 1
	}
	if config.PoseSmoothing <= 0 || config.PoseSmoothing > 1 {
		config.PoseSmoothing = DefaultConfig().PoseSmoothing
	}
	return &Tracker{
		config: config,
		faces:  make(map[int]*TrackedFace),
	}
}

// candidate is one possible detection-to-face pairing.
type candidate struct {
	faceID int
	obsIdx int
	dist   float64
}

// Update processes one frame's observations and returns the faces present
// in that frame, ordered by identity.
//
// Matching is greedy nearest-neighbor: all face/observation pairs within
// the distance threshold are sorted ascending and accepted first-come,
// so each face claims at most one observation and vice versa. With at
// most a handful of faces per frame this is indistinguishable from an
// optimal assignment except when faces cross faster than the threshold,
// which no centroid-only matcher resolves anyway.
//
// Unmatched faces age by one missed frame and are evicted past the
// configured limit. Unmatched observations spawn new identities.
func (t *Tracker) Update(now time.Time, frameDiag float64, observations []Observation) []*TrackedFace {
	threshold := t.config.MatchDistanceFrac * frameDiag

	var candidates []candidate
	for id, face := range t.faces {
		for i := range observations {
			dist := geometry.Distance(face.Centroid, observations[i].Centroid)
			if dist <= threshold {
				candidates = append(candidates, candidate{faceID: id, obsIdx: i, dist: dist})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	matchedFace := make(map[int]bool)
	matchedObs := make(map[int]bool)
	var present []*TrackedFace

	for _, c := range candidates {
		if matchedFace[c.faceID] || matchedObs[c.obsIdx] {
			continue
		}
		matchedFace[c.faceID] = true
		matchedObs[c.obsIdx] = true

		face := t.faces[c.faceID]
		face.update(now, observations[c.obsIdx], t.config)
		present = append(present, face)
	}

	// Unmatched observations become new faces
	for i := range observations {
		if matchedObs[i] {
			continue
		}
		face := t.newFace(now, observations[i])
		present = append(present, face)
	}

	// Unmatched faces age, and are evicted past the limit
	for id, face := range t.faces {
		if matchedFace[id] {
			continue
		}
		face.missed++
		if face.missed > t.config.EvictAfterMissed {
			delete(t.faces, id)
		}
	}

	sort.Slice(present, func(i, j int) bool {
		return present[i].ID < present[j].ID
	})

	return present
}

// newFace spawns a TrackedFace with the next identity number.
func (t *Tracker) newFace(now time.Time, obs Observation) *TrackedFace {
	face := &TrackedFace{
		ID:         t.nextID,
		Box:        obs.Box,
		Centroid:   obs.Centroid,
		Landmarks:  obs.Landmarks,
		LeftEAR:    obs.LeftEAR,
		RightEAR:   obs.RightEAR,
		Expression: obs.Expression,
		Quality:    obs.Quality,
		Score:      obs.Score,
		FirstSeen:  now,
		LastSeen:   now,
		blink:      blink.NewDetector(t.config.Blink),
	}
	t.nextID++

	if obs.PoseOK {
		face.Pose = obs.Pose
		face.poseValid = true
	}

	face.pushEAR((obs.LeftEAR+obs.RightEAR)/2, t.config.EARHistoryLen)
	face.blink.Observe((obs.LeftEAR + obs.RightEAR) / 2)
	face.centroidHist = append(face.centroidHist, centroidSample{point: obs.Centroid, at: now})

	t.faces[face.ID] = face
	return face
}

// update folds a matched observation into the face's persistent state.
func (f *TrackedFace) update(now time.Time, obs Observation, config Config) {
	f.Box = obs.Box
	f.Centroid = obs.Centroid
	f.Landmarks = obs.Landmarks
	f.LeftEAR = obs.LeftEAR
	f.RightEAR = obs.RightEAR
	f.Expression = obs.Expression
	f.Quality = obs.Quality
	f.Score = obs.Score
	f.LastSeen = now
	f.missed = 0

	if obs.PoseOK {
		if f.poseValid {
			a := config.PoseSmoothing
			f.Pose.Yaw = a*obs.Pose.Yaw + (1-a)*f.Pose.Yaw
			f.Pose.Pitch = a*obs.Pose.Pitch + (1-a)*f.Pose.Pitch
			f.Pose.Roll = a*obs.Pose.Roll + (1-a)*f.Pose.Roll
		} else {
			f.Pose = obs.Pose
			f.poseValid = true
		}
	}
	// A degenerate solve keeps the last valid pose

	avgEAR := (obs.LeftEAR + obs.RightEAR) / 2
	f.pushEAR(avgEAR, config.EARHistoryLen)
	f.blink.Observe(avgEAR)

	f.centroidHist = append(f.centroidHist, centroidSample{point: obs.Centroid, at: now})
	if len(f.centroidHist) > centroidHistoryLen {
		f.centroidHist = f.centroidHist[len(f.centroidHist)-centroidHistoryLen:]
	}
}

func (f *TrackedFace) pushEAR(ear float64, limit int) {
	f.earHistory = append(f.earHistory, ear)
	if len(f.earHistory) > limit {
		f.earHistory = f.earHistory[len(f.earHistory)-limit:]
	}
}

// Faces returns all currently tracked faces, including ones missed in
// recent frames but not yet evicted, ordered by identity.
func (t *Tracker) Faces() []*TrackedFace {
	out := make([]*TrackedFace, 0, len(t.faces))
	for _, face := range t.faces {
		out = append(out, face)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// UniqueFaces returns how many distinct identities this tracker has ever
// issued. Evictions do not decrease it.
func (t *Tracker) UniqueFaces() int {
	return t.nextID
}

// Reset destroys all tracked faces and restarts identity numbering.
func (t *Tracker) Reset() {
	t.faces = make(map[int]*TrackedFace)
	t.nextID = 0
}
