// Package blink detects eye blinks from a stream of Eye Aspect Ratio values.
//
// A blink is a completed open-closed-open cycle. The detector is a
// two-state machine with hysteresis: the EAR must stay below the close
// threshold for a minimum number of consecutive frames before the eye
// counts as closed, and must rise above a separate, higher open threshold
// before the blink completes. The gap between the thresholds and the
// minimum-frame requirement suppress single-frame detector noise.
package blink

// State is the current eye state of a detector.
type State string

const (
	// StateOpen means the eye is open (or was never observed closed).
	StateOpen State = "open"
	// StateClosed means the EAR has stayed below the close threshold
	// long enough to count as a real closure.
	StateClosed State = "closed"
)

// Config holds the blink detection thresholds.
type Config struct {
	// CloseBelow is the EAR threshold under which the eye is closing.
	CloseBelow float64

	// OpenAbove is the EAR threshold over which a closed eye reopens.
	// Must be greater than CloseBelow for the hysteresis to work.
	OpenAbove float64

	// MinClosedFrames is the number of consecutive sub-threshold frames
	// required before the eye counts as closed.
	MinClosedFrames int
}

// DefaultConfig returns a Config with sensible default thresholds.
func DefaultConfig() Config {
	return Config{
		CloseBelow:      0.21,
		OpenAbove:       0.25,
		MinClosedFrames: 2,
	}
}

// Detector is the per-face blink state machine. It is not safe for
// concurrent use; each tracked face owns exactly one.
type Detector struct {
	config     Config
	state      State
	belowCount int
	count      int
}

// NewDetector creates a blink detector in the open state.
func NewDetector(config Config) *Detector {
	if config.OpenAbove < config.CloseBelow {
		config.OpenAbove = config.CloseBelow
	}
	if config.MinClosedFrames < 1 {
		config.MinClosedFrames = 1
	}
	return &Detector{
		config: config,
		state:  StateOpen,
	}
}

// Observe feeds one EAR sample to the state machine. It returns true
// exactly once per completed blink cycle: on the frame where a closed eye
// reopens. Frames that remain closed, or dip below the threshold too
// briefly, return false.
func (d *Detector) Observe(ear float64) bool {
	switch d.state {
	case StateOpen:
		if ear < d.config.CloseBelow {
			d.belowCount++
			if d.belowCount >= d.config.MinClosedFrames {
				d.state = StateClosed
			}
		} else {
			d.belowCount = 0
		}
		return false

	case StateClosed:
		if ear > d.config.OpenAbove {
			d.state = StateOpen
			d.belowCount = 0
			d.count++
			return true
		}
		return false
	}

	return false
}

// Count returns the cumulative number of completed blinks.
func (d *Detector) Count() int {
	return d.count
}

// State returns the current eye state.
func (d *Detector) State() State {
	return d.state
}

// Reset returns the detector to the open state with a zero count.
func (d *Detector) Reset() {
	d.state = StateOpen
	d.belowCount = 0
	d.count = 0
}
