// Package expression classifies facial expressions from geometric ratios.
package expression

import "github.com/ayusman/drishti/internal/geometry"

// Label is a discrete expression class.
type Label string

const (
	// Neutral is the default label, also used for ambiguous faces.
	Neutral Label = "neutral"
	// Smiling means the mouth corners are pulled wide.
	Smiling Label = "smiling"
	// Surprised means the mouth is dropped open.
	Surprised Label = "surprised"
	// Unknown means the face geometry could not be measured.
	Unknown Label = "unknown"
)

// Classification thresholds. A mouth taller than mouthOpenThreshold of
// its width reads as surprise; a mouth wider than smileWidthThreshold of
// the outer eye span reads as a smile. Raised brows reinforce surprise
// but are not required.
const (
	mouthOpenThreshold  = 0.45
	smileWidthThreshold = 0.55
)

// Classify maps geometric ratios to an expression label. It is total:
// every input produces a label, with ambiguous faces defaulting to
// Neutral and unmeasurable ones to Unknown. The same thresholds apply to
// every face; there is no per-user calibration.
func Classify(r geometry.Ratios) Label {
	if !r.Valid {
		return Unknown
	}

	if r.MouthOpen > mouthOpenThreshold {
		return Surprised
	}
	if r.MouthWidth > smileWidthThreshold {
		return Smiling
	}
	return Neutral
}
