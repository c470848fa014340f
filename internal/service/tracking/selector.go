package tracking

import (
	"dronetracker/internal/config"
	"dronetracker/internal/model"
	"fmt"
)

// DefaultConfidenceThreshold is the learned backend rejection threshold.
const DefaultConfidenceThreshold = 0.25

// Selector picks at most one target out of a frame's detections.
type Selector interface {
	Select(detections []model.Detection) (model.Target, bool)
}

// LargestArea selects the detection with the largest area. Ties keep the
// first detection encountered.
type LargestArea struct{}

func (LargestArea) Select(detections []model.Detection) (model.Target, bool) {
	best := -1
	for i, d := range detections {
		if best < 0 || d.Area > detections[best].Area {
			best = i
		}
	}
	if best < 0 {
		return model.Target{}, false
	}
	d := detections[best]
	return model.Target{Centroid: d.Box.Center(), Size: d.Area}, true
}

// ConfidenceGate accepts the single learned detection when its confidence is
// strictly above Threshold. Only the first detection is considered.
type ConfidenceGate struct {
	Threshold float64
}

func (g ConfidenceGate) Select(detections []model.Detection) (model.Target, bool) {
	if len(detections) == 0 {
		return model.Target{}, false
	}
	d := detections[0]
	// NaN fails every comparison, so it must not pass the gate.
	if !(d.Confidence > g.Threshold) {
		return model.Target{}, false
	}
	return model.Target{Centroid: d.Box.Center(), Size: d.Box.Area()}, true
}

// NewSelector returns the selection policy matching a detector backend.
func NewSelector(backend string, threshold float64) (Selector, error) {
	switch backend {
	case config.BackendGeometric:
		return LargestArea{}, nil
	case config.BackendLearned:
		return ConfidenceGate{Threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("no target selector for backend %q", backend)
	}
}
