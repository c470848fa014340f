package ai

import (
	"dronetracker/internal/config"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"dronetracker/internal/service/camera"
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrModelLoad is returned when a classifier or network cannot be loaded.
	ErrModelLoad = errors.New("failed to load detection model")
	// ErrUnsupportedFrame is returned for frames not captured by the camera package.
	ErrUnsupportedFrame = errors.New("unsupported frame type")
)

// Detector finds candidate faces in a frame. Results are recomputed on every call.
type Detector interface {
	Detect(frame model.Frame) ([]model.Detection, error)
	Kind() model.DetectorKind
	Close() error
}

// NewDetector loads the detector selected by the configured backend.
func NewDetector(cfg *config.Config, logger *logger.Logger) (Detector, error) {
	switch cfg.Backend {
	case config.BackendGeometric:
		return NewCascadeDetector(cfg.CascadePath, cfg.ScaleFactor, cfg.MinNeighbors, logger)
	case config.BackendLearned:
		return NewNetDetector(cfg.ModelPath, cfg.ModelConfig, logger)
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.Backend)
	}
}

func matOf(frame model.Frame) (gocv.Mat, error) {
	f, ok := frame.(*camera.Frame)
	if !ok || f == nil {
		return gocv.Mat{}, fmt.Errorf("%w: %T", ErrUnsupportedFrame, frame)
	}
	return f.Mat(), nil
}
