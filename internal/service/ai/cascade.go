package ai

import (
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// CascadeDetector is the geometric backend: a multi-scale Haar cascade that
// reports every face it finds together with its area.
type CascadeDetector struct {
	classifier   gocv.CascadeClassifier
	gray         gocv.Mat
	scaleFactor  float64
	minNeighbors int
	logger       *logger.Logger
}

// NewCascadeDetector loads the cascade XML at path.
func NewCascadeDetector(path string, scaleFactor float64, minNeighbors int, logger *logger.Logger) (*CascadeDetector, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: cascade file %s: %v", ErrModelLoad, path, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("%w: cannot read cascade file %s", ErrModelLoad, path)
	}

	logger.Info("Cascade classifier loaded from %s", path)
	return &CascadeDetector{
		classifier:   classifier,
		gray:         gocv.NewMat(),
		scaleFactor:  scaleFactor,
		minNeighbors: minNeighbors,
		logger:       logger,
	}, nil
}

func (d *CascadeDetector) Kind() model.DetectorKind { return model.Geometric }

// Detect returns all faces in the frame, in classifier order.
func (d *CascadeDetector) Detect(frame model.Frame) ([]model.Detection, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	if mat.Empty() {
		return nil, nil
	}

	if err := gocv.CvtColor(mat, &d.gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("failed to convert frame to grayscale: %w", err)
	}

	rects := d.classifier.DetectMultiScaleWithParams(d.gray, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})
	return rectsToDetections(rects), nil
}

func (d *CascadeDetector) Close() error {
	d.gray.Close()
	return d.classifier.Close()
}

// rectsToDetections converts cascade rectangles into geometric detections.
func rectsToDetections(rects []image.Rectangle) []model.Detection {
	detections := make([]model.Detection, 0, len(rects))
	for _, r := range rects {
		r = r.Canon()
		box := model.Box{X0: float64(r.Min.X), Y0: float64(r.Min.Y), X1: float64(r.Max.X), Y1: float64(r.Max.Y)}
		detections = append(detections, model.Detection{
			Box:  box,
			Kind: model.Geometric,
			Area: float64(r.Dx() * r.Dy()),
		})
	}
	return detections
}
