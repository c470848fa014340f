package camera

import (
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the stream yields nothing readable.
var ErrNoFrame = errors.New("no frame available")

// Source reads frames from the drone video stream and scales them to a fixed size.
type Source struct {
	capture *gocv.VideoCapture
	raw     gocv.Mat
	size    image.Point
	logger  *logger.Logger
}

// Open connects to the video stream at url. Frames are resized to width x height.
func Open(url string, width, height int, logger *logger.Logger) (*Source, error) {
	capture, err := gocv.OpenVideoCapture(url)
	if err != nil {
		return nil, fmt.Errorf("failed to open video stream %s: %w", url, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video stream %s is not open", url)
	}

	logger.Info("Video stream opened: %s (%dx%d)", url, width, height)
	return &Source{
		capture: capture,
		raw:     gocv.NewMat(),
		size:    image.Pt(width, height),
		logger:  logger,
	}, nil
}

// Next captures one frame. The caller owns the returned frame.
func (s *Source) Next() (model.Frame, error) {
	if ok := s.capture.Read(&s.raw); !ok {
		return nil, fmt.Errorf("%w: read failed", ErrNoFrame)
	}
	if s.raw.Empty() {
		return nil, fmt.Errorf("%w: empty frame", ErrNoFrame)
	}

	resized := gocv.NewMat()
	if err := gocv.Resize(s.raw, &resized, s.size, 0, 0, gocv.InterpolationLinear); err != nil {
		resized.Close()
		return nil, fmt.Errorf("failed to resize frame: %w", err)
	}
	return NewFrame(resized), nil
}

// Close stops reading the stream.
func (s *Source) Close() error {
	s.raw.Close()
	return s.capture.Close()
}
