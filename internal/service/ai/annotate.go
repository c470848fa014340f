package ai

import (
	"dronetracker/internal/model"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	red   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	green = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// Annotate returns a copy of the frame with every detection boxed and the
// selected target marked. The caller must close the returned Mat.
func Annotate(frame model.Frame, detections []model.Detection, target model.Target, targetPresent bool) (gocv.Mat, error) {
	src, err := matOf(frame)
	if err != nil {
		return gocv.Mat{}, err
	}
	mat := src.Clone()

	for _, d := range detections {
		rect := image.Rect(int(d.Box.X0), int(d.Box.Y0), int(d.Box.X1), int(d.Box.Y1))
		if err := gocv.Rectangle(&mat, rect, red, 2); err != nil {
			mat.Close()
			return gocv.Mat{}, fmt.Errorf("failed to draw rectangle: %w", err)
		}
		if d.Kind == model.Learned {
			label := fmt.Sprintf("face (%.2f)", d.Confidence)
			if err := gocv.PutText(&mat, label, image.Pt(rect.Min.X, rect.Min.Y-5), gocv.FontHersheySimplex, 0.5, red, 1); err != nil {
				mat.Close()
				return gocv.Mat{}, fmt.Errorf("failed to draw text: %w", err)
			}
		}
	}

	if targetPresent {
		center := image.Pt(int(target.Centroid.X), int(target.Centroid.Y))
		if err := gocv.Circle(&mat, center, 5, green, -1); err != nil {
			mat.Close()
			return gocv.Mat{}, fmt.Errorf("failed to draw centroid: %w", err)
		}
	}
	return mat, nil
}

// EncodeJPEG encodes mat as a JPEG image.
func EncodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
