package ai

import (
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

const (
	// NetInputSize is the square input resolution of the face network.
	NetInputSize = 320
	// ssdRowSize is the width of one SSD output row:
	// [batch_id, class_id, confidence, x1, y1, x2, y2].
	ssdRowSize = 7
)

// NetDetector is the learned backend: a single-shot detection network that
// reports at most one face, the highest scoring proposal.
type NetDetector struct {
	net    gocv.Net
	logger *logger.Logger
}

// NewNetDetector loads the network from modelPath and the optional configPath.
func NewNetDetector(modelPath, configPath string, logger *logger.Logger) (*NetDetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: model file %s: %v", ErrModelLoad, modelPath, err)
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%w: model config %s: %v", ErrModelLoad, configPath, err)
		}
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: cannot read network %s", ErrModelLoad, modelPath)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("%w: failed to set preferable backend or target", ErrModelLoad)
	}

	logger.Info("Detection network loaded from %s", modelPath)
	return &NetDetector{net: net, logger: logger}, nil
}

func (d *NetDetector) Kind() model.DetectorKind { return model.Learned }

// Detect returns the best proposal, or nothing when the network proposes none.
func (d *NetDetector) Detect(frame model.Frame) ([]model.Detection, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	if mat.Empty() {
		return nil, nil
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(NetInputSize, NetInputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	if output.Total()%ssdRowSize != 0 || output.Total() == 0 {
		return nil, nil
	}
	rows := output.Reshape(1, output.Total()/ssdRowSize)
	defer rows.Close()

	values := make([][ssdRowSize]float32, rows.Rows())
	for i := range values {
		for j := 0; j < ssdRowSize; j++ {
			values[i][j] = rows.GetFloatAt(i, j)
		}
	}
	return bestProposal(values, frame.Width(), frame.Height()), nil
}

func (d *NetDetector) Close() error {
	return d.net.Close()
}

// bestProposal picks the highest-confidence SSD row and converts its
// normalized box to frame pixels. Rows with non-positive or NaN confidence are ignored.
func bestProposal(rows [][ssdRowSize]float32, width, height int) []model.Detection {
	best := -1
	for i, row := range rows {
		if !(row[2] > 0) {
			continue
		}
		if best < 0 || row[2] > rows[best][2] {
			best = i
		}
	}
	if best < 0 {
		return nil
	}

	row := rows[best]
	w, h := float64(width), float64(height)
	box := model.Box{
		X0: clampUnit(float64(row[3])) * w,
		Y0: clampUnit(float64(row[4])) * h,
		X1: clampUnit(float64(row[5])) * w,
		Y1: clampUnit(float64(row[6])) * h,
	}
	if box.X0 > box.X1 {
		box.X0, box.X1 = box.X1, box.X0
	}
	if box.Y0 > box.Y1 {
		box.Y0, box.Y1 = box.Y1, box.Y0
	}

	confidence := float64(row[2])
	if confidence > 1 {
		confidence = 1
	}
	return []model.Detection{{Box: box, Kind: model.Learned, Confidence: confidence}}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
