package model

// DetectorKind identifies which detector backend produced a Detection.
type DetectorKind int

const (
	// Geometric detections come from the multi-scale cascade and carry an area.
	Geometric DetectorKind = iota + 1
	// Learned detections come from the DNN and carry a confidence score.
	Learned
)

func (k DetectorKind) String() string {
	switch k {
	case Geometric:
		return "geometric"
	case Learned:
		return "learned"
	default:
		return "unknown"
	}
}

// Point is a position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis aligned bounding box in frame pixels, X0 <= X1 and Y0 <= Y1.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBox builds a Box from a top-left corner and a size.
func NewBox(x, y, width, height float64) Box {
	return Box{X0: x, Y0: y, X1: x + width, Y1: y + height}
}

// Valid reports whether the corners are ordered.
func (b Box) Valid() bool {
	return b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// Width of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Area of the box.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Center returns the box midpoint.
func (b Box) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// Detection is one candidate target reported by a detector for a single frame.
// Geometric detections set Area; learned detections set Confidence in [0, 1].
type Detection struct {
	Box        Box          `json:"box"`
	Kind       DetectorKind `json:"-"`
	Area       float64      `json:"area,omitempty"`
	Confidence float64      `json:"confidence,omitempty"`
}

// Target is the detection chosen for control this tick.
type Target struct {
	Centroid Point   `json:"centroid"`
	Size     float64 `json:"size"`
}
