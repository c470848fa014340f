package camera

import "gocv.io/x/gocv"

// Frame is a captured BGR image backed by an OpenCV matrix.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

func (f *Frame) Width() int  { return f.mat.Cols() }
func (f *Frame) Height() int { return f.mat.Rows() }

// Mat returns the underlying matrix. Callers must not modify or close it.
func (f *Frame) Mat() gocv.Mat { return f.mat }

func (f *Frame) Close() error { return f.mat.Close() }
