package camera

import (
	"gocv.io/x/gocv"
)

const quitKey = 'q'

// Window shows annotated frames locally and reports the quit key.
type Window struct {
	window *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays img and reports whether the operator pressed q.
func (w *Window) Show(img gocv.Mat) bool {
	w.window.IMShow(img)
	return w.window.WaitKey(1)&0xFF == quitKey
}

func (w *Window) Close() error {
	return w.window.Close()
}
