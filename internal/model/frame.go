package model

// Frame is one captured camera image. It is immutable once captured and
// must be closed by the tick that produced it.
type Frame interface {
	Width() int
	Height() int
	Close() error
}
