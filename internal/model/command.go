package model

import "fmt"

// Velocity limits accepted by the drone for every axis.
const (
	MinVelocity = -100
	MaxVelocity = 100
)

// ActuationCommand is a 4-axis velocity command. Only Yaw is driven by the
// tracker; the other axes are always sent as zero.
type ActuationCommand struct {
	Lateral      int `json:"lateral"`
	Longitudinal int `json:"longitudinal"`
	Vertical     int `json:"vertical"`
	Yaw          int `json:"yaw"`
}

// Clamped returns the command with every axis limited to the velocity range.
func (c ActuationCommand) Clamped() ActuationCommand {
	return ActuationCommand{
		Lateral:      clampVelocity(c.Lateral),
		Longitudinal: clampVelocity(c.Longitudinal),
		Vertical:     clampVelocity(c.Vertical),
		Yaw:          clampVelocity(c.Yaw),
	}
}

func (c ActuationCommand) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", c.Lateral, c.Longitudinal, c.Vertical, c.Yaw)
}

func clampVelocity(v int) int {
	if v < MinVelocity {
		return MinVelocity
	}
	if v > MaxVelocity {
		return MaxVelocity
	}
	return v
}
