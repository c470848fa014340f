package tracking

import (
	"dronetracker/internal/model"
	"math"
)

// Gains is the controller gain triple.
type Gains struct {
	Kp float64
	Kd float64
	Ki float64
}

// State is the controller memory carried from one tick to the next.
type State struct {
	PreviousError float64
	Integral      float64
}

// PID converts a pixel error into a bounded yaw actuation. It holds no
// state of its own; the caller threads State through successive updates.
//
// With Integral unset Ki is ignored and the law is Kp*e + Kd*(e - prev).
type PID struct {
	Gains    Gains
	Integral bool
}

// Update returns the actuation for err and the state for the next tick.
// When no target is present it returns zero actuation and a zero state.
func (c PID) Update(err float64, targetPresent bool, prev State) (int, State) {
	if !targetPresent {
		return 0, State{}
	}

	raw := c.Gains.Kp*err + c.Gains.Kd*(err-prev.PreviousError)
	next := State{PreviousError: err}

	if c.Integral && c.Gains.Ki != 0 {
		// Accumulator bounded so Ki*integral alone cannot exceed saturation.
		limit := math.Abs(float64(model.MaxVelocity) / c.Gains.Ki)
		next.Integral = clamp(prev.Integral+err, -limit, limit)
		raw += c.Gains.Ki * next.Integral
	}

	return saturate(raw), next
}

// saturate rounds raw and clamps it to the velocity range. NaN maps to zero.
func saturate(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	return int(clamp(math.Round(raw), model.MinVelocity, model.MaxVelocity))
}

// clamp keeps value inside [lo, hi].
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
