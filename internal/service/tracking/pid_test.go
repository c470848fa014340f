package tracking

import (
	"math"
	"testing"
)

var parityGains = Gains{Kp: 0.4, Kd: 0.4, Ki: 0}

func TestPID_NoTargetResets(t *testing.T) {
	c := PID{Gains: parityGains}
	inputs := []struct {
		err  float64
		prev State
	}{
		{0, State{}},
		{80, State{PreviousError: 40}},
		{-500, State{PreviousError: 1000, Integral: 50}},
	}
	for _, in := range inputs {
		actuation, next := c.Update(in.err, false, in.prev)
		if actuation != 0 || next != (State{}) {
			t.Errorf("Update(%v, false, %+v) = (%d, %+v), expected (0, {})", in.err, in.prev, actuation, next)
		}
	}
}

func TestPID_CenteredIsZero(t *testing.T) {
	actuation, next := PID{Gains: parityGains}.Update(0, true, State{})
	if actuation != 0 || next.PreviousError != 0 {
		t.Errorf("Expected (0, 0), got (%d, %v)", actuation, next.PreviousError)
	}
}

func TestPID_ProportionalDerivative(t *testing.T) {
	c := PID{Gains: parityGains}
	tests := []struct {
		name     string
		err      float64
		prev     float64
		expected int
	}{
		{"from rest", 80, 0, 64},
		{"steady error", 80, 80, 32},
		{"closing in", 20, 50, -4},
		{"left of center", -50, 0, -40},
		{"rounds down", 1.5625, 0, 1},
		{"rounds up", 1.9, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actuation, next := c.Update(tt.err, true, State{PreviousError: tt.prev})
			if actuation != tt.expected {
				t.Errorf("Expected actuation %d, got %d", tt.expected, actuation)
			}
			if next.PreviousError != tt.err {
				t.Errorf("Expected previous error %v, got %v", tt.err, next.PreviousError)
			}
		})
	}
}

func TestPID_Saturation(t *testing.T) {
	c := PID{Gains: parityGains}
	tests := []struct {
		err      float64
		prev     float64
		expected int
	}{
		{1000, 0, 100},
		{-1000, 0, -100},
		{1e300, -1e300, 100},
		{-1e300, 1e300, -100},
	}
	for _, tt := range tests {
		actuation, _ := c.Update(tt.err, true, State{PreviousError: tt.prev})
		if actuation != tt.expected {
			t.Errorf("Update(%v, prev=%v) = %d, expected %d", tt.err, tt.prev, actuation, tt.expected)
		}
	}

	for e := -5000.0; e <= 5000; e += 37 {
		actuation, _ := c.Update(e, true, State{PreviousError: -e})
		if actuation < -100 || actuation > 100 {
			t.Fatalf("Actuation %d out of range for error %v", actuation, e)
		}
	}
}

func TestPID_NaNIsZero(t *testing.T) {
	actuation, _ := PID{Gains: parityGains}.Update(math.NaN(), true, State{})
	if actuation != 0 {
		t.Errorf("Expected 0 for NaN error, got %d", actuation)
	}
}

func TestPID_IntegralIgnoredWithoutMode(t *testing.T) {
	c := PID{Gains: Gains{Kp: 0.4, Kd: 0.4, Ki: 0.5}}
	actuation, next := c.Update(10, true, State{PreviousError: 10, Integral: 40})
	if actuation != 4 {
		t.Errorf("Expected Ki to be ignored (4), got %d", actuation)
	}
	if next.Integral != 0 {
		t.Errorf("Expected no integral accumulation, got %v", next.Integral)
	}
}

func TestPID_IntegralMode(t *testing.T) {
	c := PID{Gains: Gains{Kp: 0, Kd: 0, Ki: 0.5}, Integral: true}

	state := State{}
	var actuation int
	for i := 0; i < 3; i++ {
		actuation, state = c.Update(10, true, state)
	}
	if state.Integral != 30 {
		t.Errorf("Expected integral 30, got %v", state.Integral)
	}
	if actuation != 15 {
		t.Errorf("Expected actuation 15, got %d", actuation)
	}

	// windup is capped at MaxVelocity / Ki
	for i := 0; i < 100; i++ {
		actuation, state = c.Update(1000, true, state)
	}
	if state.Integral != 200 {
		t.Errorf("Expected integral capped at 200, got %v", state.Integral)
	}
	if actuation != 100 {
		t.Errorf("Expected saturated actuation, got %d", actuation)
	}

	actuation, state = c.Update(1000, false, state)
	if actuation != 0 || state != (State{}) {
		t.Errorf("Expected reset on target loss, got (%d, %+v)", actuation, state)
	}
}
