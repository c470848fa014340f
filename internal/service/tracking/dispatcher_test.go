package tracking

import (
	"context"
	"dronetracker/internal/model"
	"errors"
	"testing"
)

type recordingActuator struct {
	sent []model.ActuationCommand
	err  error
}

func (a *recordingActuator) Send(ctx context.Context, cmd model.ActuationCommand) error {
	a.sent = append(a.sent, cmd)
	return a.err
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name      string
		actuation int
		present   bool
		expected  model.ActuationCommand
	}{
		{"target present", 40, true, model.ActuationCommand{Yaw: 40}},
		{"negative yaw", -73, true, model.ActuationCommand{Yaw: -73}},
		{"clamped", 250, true, model.ActuationCommand{Yaw: 100}},
		{"no target", 40, false, model.ActuationCommand{}},
		{"no target zero", 0, false, model.ActuationCommand{}},
		{"no target saturated", -100, false, model.ActuationCommand{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Command(tt.actuation, tt.present); got != tt.expected {
				t.Errorf("Command(%d, %v) = %s, expected %s", tt.actuation, tt.present, got, tt.expected)
			}
		})
	}
}

func TestDispatcher_SendsEveryCall(t *testing.T) {
	actuator := &recordingActuator{}
	d := NewDispatcher(actuator)
	ctx := context.Background()

	if _, err := d.Dispatch(ctx, 40, true); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if _, err := d.Dispatch(ctx, 40, false); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if len(actuator.sent) != 2 {
		t.Fatalf("Expected 2 commands, got %d", len(actuator.sent))
	}
	if actuator.sent[0] != (model.ActuationCommand{Yaw: 40}) {
		t.Errorf("Unexpected first command %s", actuator.sent[0])
	}
	if actuator.sent[1] != (model.ActuationCommand{}) {
		t.Errorf("Expected explicit hover command, got %s", actuator.sent[1])
	}
}

func TestDispatcher_WrapsSendError(t *testing.T) {
	sendErr := errors.New("socket closed")
	d := NewDispatcher(&recordingActuator{err: sendErr})

	cmd, err := d.Dispatch(context.Background(), 12, true)
	if !errors.Is(err, sendErr) {
		t.Errorf("Expected wrapped send error, got %v", err)
	}
	if cmd.Yaw != 12 {
		t.Errorf("Expected the attempted command to be returned, got %s", cmd)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	detections := []model.Detection{geometric(235, 100, 50, 20)}

	target, ok := LargestArea{}.Select(detections)
	if !ok {
		t.Fatal("Expected a target")
	}
	if target.Centroid.X != 260 || target.Size != 1000 {
		t.Fatalf("Unexpected target %+v", target)
	}

	e := HorizontalError(target, 360)
	if e != 80 {
		t.Fatalf("Expected error 80, got %v", e)
	}

	actuation, state := PID{Gains: parityGains}.Update(e, true, State{})
	if actuation != 64 {
		t.Fatalf("Expected actuation 64, got %d", actuation)
	}
	if state.PreviousError != 80 {
		t.Errorf("Expected previous error 80, got %v", state.PreviousError)
	}

	if cmd := Command(actuation, true); cmd != (model.ActuationCommand{Yaw: 64}) {
		t.Errorf("Expected yaw command 64, got %s", cmd)
	}
}
