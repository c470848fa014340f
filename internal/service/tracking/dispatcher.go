package tracking

import (
	"context"
	"dronetracker/internal/model"
	"fmt"
)

// Actuator is the drone side of the dispatcher.
type Actuator interface {
	Send(ctx context.Context, cmd model.ActuationCommand) error
}

// Command maps a yaw actuation onto a 4-axis command. Without a target every
// axis is zero so the drone actively cancels any previous velocity.
func Command(actuation int, targetPresent bool) model.ActuationCommand {
	if !targetPresent {
		return model.ActuationCommand{}
	}
	return model.ActuationCommand{Yaw: actuation}.Clamped()
}

// Dispatcher sends exactly one command per call.
type Dispatcher struct {
	actuator Actuator
}

func NewDispatcher(actuator Actuator) *Dispatcher {
	return &Dispatcher{actuator: actuator}
}

// Dispatch builds the command and sends it, including the all-zero hover command.
func (d *Dispatcher) Dispatch(ctx context.Context, actuation int, targetPresent bool) (model.ActuationCommand, error) {
	cmd := Command(actuation, targetPresent)
	if err := d.actuator.Send(ctx, cmd); err != nil {
		return cmd, fmt.Errorf("failed to send %s: %w", cmd, err)
	}
	return cmd, nil
}
