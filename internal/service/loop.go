package service

import (
	"context"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"dronetracker/internal/service/tracking"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrFrameSource is returned when the video stream keeps failing.
var ErrFrameSource = errors.New("frame source failed repeatedly")

const landTimeout = 20 * time.Second

// FrameSource supplies the next camera frame at the configured resolution.
type FrameSource interface {
	Next() (model.Frame, error)
}

// Detector finds candidate targets in a frame.
type Detector interface {
	Detect(frame model.Frame) ([]model.Detection, error)
}

// Drone is the flight side of the control loop.
type Drone interface {
	TakeOff(ctx context.Context) error
	Land(ctx context.Context) error
	Send(ctx context.Context, cmd model.ActuationCommand) error
}

// TickResult describes what one tick saw and did.
type TickResult struct {
	Record     model.TickRecord
	Detections []model.Detection
	Target     model.Target
}

// Observer is notified after every tick, before the frame is released.
// frame is nil when the tick could not capture one.
type Observer interface {
	Observe(frame model.Frame, result TickResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(frame model.Frame, result TickResult)

func (f ObserverFunc) Observe(frame model.Frame, result TickResult) { f(frame, result) }

// LoopConfig holds the static inputs of a ControlLoop.
type LoopConfig struct {
	Source           FrameSource
	Detector         Detector
	Selector         tracking.Selector
	Controller       tracking.PID
	Drone            Drone
	MaxFrameFailures int
	Observers        []Observer
}

// ControlLoop runs detect, select, control and actuate once per tick and
// owns the flight phase. It is not safe for concurrent use; Phase may be
// read from any goroutine.
type ControlLoop struct {
	source           FrameSource
	detector         Detector
	selector         tracking.Selector
	controller       tracking.PID
	dispatcher       *tracking.Dispatcher
	drone            Drone
	observers        []Observer
	maxFrameFailures int
	logger           *logger.Logger

	phaseMu       sync.RWMutex
	phase         model.FlightPhase
	seq           int64
	frameFailures int
}

// NewControlLoop creates a grounded control loop.
func NewControlLoop(cfg LoopConfig, logger *logger.Logger) *ControlLoop {
	maxFailures := cfg.MaxFrameFailures
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &ControlLoop{
		source:           cfg.Source,
		detector:         cfg.Detector,
		selector:         cfg.Selector,
		controller:       cfg.Controller,
		dispatcher:       tracking.NewDispatcher(cfg.Drone),
		drone:            cfg.Drone,
		observers:        cfg.Observers,
		maxFrameFailures: maxFailures,
		logger:           logger,
		phase:            model.Grounded,
	}
}

// Phase returns the current flight phase.
func (l *ControlLoop) Phase() model.FlightPhase {
	l.phaseMu.RLock()
	defer l.phaseMu.RUnlock()
	return l.phase
}

func (l *ControlLoop) setPhase(p model.FlightPhase) {
	l.phaseMu.Lock()
	l.phase = p
	l.phaseMu.Unlock()
	l.logger.Info("Flight phase: %s", p)
}

// AddObserver registers an observer. It must be called before Run.
func (l *ControlLoop) AddObserver(o Observer) {
	l.observers = append(l.observers, o)
}

// EnsureAirborne takes off when grounded. Any other phase is left untouched,
// so it is safe to call on every tick.
func (l *ControlLoop) EnsureAirborne(ctx context.Context) error {
	if l.Phase() != model.Grounded {
		return nil
	}
	l.logger.Info("Taking off")
	err := l.drone.TakeOff(ctx)
	// An unconfirmed takeoff may still lift off, so the drone is treated as
	// airborne and Land stays reachable.
	l.setPhase(model.Airborne)
	if err != nil {
		return fmt.Errorf("takeoff failed: %w", err)
	}
	return nil
}

// Land hovers and lands when airborne, then terminates the loop. Landing is
// issued at most once.
func (l *ControlLoop) Land(ctx context.Context) error {
	switch l.Phase() {
	case model.Airborne:
	case model.Grounded:
		l.setPhase(model.Terminated)
		return nil
	default:
		return nil
	}

	l.setPhase(model.Landing)
	if err := l.drone.Send(ctx, model.ActuationCommand{}); err != nil {
		l.logger.Warning("Hover before landing failed: %v", err)
	}
	l.logger.Info("Landing")
	err := l.drone.Land(ctx)
	l.setPhase(model.Terminated)
	if err != nil {
		return fmt.Errorf("landing failed: %w", err)
	}
	return nil
}

// Tick runs the pipeline once using prev as the controller memory and
// returns the memory for the next tick. An error means the loop cannot
// continue.
func (l *ControlLoop) Tick(ctx context.Context, prev tracking.State) (TickResult, tracking.State, error) {
	l.seq++
	result := TickResult{Record: model.TickRecord{Seq: l.seq, Timestamp: time.Now()}}

	frame, err := l.source.Next()
	if err != nil {
		l.frameFailures++
		if l.frameFailures >= l.maxFrameFailures {
			return result, tracking.State{}, fmt.Errorf("%w: %d consecutive failures: %v", ErrFrameSource, l.frameFailures, err)
		}
		l.logger.Warning("Frame capture failed (%d/%d): %v", l.frameFailures, l.maxFrameFailures, err)
		frame = nil
	} else {
		l.frameFailures = 0
		defer frame.Close()
	}

	var target model.Target
	present := false
	if frame != nil {
		detections, err := l.detector.Detect(frame)
		if err != nil {
			l.logger.Warning("Detection failed: %v", err)
		}
		result.Detections = detections
		target, present = l.selector.Select(detections)
	}

	errValue := 0.0
	if present {
		errValue = tracking.HorizontalError(target, frame.Width())
	}
	actuation, next := l.controller.Update(errValue, present, prev)

	cmd, err := l.dispatcher.Dispatch(ctx, actuation, present)
	if err != nil {
		l.logger.Error("Dispatch failed: %v", err)
	}

	l.logger.Info("Current speed: %d (target=%t error=%.1f)", actuation, present, errValue)

	result.Target = target
	result.Record.Detections = len(result.Detections)
	result.Record.TargetPresent = present
	if present {
		result.Record.CX = target.Centroid.X
		result.Record.CY = target.Centroid.Y
		result.Record.Size = target.Size
	}
	result.Record.Error = errValue
	result.Record.Actuation = actuation
	result.Record.Command = cmd

	for _, o := range l.observers {
		o.Observe(frame, result)
	}
	return result, next, nil
}

// Run takes off and ticks until ctx is cancelled, then lands. Cancellation
// is checked once per tick after the command is sent, so a tick is never
// interrupted. A failed takeoff or a frame source fault also lands the drone.
func (l *ControlLoop) Run(ctx context.Context) error {
	tickCtx := context.WithoutCancel(ctx)
	var state tracking.State

	for {
		if err := l.EnsureAirborne(tickCtx); err != nil {
			l.logger.Error("Takeoff not confirmed: %v", err)
			return errors.Join(err, l.land(ctx))
		}

		_, next, err := l.Tick(tickCtx, state)
		state = next
		if err != nil {
			l.logger.Error("Unrecoverable fault: %v", err)
			return errors.Join(err, l.land(ctx))
		}

		select {
		case <-ctx.Done():
			l.logger.Info("Stop signal received")
			return l.land(ctx)
		default:
		}
	}
}

func (l *ControlLoop) land(ctx context.Context) error {
	landCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), landTimeout)
	defer cancel()
	return l.Land(landCtx)
}
