package app

import (
	"dronetracker/internal/dto"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"dronetracker/internal/service"
	"dronetracker/internal/service/ai"
	"dronetracker/internal/service/camera"
	"dronetracker/internal/service/websocket"
	"encoding/base64"
	"encoding/json"
)

// telemetryPublisher broadcasts the annotated frame and tick record to viewers.
type telemetryPublisher struct {
	hub    *websocket.HubService
	flight string
	phase  func() model.FlightPhase
	logger *logger.Logger
}

func newTelemetryPublisher(hub *websocket.HubService, flight string, phase func() model.FlightPhase, logger *logger.Logger) *telemetryPublisher {
	return &telemetryPublisher{hub: hub, flight: flight, phase: phase, logger: logger}
}

func (p *telemetryPublisher) Observe(frame model.Frame, result service.TickResult) {
	if p.hub.GetClientCount() == 0 {
		return
	}

	msg := dto.Telemetry{
		Phase:      p.phase().String(),
		Flight:     p.flight,
		Tick:       result.Record,
		Detections: result.Detections,
		Command:    result.Record.Command,
	}
	if result.Record.TargetPresent {
		target := result.Target
		msg.Target = &target
	}

	if frame != nil {
		img, err := encodeAnnotated(frame, result)
		if err != nil {
			p.logger.Warning("Failed to encode telemetry frame: %v", err)
		} else {
			msg.Image = base64.StdEncoding.EncodeToString(img)
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal telemetry: %v", err)
		return
	}
	p.hub.Broadcast(data)
}

func encodeAnnotated(frame model.Frame, result service.TickResult) ([]byte, error) {
	mat, err := ai.Annotate(frame, result.Detections, result.Target, result.Record.TargetPresent)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return ai.EncodeJPEG(mat)
}

// newWindowObserver shows the annotated frame locally; pressing q raises the stop signal.
func newWindowObserver(window *camera.Window, stop func(), logger *logger.Logger) service.Observer {
	return service.ObserverFunc(func(frame model.Frame, result service.TickResult) {
		if frame == nil {
			return
		}
		mat, err := ai.Annotate(frame, result.Detections, result.Target, result.Record.TargetPresent)
		if err != nil {
			logger.Warning("Failed to annotate frame: %v", err)
			return
		}
		defer mat.Close()

		if window.Show(mat) {
			logger.Info("Stop requested from window")
			stop()
		}
	})
}
