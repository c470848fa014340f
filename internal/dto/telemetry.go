package dto

import "dronetracker/internal/model"

// Telemetry is broadcast to viewers once per control tick.
type Telemetry struct {
	Phase      string                 `json:"phase"`
	Flight     string                 `json:"flight"`
	Tick       model.TickRecord       `json:"tick"`
	Detections []model.Detection      `json:"detections"`
	Target     *model.Target          `json:"target,omitempty"`
	Command    model.ActuationCommand `json:"command"`
	Image      string                 `json:"image,omitempty"` // base64 JPEG of the annotated frame
}
