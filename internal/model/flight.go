package model

import (
	"fmt"
	"time"
)

// FlightPhase is the coarse lifecycle state of the platform.
type FlightPhase int

const (
	Grounded FlightPhase = iota
	Airborne
	Landing
	Terminated
)

func (p FlightPhase) String() string {
	switch p {
	case Grounded:
		return "GROUNDED"
	case Airborne:
		return "AIRBORNE"
	case Landing:
		return "LANDING"
	case Terminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("FlightPhase(%d)", int(p))
	}
}

// Flight represents a flight log record.
type Flight struct {
	ID        int64      `json:"id"`
	UUID      string     `json:"uuid"`
	Backend   string     `json:"backend"`
	Battery   int        `json:"battery"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Ticks     int        `json:"ticks"`
}

// TickRecord is the outcome of one control tick.
type TickRecord struct {
	FlightID      int64            `json:"flight_id"`
	Seq           int64            `json:"seq"`
	Timestamp     time.Time        `json:"timestamp"`
	Detections    int              `json:"detections"`
	TargetPresent bool             `json:"target_present"`
	CX            float64          `json:"cx"`
	CY            float64          `json:"cy"`
	Size          float64          `json:"size"`
	Error         float64          `json:"error"`
	Actuation     int              `json:"actuation"`
	Command       ActuationCommand `json:"command"`
}
