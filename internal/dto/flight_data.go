package dto

import (
	"dronetracker/internal/model"
	"encoding/json"
	"time"
)

// FlightInfo is a flight log entry as shown to operators.
type FlightInfo struct {
	model.Flight
	Duration time.Duration `json:"-"`
}

// NewFlightInfo derives the display fields of a flight.
func NewFlightInfo(f model.Flight) FlightInfo {
	info := FlightInfo{Flight: f}
	if f.EndedAt != nil {
		info.Duration = f.EndedAt.Sub(f.StartedAt)
	}
	return info
}

// MarshalJSON adds a human readable duration; unfinished flights report "in flight".
func (f FlightInfo) MarshalJSON() ([]byte, error) {
	duration := "in flight"
	if f.EndedAt != nil {
		duration = f.Duration.Round(time.Second).String()
	}
	return json.Marshal(&struct {
		model.Flight
		Duration string `json:"duration"`
	}{
		Flight:   f.Flight,
		Duration: duration,
	})
}

// FlightsData is the response payload of the flight list.
type FlightsData struct {
	Flights []FlightInfo `json:"flights"`
	Length  int          `json:"length"`
	Limit   int          `json:"pageSize"`
}

// TicksData is the response payload of a single flight's tick history.
type TicksData struct {
	Flight FlightInfo         `json:"flight"`
	Ticks  []model.TickRecord `json:"ticks"`
	Total  int                `json:"total"`
	Limit  int                `json:"pageSize"`
}
