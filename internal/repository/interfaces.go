package repository

import (
	"dronetracker/internal/model"
	"time"
)

// FlightRepository defines the interface for flight log operations.
type FlightRepository interface {
	// Create operations
	Insert(flight *model.Flight) (int64, error)

	// Update operations
	Finish(id int64, endedAt time.Time, ticks int) error

	// Read operations
	GetByID(id int64) (*model.Flight, error)
	GetAll(limit int) ([]model.Flight, error)
}

// TickRepository defines the interface for per-tick control records.
type TickRepository interface {
	// Create operations
	InsertBatch(ticks []model.TickRecord) error

	// Read operations
	GetByFlightID(flightID int64, limit int) ([]model.TickRecord, error)
	CountByFlightID(flightID int64) (int, error)
}
