package sqlite

import (
	"database/sql"
	"dronetracker/internal/model"
	"fmt"
	"time"
)

// FlightRepository implements repository.FlightRepository for SQLite.
type FlightRepository struct {
	db *DB
}

// NewFlightRepository creates a new SQLite flight repository.
func NewFlightRepository(db *DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// Insert adds a new flight record to the database.
func (r *FlightRepository) Insert(flight *model.Flight) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO flights (uuid, backend, battery, started_at)
		VALUES (?, ?, ?, ?)
	`, flight.UUID, flight.Backend, flight.Battery, flight.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert flight: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	flight.ID = id
	return id, nil
}

// Finish records the end of a flight.
func (r *FlightRepository) Finish(id int64, endedAt time.Time, ticks int) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`UPDATE flights SET ended_at = ?, ticks = ? WHERE id = ?`, endedAt, ticks, id)
	if err != nil {
		return fmt.Errorf("failed to finish flight: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("flight %d not found", id)
	}
	return nil
}

// GetByID retrieves a flight by its ID. A missing flight yields nil, nil.
func (r *FlightRepository) GetByID(id int64) (*model.Flight, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`
		SELECT id, uuid, backend, battery, started_at, ended_at, ticks
		FROM flights WHERE id = ?
	`, id)

	flight, err := scanFlight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return flight, nil
}

// GetAll retrieves the most recent flights first. limit <= 0 returns all.
func (r *FlightRepository) GetAll(limit int) ([]model.Flight, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, uuid, backend, battery, started_at, ended_at, ticks
		FROM flights ORDER BY started_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []model.Flight
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *flight)
	}
	return flights, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFlight(s scanner) (*model.Flight, error) {
	var flight model.Flight
	var endedAt sql.NullTime
	if err := s.Scan(&flight.ID, &flight.UUID, &flight.Backend, &flight.Battery, &flight.StartedAt, &endedAt, &flight.Ticks); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		flight.EndedAt = &t
	}
	return &flight, nil
}
