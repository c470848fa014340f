package sqlite

import (
	"dronetracker/internal/model"
	"fmt"
)

// TickRepository implements repository.TickRepository for SQLite.
type TickRepository struct {
	db *DB
}

// NewTickRepository creates a new SQLite tick repository.
func NewTickRepository(db *DB) *TickRepository {
	return &TickRepository{db: db}
}

// InsertBatch adds multiple tick records in a single transaction.
func (r *TickRepository) InsertBatch(ticks []model.TickRecord) error {
	if len(ticks) == 0 {
		return nil
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO ticks (flight_id, seq, timestamp, detections, target_present, cx, cy, size, error,
			actuation, lateral, longitudinal, vertical, yaw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range ticks {
		if _, err := stmt.Exec(t.FlightID, t.Seq, t.Timestamp, t.Detections, t.TargetPresent, t.CX, t.CY, t.Size, t.Error,
			t.Actuation, t.Command.Lateral, t.Command.Longitudinal, t.Command.Vertical, t.Command.Yaw); err != nil {
			return fmt.Errorf("failed to insert tick: %w", err)
		}
	}

	return tx.Commit()
}

// GetByFlightID retrieves the ticks of a flight in order. limit <= 0 returns all.
func (r *TickRepository) GetByFlightID(flightID int64, limit int) ([]model.TickRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT flight_id, seq, timestamp, detections, target_present, cx, cy, size, error,
			actuation, lateral, longitudinal, vertical, yaw
		FROM ticks WHERE flight_id = ? ORDER BY seq
	`
	args := []interface{}{flightID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var ticks []model.TickRecord
	for rows.Next() {
		var t model.TickRecord
		if err := rows.Scan(&t.FlightID, &t.Seq, &t.Timestamp, &t.Detections, &t.TargetPresent, &t.CX, &t.CY, &t.Size, &t.Error,
			&t.Actuation, &t.Command.Lateral, &t.Command.Longitudinal, &t.Command.Vertical, &t.Command.Yaw); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

// CountByFlightID returns the number of ticks recorded for a flight.
func (r *TickRepository) CountByFlightID(flightID int64) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM ticks WHERE flight_id = ?`, flightID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ticks: %w", err)
	}
	return count, nil
}
