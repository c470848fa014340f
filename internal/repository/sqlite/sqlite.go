package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS flights (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		backend TEXT NOT NULL,
		battery INTEGER DEFAULT 0,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		ticks INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ticks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		flight_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		detections INTEGER DEFAULT 0,
		target_present INTEGER DEFAULT 0,
		cx REAL DEFAULT 0,
		cy REAL DEFAULT 0,
		size REAL DEFAULT 0,
		error REAL DEFAULT 0,
		actuation INTEGER DEFAULT 0,
		lateral INTEGER DEFAULT 0,
		longitudinal INTEGER DEFAULT 0,
		vertical INTEGER DEFAULT 0,
		yaw INTEGER DEFAULT 0,
		FOREIGN KEY (flight_id) REFERENCES flights(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_flights_started_at ON flights(started_at);
	CREATE INDEX IF NOT EXISTS idx_ticks_flight_id ON ticks(flight_id, seq);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
