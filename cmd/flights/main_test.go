package main

import (
	"bytes"
	"dronetracker/internal/model"
	"dronetracker/internal/repository/sqlite"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func seedFlight(t *testing.T, dbPath string) int64 {
	t.Helper()
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	started := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	id, err := sqlite.NewFlightRepository(db).Insert(&model.Flight{UUID: "f-1", Backend: "geometric", Battery: 80, StartedAt: started})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	records := []model.TickRecord{{FlightID: id, Seq: 1, Timestamp: started, TargetPresent: true, Size: 1600, Actuation: 64, Command: model.ActuationCommand{Yaw: 64}}}
	if err := sqlite.NewTickRepository(db).InsertBatch(records); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	return id
}

func TestRun_MissingDatabase(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, filepath.Join(t.TempDir(), "missing.db"), 0, 20)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing database error, got %v", err)
	}
}

func TestRun_ListsFlights(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "flights.db")
	seedFlight(t, dbPath)

	var out bytes.Buffer
	if err := run(&out, dbPath, 0, 20); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "f-1") || !strings.Contains(out.String(), "in flight") {
		t.Errorf("Unexpected listing:\n%s", out.String())
	}
}

func TestRun_PrintsTicks(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "flights.db")
	id := seedFlight(t, dbPath)

	var out bytes.Buffer
	if err := run(&out, dbPath, id, 0); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "SEQ") || !strings.Contains(out.String(), "1600") {
		t.Errorf("Unexpected tick listing:\n%s", out.String())
	}
}

func TestRun_UnknownFlightIsAnError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "flights.db")
	seedFlight(t, dbPath)

	var out bytes.Buffer
	if err := run(&out, dbPath, 999, 20); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}
