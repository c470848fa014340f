package storage

import (
	"context"
	"dronetracker/internal/config"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

type memoryTicks struct {
	mu      sync.Mutex
	batches [][]model.TickRecord
	err     error
}

func (m *memoryTicks) InsertBatch(ticks []model.TickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, append([]model.TickRecord(nil), ticks...))
	return nil
}

func (m *memoryTicks) GetByFlightID(flightID int64, limit int) ([]model.TickRecord, error) {
	return nil, nil
}

func (m *memoryTicks) CountByFlightID(flightID int64) (int, error) {
	return 0, nil
}

func (m *memoryTicks) stored() []model.TickRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.TickRecord
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

func testConfig(limit, interval int) *config.Config {
	return &config.Config{TickBufferLimit: limit, TickFlushInterval: interval}
}

func waitForStored(t *testing.T, repo *memoryTicks, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(repo.stored()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d stored ticks, got %d", n, len(repo.stored()))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRecorder_FlushesWhenFull(t *testing.T) {
	repo := &memoryTicks{}
	r := NewRecorder(testConfig(3, 60), logger.New(io.Discard), repo, 7)

	for i := 1; i <= 4; i++ {
		r.Add(model.TickRecord{Seq: int64(i)})
	}
	// Add only signals; the write happens on the Run goroutine
	if got := len(repo.stored()); got != 0 {
		t.Fatalf("Add must not write to the repository, got %d stored", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	waitForStored(t, repo, 4)
	for _, tick := range repo.stored() {
		if tick.FlightID != 7 {
			t.Errorf("Expected flight ID 7, got %d", tick.FlightID)
		}
	}

	r.Add(model.TickRecord{Seq: 5})
	r.Add(model.TickRecord{Seq: 6})
	r.Add(model.TickRecord{Seq: 7})
	waitForStored(t, repo, 7)

	cancel()
	<-done
	if r.Total() != 7 {
		t.Errorf("Expected total 7, got %d", r.Total())
	}
}

func TestRecorder_RunFlushesOnCancel(t *testing.T) {
	repo := &memoryTicks{}
	r := NewRecorder(testConfig(100, 60), logger.New(io.Discard), repo, 1)
	r.Add(model.TickRecord{Seq: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := len(repo.stored()); got != 1 {
		t.Errorf("Expected 1 tick flushed on cancel, got %d", got)
	}
}

func TestRecorder_DropsOnRepositoryError(t *testing.T) {
	repo := &memoryTicks{err: errors.New("disk full")}
	r := NewRecorder(testConfig(100, 60), logger.New(io.Discard), repo, 1)
	r.Add(model.TickRecord{Seq: 1})

	if err := r.Flush(); err == nil {
		t.Fatal("Expected flush error")
	}

	repo.err = nil
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if got := len(repo.stored()); got != 0 {
		t.Errorf("Expected failed batch to be dropped, got %d stored", got)
	}
}
