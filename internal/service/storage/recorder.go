package storage

import (
	"context"
	"dronetracker/internal/config"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"dronetracker/internal/repository"
	"sync"
	"time"
)

// Recorder buffers tick records in memory and writes them to the flight log in batches.
type Recorder struct {
	flightID      int64
	ticks         []model.TickRecord
	limit         int
	flushInterval time.Duration
	total         int
	full          chan struct{}
	mu            sync.Mutex
	logger        *logger.Logger
	tickRepo      repository.TickRepository
}

// NewRecorder creates a Recorder for one flight.
func NewRecorder(config *config.Config, logger *logger.Logger, tickRepo repository.TickRepository, flightID int64) *Recorder {
	return &Recorder{
		flightID:      flightID,
		ticks:         make([]model.TickRecord, 0, config.TickBufferLimit),
		limit:         config.TickBufferLimit,
		flushInterval: time.Duration(config.TickFlushInterval) * time.Second,
		full:          make(chan struct{}, 1),
		logger:        logger,
		tickRepo:      tickRepo,
	}
}

// Run flushes the buffer periodically and whenever Add reports it full,
// until ctx is done, then flushes once more.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Flush()
		case <-r.full:
			r.Flush()
		case <-ctx.Done():
			r.Flush()
			return
		}
	}
}

// Add buffers a tick record. A full buffer is handed to Run, so Add never
// waits on the database.
func (r *Recorder) Add(tick model.TickRecord) {
	r.mu.Lock()
	tick.FlightID = r.flightID
	r.ticks = append(r.ticks, tick)
	r.total++
	full := len(r.ticks) >= r.limit
	r.mu.Unlock()

	if full {
		select {
		case r.full <- struct{}{}:
		default:
		}
	}
}

// Flush writes buffered records to the repository. Records are dropped if the write fails.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	batch := r.ticks
	r.ticks = make([]model.TickRecord, 0, r.limit)
	r.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := r.tickRepo.InsertBatch(batch); err != nil {
		r.logger.Error("Error saving %d ticks of flight %d: %v", len(batch), r.flightID, err)
		return err
	}
	return nil
}

// Total returns how many ticks were added, flushed or not.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// FlightID returns the flight the recorder writes to.
func (r *Recorder) FlightID() int64 {
	return r.flightID
}
