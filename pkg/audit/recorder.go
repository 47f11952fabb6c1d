package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// Enabled enables audit recording. A disabled recorder drops records
	// silently.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000.
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder appends audit records asynchronously so evaluation and
// definition changes never block on storage writes.
type Recorder struct {
	storage    Storage
	config     *Config
	recordChan chan *Record
	done       chan struct{}
	wg         sync.WaitGroup
	logger     *slog.Logger

	dropped int64
	mu      sync.Mutex
}

// NewRecorder creates a recorder draining into the given storage.
func NewRecorder(storage Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// RecordChange appends a definition-change record with before/after
// snapshots. It returns immediately; the write happens in the background.
func (r *Recorder) RecordChange(entityType EntityType, entityID, action, actor string, before, after any) {
	r.enqueue(&Record{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Before:     before,
		After:      after,
	})
}

// RecordEvaluation appends an evaluation record carrying the serialized
// verdict or feature decision in Details.
func (r *Recorder) RecordEvaluation(entityType EntityType, entityID string, details map[string]any) {
	r.enqueue(&Record{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     ActionEvaluated,
		Timestamp:  time.Now().UTC(),
		Details:    details,
	})
}

// RecordBatchItem appends one successful batch item.
func (r *Recorder) RecordBatchItem(batchID, targetID, operation, actor string) {
	r.enqueue(&Record{
		ID:         uuid.NewString(),
		EntityType: EntityBatch,
		EntityID:   targetID,
		Action:     ActionBatchItem,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Details: map[string]any{
			"batch_id":  batchID,
			"operation": operation,
		},
	})
}

func (r *Recorder) enqueue(record *Record) {
	if !r.config.Enabled {
		return
	}
	select {
	case r.recordChan <- record:
	default:
		// Queue full: drop and count rather than block the caller.
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Warn("audit queue full, record dropped",
			"entity_id", record.EntityID,
			"action", record.Action,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of records lost to a full queue.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// worker drains the record channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)
		case <-r.done:
			// Drain remaining records before exiting.
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Append(ctx, record); err != nil {
		r.logger.Error("failed to append audit record",
			"record_id", record.ID,
			"entity_id", record.EntityID,
			"error", err,
		)
	}
}

// Close flushes pending records and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}
