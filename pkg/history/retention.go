package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls automatic run history pruning.
type RetentionConfig struct {
	// RetentionDays is the number of days to keep runs.
	// 0 means keep runs forever (no age pruning).
	RetentionDays int

	// MaxRuns is the maximum number of runs to keep.
	// 0 means unlimited.
	MaxRuns int64

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the
	// scheduler; Prune can still be called manually.
	PruneSchedule string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 30,
		MaxRuns:       0,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention policy on a history store.
type Pruner struct {
	store   Store
	config  *RetentionConfig
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewPruner creates a new retention pruner.
func NewPruner(store Store, config *RetentionConfig) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}

	return &Pruner{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "history.retention"),
	}
}

// Prune deletes runs older than the retention period, then trims the
// store down to MaxRuns if it still exceeds the cap. Returns the total
// number of runs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.store.Delete(ctx, &Query{Until: cutoff})
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRuns > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("run history pruned",
			"deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_runs", p.config.MaxRuns,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.store.Count(ctx, &Query{})
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRuns {
		return 0, nil
	}

	// Find the cutoff timestamp of the newest run to delete. List is
	// newest first, so the run at index MaxRuns is the first excess one.
	runs, err := p.store.List(ctx, &Query{Limit: int(count)})
	if err != nil {
		return 0, err
	}
	if int64(len(runs)) <= p.config.MaxRuns {
		return 0, nil
	}

	cutoff := runs[p.config.MaxRuns].Timestamp
	return p.store.Delete(ctx, &Query{Until: cutoff})
}

// Start begins scheduled pruning based on the cron expression. It is a
// no-op when PruneSchedule is empty.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.PruneSchedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.PruneSchedule, err)
	}

	_, err := p.cron.AddFunc(p.config.PruneSchedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("retention scheduler started",
		"schedule", p.config.PruneSchedule,
		"retention_days", p.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		ctx := p.cron.Stop()
		<-ctx.Done()
		p.running = false
		p.logger.Info("retention scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextPruning returns the next scheduled pruning time, or nil when the
// scheduler is not running.
func (p *Pruner) NextPruning() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
