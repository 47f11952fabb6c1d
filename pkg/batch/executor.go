package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/offerhub/verdict/pkg/audit"
)

// SequentialExecutor processes batch targets one at a time in request
// order.
type SequentialExecutor struct {
	handler  Handler
	recorder *audit.Recorder
	logger   *slog.Logger
}

// Option configures an executor.
type Option func(*options)

type options struct {
	recorder *audit.Recorder
	logger   *slog.Logger
	workers  int
}

// WithRecorder attaches an audit recorder; each successful item is
// recorded.
func WithRecorder(recorder *audit.Recorder) Option {
	return func(o *options) { o.recorder = recorder }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithWorkers sets the pool size for NewPoolExecutor. Ignored by the
// sequential executor.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:  slog.Default().With("component", "batch"),
		workers: 4,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewSequentialExecutor creates an executor that processes targets in
// order.
func NewSequentialExecutor(handler Handler, opts ...Option) *SequentialExecutor {
	o := buildOptions(opts)
	return &SequentialExecutor{
		handler:  handler,
		recorder: o.recorder,
		logger:   o.logger,
	}
}

// Execute runs the batch. A validation failure returns an error; item
// failures do not. The summary's Success flag is true only when at
// least one target succeeded.
func (e *SequentialExecutor) Execute(ctx context.Context, req *Request) (*Summary, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	batchID := ensureBatchID(req)

	items := make([]*ItemResult, len(req.TargetIDs))
	for i, targetID := range req.TargetIDs {
		select {
		case <-ctx.Done():
			items[i] = cancelledItem(targetID, ctx.Err())
			continue
		default:
		}
		items[i] = applyOne(ctx, e.handler, req, targetID)
		e.afterItem(batchID, req, items[i])
	}

	summary := summarize(batchID, req, items)
	e.logger.Info("batch completed",
		"batch_id", batchID,
		"operation", req.Operation,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (e *SequentialExecutor) afterItem(batchID string, req *Request, item *ItemResult) {
	if item.Status == StatusSuccess && e.recorder != nil {
		e.recorder.RecordBatchItem(batchID, item.TargetID, req.Operation, req.Actor)
	}
}

// PoolExecutor fans batch targets out over a bounded worker pool.
// Results keep the request order regardless of completion order.
type PoolExecutor struct {
	handler  Handler
	recorder *audit.Recorder
	logger   *slog.Logger
	workers  int
}

// NewPoolExecutor creates an executor with a bounded worker pool
// (default 4 workers).
func NewPoolExecutor(handler Handler, opts ...Option) *PoolExecutor {
	o := buildOptions(opts)
	return &PoolExecutor{
		handler:  handler,
		recorder: o.recorder,
		logger:   o.logger,
		workers:  o.workers,
	}
}

// Execute runs the batch across the pool.
func (e *PoolExecutor) Execute(ctx context.Context, req *Request) (*Summary, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	batchID := ensureBatchID(req)

	items := make([]*ItemResult, len(req.TargetIDs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(req.TargetIDs) {
		workers = len(req.TargetIDs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				targetID := req.TargetIDs[i]
				select {
				case <-ctx.Done():
					items[i] = cancelledItem(targetID, ctx.Err())
					continue
				default:
				}
				items[i] = applyOne(ctx, e.handler, req, targetID)
				if items[i].Status == StatusSuccess && e.recorder != nil {
					e.recorder.RecordBatchItem(batchID, targetID, req.Operation, req.Actor)
				}
			}
		}()
	}

	for i := range req.TargetIDs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	summary := summarize(batchID, req, items)
	e.logger.Info("batch completed",
		"batch_id", batchID,
		"operation", req.Operation,
		"workers", workers,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func validate(req *Request) error {
	if req == nil {
		return fmt.Errorf("batch request cannot be nil")
	}
	if req.Operation == "" {
		return fmt.Errorf("batch operation cannot be empty")
	}
	if len(req.TargetIDs) == 0 {
		return fmt.Errorf("batch must contain at least one target")
	}
	if len(req.TargetIDs) > MaxBatchSize {
		return fmt.Errorf("batch size %d exceeds maximum %d", len(req.TargetIDs), MaxBatchSize)
	}
	return nil
}

func ensureBatchID(req *Request) string {
	if req.ID != "" {
		return req.ID
	}
	return uuid.NewString()
}

func applyOne(ctx context.Context, handler Handler, req *Request, targetID string) *ItemResult {
	err := handler.Apply(ctx, req.Operation, targetID, req.Params)
	if err == nil {
		return &ItemResult{TargetID: targetID, Status: StatusSuccess}
	}

	// A missing target counts as a failure; skipped is reserved for items
	// not attempted after cancellation.
	item := &ItemResult{TargetID: targetID, Error: err.Error()}
	switch {
	case errors.Is(err, ErrNotFound):
		item.Status = StatusFailed
		item.Failure = FailureNotFound
	case errors.Is(err, ErrPermissionDenied):
		item.Status = StatusFailed
		item.Failure = FailurePermissionDenied
	default:
		item.Status = StatusFailed
		item.Failure = FailureOperationError
	}
	return item
}

func cancelledItem(targetID string, err error) *ItemResult {
	return &ItemResult{
		TargetID: targetID,
		Status:   StatusSkipped,
		Failure:  FailureCancelled,
		Error:    err.Error(),
	}
}

func summarize(batchID string, req *Request, items []*ItemResult) *Summary {
	summary := &Summary{
		BatchID:   batchID,
		Operation: req.Operation,
		Total:     len(items),
		Items:     items,
	}
	for _, item := range items {
		switch item.Status {
		case StatusSuccess:
			summary.Successful++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	summary.Success = summary.Successful > 0
	return summary
}
