package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/offerhub/verdict/pkg/audit"
	auditstorage "github.com/offerhub/verdict/pkg/audit/storage"
)

// scriptedHandler fails targets by id prefix so tests can mix outcomes.
type scriptedHandler struct {
	mu      sync.Mutex
	applied []string
}

func (h *scriptedHandler) Apply(ctx context.Context, operation, targetID string, params map[string]any) error {
	h.mu.Lock()
	h.applied = append(h.applied, targetID)
	h.mu.Unlock()

	switch {
	case strings.HasPrefix(targetID, "missing"):
		return fmt.Errorf("lookup %s: %w", targetID, ErrNotFound)
	case strings.HasPrefix(targetID, "locked"):
		return fmt.Errorf("suspend %s: %w", targetID, ErrPermissionDenied)
	case strings.HasPrefix(targetID, "broken"):
		return fmt.Errorf("storage write failed")
	}
	return nil
}

func executorsUnderTest(h Handler, opts ...Option) map[string]Executor {
	return map[string]Executor{
		"sequential": NewSequentialExecutor(h, opts...),
		"pool":       NewPoolExecutor(h, append(opts, WithWorkers(3))...),
	}
}

func TestExecutor_IsolatesMissingTarget(t *testing.T) {
	// One missing target in the middle must not stop its neighbors and
	// must count as a failure.
	req := &Request{
		Operation: "activate",
		Actor:     "admin-1",
		TargetIDs: []string{"policy-a", "missing-b", "policy-c"},
	}

	for name, exec := range executorsUnderTest(&scriptedHandler{}) {
		t.Run(name, func(t *testing.T) {
			summary, err := exec.Execute(context.Background(), req)
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}

			if summary.Total != 3 || summary.Successful != 2 || summary.Failed != 1 || summary.Skipped != 0 {
				t.Errorf("summary = total:%d successful:%d failed:%d skipped:%d, want 3/2/1/0",
					summary.Total, summary.Successful, summary.Failed, summary.Skipped)
			}
			if summary.Items[1].Status != StatusFailed || summary.Items[1].Failure != FailureNotFound {
				t.Errorf("missing target item = %+v", summary.Items[1])
			}
			if summary.Items[0].Status != StatusSuccess || summary.Items[2].Status != StatusSuccess {
				t.Error("valid targets around the missing one must still succeed")
			}
		})
	}
}

func TestExecutor_MixedOutcomes(t *testing.T) {
	req := &Request{
		ID:        "batch-1",
		Operation: "suspend",
		Actor:     "moderator-5",
		TargetIDs: []string{"user-1", "missing-2", "locked-3", "broken-4", "user-5"},
	}

	for name, exec := range executorsUnderTest(&scriptedHandler{}) {
		t.Run(name, func(t *testing.T) {
			summary, err := exec.Execute(context.Background(), req)
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}

			if summary.Total != 5 || summary.Successful != 2 || summary.Failed != 3 || summary.Skipped != 0 {
				t.Errorf("unexpected summary: %+v", summary)
			}
			if !summary.Success {
				t.Error("expected Success with two successful items")
			}

			// Results keep request order.
			if summary.Items[1].TargetID != "missing-2" || summary.Items[1].Failure != FailureNotFound {
				t.Errorf("unexpected item 1: %+v", summary.Items[1])
			}
			if summary.Items[2].Failure != FailurePermissionDenied {
				t.Errorf("unexpected item 2: %+v", summary.Items[2])
			}
			if summary.Items[3].Failure != FailureOperationError {
				t.Errorf("unexpected item 3: %+v", summary.Items[3])
			}
		})
	}
}

func TestExecutor_AllFailuresNoError(t *testing.T) {
	req := &Request{
		Operation: "suspend",
		TargetIDs: []string{"broken-1", "broken-2"},
	}

	for name, exec := range executorsUnderTest(&scriptedHandler{}) {
		t.Run(name, func(t *testing.T) {
			summary, err := exec.Execute(context.Background(), req)
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}
			if summary.Success {
				t.Error("expected Success=false with zero successful items")
			}
			if summary.Failed != 2 {
				t.Errorf("expected 2 failed, got %d", summary.Failed)
			}
		})
	}
}

func TestExecutor_Validation(t *testing.T) {
	tooMany := make([]string, MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("user-%d", i)
	}

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"empty operation", &Request{TargetIDs: []string{"u1"}}},
		{"no targets", &Request{Operation: "suspend"}},
		{"over size cap", &Request{Operation: "suspend", TargetIDs: tooMany}},
	}

	exec := NewSequentialExecutor(&scriptedHandler{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := exec.Execute(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExecutor_ItemIsolation(t *testing.T) {
	h := &scriptedHandler{}
	exec := NewSequentialExecutor(h)

	req := &Request{
		Operation: "flag",
		TargetIDs: []string{"broken-1", "user-2", "broken-3", "user-4"},
	}
	summary, err := exec.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	// Every target was attempted despite earlier failures.
	if len(h.applied) != 4 {
		t.Errorf("expected 4 attempts, got %d", len(h.applied))
	}
	if summary.Successful != 2 {
		t.Errorf("expected 2 successes, got %d", summary.Successful)
	}
}

func TestExecutor_AuditSuccessfulItems(t *testing.T) {
	storage := auditstorage.NewMemoryStorage()
	recorder := audit.NewRecorder(storage, nil)
	exec := NewSequentialExecutor(&scriptedHandler{}, WithRecorder(recorder))

	req := &Request{
		ID:        "batch-7",
		Operation: "suspend",
		Actor:     "moderator-5",
		TargetIDs: []string{"user-1", "missing-2", "user-3"},
	}
	if _, err := exec.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("recorder Close error: %v", err)
	}

	records, err := storage.List(context.Background(), &audit.Query{Action: audit.ActionBatchItem})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 audit records for successes, got %d", len(records))
	}
	for _, rec := range records {
		if rec.Details["batch_id"] != "batch-7" {
			t.Errorf("missing batch id in record details: %v", rec.Details)
		}
	}
}

func TestExecutor_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewSequentialExecutor(&scriptedHandler{})
	summary, err := exec.Execute(ctx, &Request{
		Operation: "suspend",
		TargetIDs: []string{"user-1", "user-2"},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if summary.Skipped != 2 {
		t.Errorf("expected all items skipped on cancelled context, got %+v", summary)
	}
	for _, item := range summary.Items {
		if item.Failure != FailureCancelled {
			t.Errorf("unexpected failure kind %s", item.Failure)
		}
	}
}
