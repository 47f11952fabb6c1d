package harness

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/offerhub/verdict/pkg/history"
	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/engine"
)

// DefaultRunCapacity is how many recent runs a session keeps.
const DefaultRunCapacity = 10

// PolicyProvider resolves stored policies for simulation by id.
type PolicyProvider interface {
	PolicyByID(id string) (*ast.Policy, bool)
}

// FeatureProvider resolves stored feature toggles by key.
type FeatureProvider interface {
	FeatureByKey(key string) (*ast.FeatureToggle, bool)
}

// Run is one recorded simulation.
type Run struct {
	ID        string
	SubjectID string
	Input     engine.Context
	Verdict   *engine.Verdict
	Decision  *engine.FeatureDecision
	Timestamp time.Time
}

// Session is a simulation scope. It shares the engine's evaluation
// semantics exactly but records nothing outside its own run ring.
type Session struct {
	engine   *engine.Engine
	policies PolicyProvider
	features FeatureProvider
	store    history.Store
	logger   *slog.Logger

	mu       sync.Mutex
	runs     []*Run
	capacity int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRunCapacity overrides how many recent runs the session retains.
func WithRunCapacity(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithPolicyProvider sets where SimulatePolicy resolves ids.
func WithPolicyProvider(p PolicyProvider) SessionOption {
	return func(s *Session) { s.policies = p }
}

// WithFeatureProvider sets where SimulateFeature resolves keys.
func WithFeatureProvider(p FeatureProvider) SessionOption {
	return func(s *Session) { s.features = p }
}

// WithHistory persists every run to the given store in addition to the
// in-memory ring. Persistence is best effort; failures are logged and
// do not affect the simulation result.
func WithHistory(store history.Store) SessionOption {
	return func(s *Session) { s.store = store }
}

// NewSession creates a simulation session over the given engine.
func NewSession(eng *engine.Engine, opts ...SessionOption) *Session {
	s := &Session{
		engine:   eng,
		capacity: DefaultRunCapacity,
		logger:   slog.Default().With("component", "harness"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SimulatePolicy evaluates a stored policy against the context. The
// policy runs as if it were active, whatever its stored status, so
// drafts can be exercised before promotion.
func (s *Session) SimulatePolicy(id string, ctx engine.Context) *engine.Verdict {
	var policy *ast.Policy
	if s.policies != nil {
		if p, ok := s.policies.PolicyByID(id); ok {
			policy = p
		}
	}
	if policy == nil {
		verdict := s.engine.EvaluatePolicy(nil, ctx)
		verdict.PolicyID = id
		s.record(id, ctx, verdict, nil)
		return verdict
	}
	return s.SimulateDraft(policy, ctx)
}

// SimulateDraft evaluates a policy definition that need not be stored
// anywhere. The definition itself is not modified.
func (s *Session) SimulateDraft(policy *ast.Policy, ctx engine.Context) *engine.Verdict {
	forced := policy.Clone()
	forced.Status = ast.StatusTesting
	forced.Active = true

	verdict := s.engine.EvaluatePolicy(forced, ctx)
	s.record(policy.ID, ctx, verdict, nil)
	return verdict
}

// SimulateFeature evaluates a stored feature toggle against the
// context, forcing it active.
func (s *Session) SimulateFeature(key string, ctx engine.Context) *engine.FeatureDecision {
	var feature *ast.FeatureToggle
	if s.features != nil {
		if f, ok := s.features.FeatureByKey(key); ok {
			feature = f
		}
	}
	if feature == nil {
		decision := s.engine.EvaluateFeature(nil, ctx)
		decision.FeatureKey = key
		s.record(key, ctx, nil, decision)
		return decision
	}
	return s.SimulateFeatureDraft(feature, ctx)
}

// SimulateFeatureDraft evaluates a toggle definition directly.
func (s *Session) SimulateFeatureDraft(feature *ast.FeatureToggle, ctx engine.Context) *engine.FeatureDecision {
	forced := feature.Clone()
	forced.Active = true

	decision := s.engine.EvaluateFeature(forced, ctx)
	s.record(feature.Key, ctx, nil, decision)
	return decision
}

// SimulateMany evaluates one policy against a set of contexts and
// returns the verdicts in input order.
func (s *Session) SimulateMany(id string, contexts []engine.Context) []*engine.Verdict {
	verdicts := make([]*engine.Verdict, len(contexts))
	for i, ctx := range contexts {
		verdicts[i] = s.SimulatePolicy(id, ctx)
	}
	return verdicts
}

// Runs returns the retained runs, newest first.
func (s *Session) Runs() []*Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Run, len(s.runs))
	for i, run := range s.runs {
		out[len(s.runs)-1-i] = run
	}
	return out
}

// Clear drops the retained runs.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
}

func (s *Session) record(subjectID string, ctx engine.Context, verdict *engine.Verdict, decision *engine.FeatureDecision) {
	run := &Run{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Input:     ctx,
		Verdict:   verdict,
		Decision:  decision,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.runs = append(s.runs, run)
	if len(s.runs) > s.capacity {
		s.runs = s.runs[len(s.runs)-s.capacity:]
	}
	s.mu.Unlock()

	s.persist(run)
}

func (s *Session) persist(run *Run) {
	if s.store == nil {
		return
	}

	entry := &history.Run{
		ID:        run.ID,
		SubjectID: run.SubjectID,
		Input:     run.Input,
		Timestamp: run.Timestamp,
	}
	switch {
	case run.Verdict != nil:
		entry.Kind = history.KindPolicy
		entry.Outcome = run.Verdict.Triggered
		entry.Reason = run.Verdict.Reason
		entry.DurationMs = run.Verdict.EvaluationTimeMs
	case run.Decision != nil:
		entry.Kind = history.KindFeature
		entry.Outcome = run.Decision.Enabled
		entry.Reason = run.Decision.Reason
		entry.DurationMs = run.Decision.EvaluationTimeMs
	}

	if err := s.store.Save(context.Background(), entry); err != nil {
		s.logger.Warn("failed to persist simulation run",
			"run_id", run.ID,
			"subject_id", run.SubjectID,
			"error", err)
	}
}
