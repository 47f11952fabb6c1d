package registry

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/offerhub/verdict/pkg/audit"
	"github.com/offerhub/verdict/pkg/rules/ast"
	"github.com/offerhub/verdict/pkg/rules/validator"
)

// Registry is the thread-safe definition store.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*ast.Policy
	features map[string]*ast.FeatureToggle

	validator   *validator.Validator
	recorder    *audit.Recorder
	logger      *slog.Logger
	fingerprint string
	loadTime    time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithRecorder attaches an audit recorder. Every definition change is
// recorded with before and after snapshots.
func WithRecorder(recorder *audit.Recorder) Option {
	return func(r *Registry) { r.recorder = recorder }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		policies:  make(map[string]*ast.Policy),
		features:  make(map[string]*ast.FeatureToggle),
		validator: validator.New(),
		logger:    slog.Default().With("component", "registry"),
		loadTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SavePolicy registers a policy or replaces an existing one with the
// same id. New policies start at version 1 in draft status unless a
// status is set; replacing bumps the stored version. The policy must
// pass structural validation.
func (r *Registry) SavePolicy(policy *ast.Policy, actor string) error {
	if policy == nil {
		return newError("save", "", "policy cannot be nil")
	}
	if policy.ID == "" {
		return newError("save", "", "policy id cannot be empty")
	}

	stored := policy.Clone()
	if stored.Status == "" {
		stored.Status = ast.StatusDraft
	}
	stored.Active = stored.Active && stored.Status.AllowsEvaluation()

	if list := r.validator.ValidatePolicy(stored); list.HasBlocking() {
		return newError("save", policy.ID, "validation failed: %v", list.ToError())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.UpdatedAt = time.Now().UTC()

	prev, exists := r.policies[policy.ID]
	action := audit.ActionCreated
	if exists {
		action = audit.ActionUpdated
		stored.Version = prev.Version + 1
	} else {
		if stored.Version == 0 {
			stored.Version = 1
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = stored.UpdatedAt
		}
	}

	r.policies[policy.ID] = stored
	r.updateFingerprint()

	r.logger.Info("policy saved",
		"policy_id", stored.ID,
		"version", stored.Version,
		"status", stored.Status,
	)
	r.recordChange(audit.EntityPolicy, stored.ID, action, actor, prev, stored)

	return nil
}

// ActivatePolicy promotes a policy to active. The full validation pass
// runs first, including prerequisite, conflict and cycle checks against
// the rest of the registry.
func (r *Registry) ActivatePolicy(id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, ok := r.policies[id]
	if !ok {
		return newNotFoundError("activate", id)
	}
	if policy.Status == ast.StatusDeprecated {
		return newError("activate", id, "deprecated policies cannot be reactivated")
	}

	candidate := policy.Clone()
	candidate.Status = ast.StatusActive
	candidate.Active = true

	if list := r.validator.ValidateActivation(candidate, lockedView{r}); list.HasBlocking() {
		return newError("activate", id, "activation validation failed: %v", list.ToError())
	}

	candidate.Version = policy.Version + 1
	candidate.UpdatedAt = time.Now().UTC()
	r.policies[id] = candidate
	r.updateFingerprint()

	r.logger.Info("policy activated", "policy_id", id, "version", candidate.Version)
	r.recordChange(audit.EntityPolicy, id, audit.ActionActivated, actor, policy, candidate)

	return nil
}

// MarkPolicyTesting moves a policy into the testing status, which
// evaluates like active but signals a trial rollout.
func (r *Registry) MarkPolicyTesting(id, actor string) error {
	return r.transitionPolicy(id, actor, ast.StatusTesting, true, audit.ActionUpdated)
}

// DeactivatePolicy takes a policy out of evaluation without
// deprecating it. A conflicting policy being activated is the usual
// reason.
func (r *Registry) DeactivatePolicy(id, actor string) error {
	return r.transitionPolicy(id, actor, ast.StatusInactive, false, audit.ActionDeactivated)
}

// SuspendPolicy pauses a policy pending review.
func (r *Registry) SuspendPolicy(id, actor string) error {
	return r.transitionPolicy(id, actor, ast.StatusSuspended, false, audit.ActionDeactivated)
}

// DeprecatePolicy retires a policy permanently. Deprecation is refused
// while another policy names this one as a prerequisite.
func (r *Registry) DeprecatePolicy(id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, ok := r.policies[id]
	if !ok {
		return newNotFoundError("deprecate", id)
	}

	for _, other := range r.policies {
		// A policy that is itself deprecated no longer holds its
		// prerequisites in place.
		if other.ID == id || other.Status == ast.StatusDeprecated {
			continue
		}
		for _, dep := range other.PrerequisiteIDs() {
			if dep == id {
				return newError("deprecate", id, "policy %q depends on it as a prerequisite", other.ID)
			}
		}
	}

	updated := policy.Clone()
	updated.Status = ast.StatusDeprecated
	updated.Active = false
	updated.Version = policy.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	r.policies[id] = updated
	r.updateFingerprint()

	r.logger.Info("policy deprecated", "policy_id", id)
	r.recordChange(audit.EntityPolicy, id, audit.ActionDeprecated, actor, policy, updated)

	return nil
}

func (r *Registry) transitionPolicy(id, actor string, status ast.PolicyStatus, active bool, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	policy, ok := r.policies[id]
	if !ok {
		return newNotFoundError("transition", id)
	}
	if policy.Status == ast.StatusDeprecated {
		return newError("transition", id, "deprecated policies cannot change status")
	}

	updated := policy.Clone()
	updated.Status = status
	updated.Active = active && status.AllowsEvaluation()
	updated.Version = policy.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	r.policies[id] = updated
	r.updateFingerprint()

	r.logger.Info("policy status changed",
		"policy_id", id,
		"status", status,
		"version", updated.Version,
	)
	r.recordChange(audit.EntityPolicy, id, action, actor, policy, updated)

	return nil
}

// PolicyByID retrieves a policy by id. The returned policy is a deep
// clone. Implements validator.PolicyView.
func (r *Registry) PolicyByID(id string) (*ast.Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.policies[id]
	if !ok {
		return nil, false
	}
	return policy.Clone(), true
}

// Policies returns all policies sorted by id, as deep clones.
func (r *Registry) Policies() []*ast.Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	policies := make([]*ast.Policy, 0, len(ids))
	for _, id := range ids {
		policies = append(policies, r.policies[id].Clone())
	}
	return policies
}

// ActivePolicies returns the policies currently participating in
// evaluation, sorted by descending priority then id.
func (r *Registry) ActivePolicies() []*ast.Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*ast.Policy
	for _, policy := range r.policies {
		if policy.IsActive() {
			active = append(active, policy.Clone())
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})
	return active
}

// PolicyCount returns the number of registered policies.
func (r *Registry) PolicyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.policies)
}

// Fingerprint returns a hash over the registered definitions. It
// changes on every mutation and identifies a definition set in
// verdicts and logs.
func (r *Registry) Fingerprint() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fingerprint
}

// LoadTime returns when the registry was created.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// updateFingerprint recomputes the definition set hash.
// Caller must hold the write lock.
func (r *Registry) updateFingerprint() {
	ids := make([]string, 0, len(r.policies)+len(r.features))
	for id, p := range r.policies {
		ids = append(ids, fmt.Sprintf("p:%s:%d", id, p.Version))
	}
	for key, f := range r.features {
		ids = append(ids, fmt.Sprintf("f:%s:%d", key, f.Version))
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	r.fingerprint = fmt.Sprintf("%x", h.Sum(nil)[:8])
}

func (r *Registry) recordChange(entityType audit.EntityType, id, action, actor string, before, after any) {
	if r.recorder == nil {
		return
	}
	r.recorder.RecordChange(entityType, id, action, actor, before, after)
}

// lockedView exposes policies to the validator while the registry
// write lock is already held. Lookups go straight to the map instead
// of re-locking.
type lockedView struct {
	r *Registry
}

func (v lockedView) PolicyByID(id string) (*ast.Policy, bool) {
	policy, ok := v.r.policies[id]
	return policy, ok
}
