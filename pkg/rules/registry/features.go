package registry

import (
	"sort"
	"time"

	"github.com/offerhub/verdict/pkg/audit"
	"github.com/offerhub/verdict/pkg/rules/ast"
)

// SaveFeature registers a feature toggle or replaces an existing one
// with the same key. The toggle must pass structural validation.
func (r *Registry) SaveFeature(feature *ast.FeatureToggle, actor string) error {
	if feature == nil {
		return newError("save", "", "feature cannot be nil")
	}
	if feature.Key == "" {
		return newError("save", "", "feature key cannot be empty")
	}

	if list := r.validator.ValidateFeature(feature); list.HasBlocking() {
		return newError("save", feature.Key, "validation failed: %v", list.ToError())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := feature.Clone()
	stored.UpdatedAt = time.Now().UTC()

	prev, exists := r.features[feature.Key]
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

	r.features[feature.Key] = stored
	r.updateFingerprint()

	r.logger.Info("feature saved",
		"feature_key", stored.Key,
		"version", stored.Version,
		"strategy", stored.Strategy,
	)
	r.recordChange(audit.EntityFeature, stored.Key, action, actor, prev, stored)

	return nil
}

// EnableFeature activates a toggle. Unresolved feature dependencies
// refuse the change so an enabled toggle never points at a key the
// registry does not hold.
func (r *Registry) EnableFeature(key, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feature, ok := r.features[key]
	if !ok {
		return newNotFoundError("enable", key)
	}

	for _, dep := range feature.Dependencies {
		if _, ok := r.features[dep]; !ok {
			return newError("enable", key, "depends on unknown feature %q", dep)
		}
	}

	updated := feature.Clone()
	updated.Active = true
	updated.Version = feature.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	r.features[key] = updated
	r.updateFingerprint()

	r.logger.Info("feature enabled", "feature_key", key, "version", updated.Version)
	r.recordChange(audit.EntityFeature, key, audit.ActionActivated, actor, feature, updated)

	return nil
}

// DisableFeature deactivates a toggle.
func (r *Registry) DisableFeature(key, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feature, ok := r.features[key]
	if !ok {
		return newNotFoundError("disable", key)
	}

	updated := feature.Clone()
	updated.Active = false
	updated.Version = feature.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	r.features[key] = updated
	r.updateFingerprint()

	r.logger.Info("feature disabled", "feature_key", key, "version", updated.Version)
	r.recordChange(audit.EntityFeature, key, audit.ActionDeactivated, actor, feature, updated)

	return nil
}

// SetRolloutPercentage adjusts a percentage rollout in place. The value
// must stay within 0-100.
func (r *Registry) SetRolloutPercentage(key string, percentage int, actor string) error {
	if percentage < 0 || percentage > 100 {
		return newError("set_percentage", key, "percentage %d outside 0-100", percentage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	feature, ok := r.features[key]
	if !ok {
		return newNotFoundError("set_percentage", key)
	}

	updated := feature.Clone()
	updated.Percentage = percentage
	updated.Version = feature.Version + 1
	updated.UpdatedAt = time.Now().UTC()
	r.features[key] = updated
	r.updateFingerprint()

	r.logger.Info("rollout percentage changed",
		"feature_key", key,
		"percentage", percentage,
		"version", updated.Version,
	)
	r.recordChange(audit.EntityFeature, key, audit.ActionUpdated, actor, feature, updated)

	return nil
}

// FeatureByKey retrieves a feature toggle by key as a deep clone.
// Implements engine.FeatureSource.
func (r *Registry) FeatureByKey(key string) (*ast.FeatureToggle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feature, ok := r.features[key]
	if !ok {
		return nil, false
	}
	return feature.Clone(), true
}

// Features returns all feature toggles sorted by key, as deep clones.
func (r *Registry) Features() []*ast.FeatureToggle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.features))
	for key := range r.features {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	features := make([]*ast.FeatureToggle, 0, len(keys))
	for _, key := range keys {
		features = append(features, r.features[key].Clone())
	}
	return features
}

// FeatureCount returns the number of registered toggles.
func (r *Registry) FeatureCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.features)
}
