package engine

import "github.com/cespare/xxhash/v2"

// Bucket deterministically assigns an identifier to a position in [0,100)
// for one feature key. The assignment is a pure function of (key,
// identifier): no randomness, no per-call seed, stable across calls and
// process restarts. Raising a rollout percentage can only ever add
// identifiers to the enabled set, since each identifier's bucket is fixed.
func Bucket(featureKey, identifier string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(featureKey)
	_, _ = h.Write([]byte{0}) // separator
	_, _ = h.WriteString(identifier)
	return h.Sum64() % 100
}

// InRollout reports whether the identifier falls inside the rollout
// percentage for the feature key. Percentage 0 enables nobody; 100 enables
// everybody.
func InRollout(featureKey, identifier string, percentage int) bool {
	if percentage <= 0 {
		return false
	}
	if percentage >= 100 {
		return true
	}
	return Bucket(featureKey, identifier) < uint64(percentage)
}
