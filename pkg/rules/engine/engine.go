package engine

import (
	"log/slog"
	"sync"

	"github.com/offerhub/verdict/pkg/rules/ast"
)

// FeatureSource resolves prerequisite feature toggles by key. The registry
// implements it; tests supply fakes.
type FeatureSource interface {
	FeatureByKey(key string) (*ast.FeatureToggle, bool)
}

// Engine evaluates policies and feature toggles. It carries its own regex
// cache, logger, and collaborator ports instead of relying on package-level
// state, so independent engines never interfere and evaluation stays
// unit-testable.
//
// All methods are safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	env      string
	features FeatureSource
	metrics  *Metrics

	regexMu sync.RWMutex
	regexes map[string]*compiledPattern
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEnvironment sets the environment the engine evaluates in (for example
// "production" or "staging"). Features whose environment differs are
// disabled with reason environment_mismatch. An empty engine environment
// matches any feature.
func WithEnvironment(env string) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithFeatureSource wires the resolver used for prerequisite feature
// dependencies. Without one, any feature that declares dependencies is
// disabled with reason dependency_not_met.
func WithFeatureSource(source FeatureSource) Option {
	return func(e *Engine) {
		e.features = source
	}
}

// WithMetrics wires Prometheus instrumentation.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.Default().With("component", "rules.engine"),
		regexes: make(map[string]*compiledPattern),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Environment returns the engine's configured environment.
func (e *Engine) Environment() string {
	return e.env
}
