package c3

import (
	"github.com/google/uuid"

	"github.com/dd0wney/c3net/pkg/logging"
	"github.com/dd0wney/c3net/pkg/metrics"
)

// Engine applies the legality rules and graph mutations. It holds
// configuration only; every operation takes the network list as input and
// returns a new one.
type Engine struct {
	limits  Limits
	palette []string
	newID   func() string
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the per-type limits. Types not present keep defaults.
func WithLimits(l Limits) Option {
	return func(e *Engine) {
		e.limits = DefaultLimits().Merge(l)
	}
}

// WithPalette sets the colour palette for new networks.
func WithPalette(p []string) Option {
	return func(e *Engine) {
		if len(p) > 0 {
			e.palette = p
		}
	}
}

// WithIDGenerator sets the function used to name new networks.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(l)
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// NewEngine creates an engine with default limits and palette.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		limits:  DefaultLimits(),
		palette: DefaultPalette,
		newID:   uuid.NewString,
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("c3"))
	return e
}

// Limits returns the engine's effective limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Logger returns the engine logger.
func (e *Engine) Logger() logging.Logger {
	return e.logger
}

// Metrics returns the metrics registry, which may be nil.
func (e *Engine) Metrics() *metrics.Registry {
	return e.metrics
}
