package container

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultSlowComponent is the self-time above which a build is logged as slow.
	DefaultSlowComponent = 50 * time.Millisecond
	// DefaultSlowTotal is the total build time above which a build is logged as slow.
	DefaultSlowTotal = time.Second
)

type options struct {
	logger         *zap.Logger
	metrics        *metrics
	slowComponent  time.Duration
	slowTotal      time.Duration
	factoryTimeout time.Duration
}

func defaultOptions() options {
	return options{
		slowComponent: DefaultSlowComponent,
		slowTotal:     DefaultSlowTotal,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithLogger sets the logger for resolution errors, slow-load reports and
// teardown failures. Without it the registry logs through zap.L(), read at
// log time, so a component that replaces the global logger while loading
// early is picked up by the rest of the build.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics registers the registry's collectors on reg. Builders sharing a
// registerer share the collectors. A nil reg disables metrics.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		if reg == nil {
			o.metrics = nil
			return
		}
		o.metrics = newMetrics(reg)
	}
}

// WithSlowThresholds overrides the slow-load report thresholds: any single
// component's self-time above component, or a build above total.
func WithSlowThresholds(component, total time.Duration) Option {
	return func(o *options) {
		o.slowComponent = component
		o.slowTotal = total
	}
}

// WithFactoryTimeout gives every factory call a context with deadline d.
// Factories that honour their context then fail instead of hanging the build.
// Zero disables the deadline.
func WithFactoryTimeout(d time.Duration) Option {
	return func(o *options) { o.factoryTimeout = d }
}

func (o *options) log() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	return zap.L()
}
