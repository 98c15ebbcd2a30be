package container

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is nil when no registerer was given; every method tolerates that.
type metrics struct {
	loadSeconds      *prometheus.HistogramVec
	loadFailures     *prometheus.CounterVec
	teardownFailures *prometheus.CounterVec
	buildSeconds     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		loadSeconds: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "registry",
			Name:      "component_load_seconds",
			Help:      "Self-time spent constructing a component, excluding its dependencies.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"component"})),
		loadFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "component_load_failures_total",
			Help:      "Factory calls that returned an error.",
		}, []string{"component"})),
		teardownFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "registry",
			Name:      "teardown_failures_total",
			Help:      "Component Stop calls that failed.",
		}, []string{"component"})),
		buildSeconds: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "registry",
			Name:      "build_seconds",
			Help:      "Wall time of a full registry build.",
			Buckets:   prometheus.DefBuckets,
		})),
	}
}

// register returns the collector already registered under the same
// description when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observeLoad(component string, self time.Duration) {
	if m == nil {
		return
	}
	m.loadSeconds.WithLabelValues(component).Observe(self.Seconds())
}

func (m *metrics) loadFailed(component string) {
	if m == nil {
		return
	}
	m.loadFailures.WithLabelValues(component).Inc()
}

func (m *metrics) teardownFailed(component string) {
	if m == nil {
		return
	}
	m.teardownFailures.WithLabelValues(component).Inc()
}

func (m *metrics) observeBuild(total time.Duration) {
	if m == nil {
		return
	}
	m.buildSeconds.Observe(total.Seconds())
}
