// Package inspect exposes a running registry over HTTP: its load status and
// timing, its Prometheus metrics and a health probe.
package inspect

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-registry/framework/container"
	gohttp "github.com/km-arc/go-registry/framework/http"
	"github.com/km-arc/go-registry/framework/routing"
)

// Routes mounts the introspection endpoints on r:
//
//	GET /debug/registry  {"data": {"build": ..., "loaded": true, "timing": {...}}}
//	GET /metrics         Prometheus exposition of gatherer
//	GET /healthz         200 when healthy reports true, 503 otherwise
//
// A nil gatherer skips /metrics; a nil healthy probe reports healthy once the
// loader is fully loaded.
func Routes[C any](r *routing.Router, l *container.Loader[C], gatherer prometheus.Gatherer, healthy func(*http.Request) bool) {
	if healthy == nil {
		healthy = func(*http.Request) bool { return l.Loaded() }
	}

	r.Prefix("/debug", func(d *routing.Router) {
		d.Get("/registry", func(w http.ResponseWriter, _ *http.Request) {
			gohttp.NewResponse(w).Success(l.Status())
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		if !healthy(req) {
			res.ServiceUnavailable()
			return
		}
		res.Success(map[string]string{"status": "ok"})
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}
