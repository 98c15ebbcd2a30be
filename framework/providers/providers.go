package providers

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/routing"
)

// ── LogServiceProvider ────────────────────────────────────────────────────────

// Logger is the application logger. While it is alive it is also zap's global
// logger; Stop flushes it and puts the previous globals back.
type Logger struct {
	*zap.Logger
	restore func()
}

// Stop implements container.Stopper.
func (l *Logger) Stop(context.Context) error {
	l.restore()
	if err := l.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, syscall.ENOTTY) {
		return err
	}
	return nil
}

// NewLogger builds a development logger when APP_DEBUG is on and a
// production logger otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// LogServiceProvider binds the application logger and loads it early, so
// everything built after it (the registry's own reports included) logs
// through it.
//
// Bound keys:
//   - Logger  → *Logger
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider[C any] struct {
	Logger container.Key[C, *Logger]
	Config container.Key[C, *config.Config]

	// Build overrides NewLogger.
	Build func(cfg *config.Config) (*zap.Logger, error)
}

func (p *LogServiceProvider[C]) Register(b *container.Builder[C]) {
	build := p.Build
	if build == nil {
		build = NewLogger
	}
	container.Bind(b, p.Logger, func(ctx context.Context, l *container.Loader[C]) (*Logger, error) {
		cfg, err := container.Get(ctx, l, p.Config)
		if err != nil {
			return nil, err
		}
		logger, err := build(cfg)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
		return &Logger{Logger: logger, restore: zap.ReplaceGlobals(logger)}, nil
	})
	b.LoadEarly(p.Logger)
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the Prometheus registry, with the Go runtime
// and process collectors registered on it.
//
// Bound keys:
//   - Metrics  → *prometheus.Registry
//
// Pass the same Registry to container.WithMetrics so the registry's own
// load and teardown metrics are exposed next to the runtime ones.
type MetricsServiceProvider[C any] struct {
	Metrics  container.Key[C, *prometheus.Registry]
	Registry *prometheus.Registry // default: a fresh registry
}

func (p *MetricsServiceProvider[C]) Register(b *container.Builder[C]) {
	reg := p.Registry
	container.Bind(b, p.Metrics, func(context.Context, *container.Loader[C]) (*prometheus.Registry, error) {
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		for _, c := range []prometheus.Collector{
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		} {
			if err := reg.Register(c); err != nil {
				var already prometheus.AlreadyRegisteredError
				if !errors.As(err, &already) {
					return nil, fmt.Errorf("metrics: %w", err)
				}
			}
		}
		return reg, nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound keys:
//   - Router  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider[C any] struct {
	Router container.Key[C, *routing.Router]
	Logger container.Key[C, *Logger]
}

func (p *RoutingServiceProvider[C]) Register(b *container.Builder[C]) {
	container.Bind(b, p.Router, func(ctx context.Context, l *container.Loader[C]) (*routing.Router, error) {
		logger, err := container.Get(ctx, l, p.Logger)
		if err != nil {
			return nil, err
		}
		return routing.New(logger.Named("http")), nil
	})
}

// ── ServerServiceProvider ─────────────────────────────────────────────────────

// ServerServiceProvider binds the HTTP server. The server is built but not
// started; its Stop shuts it down gracefully during registry teardown.
//
// Bound keys:
//   - Server  → *Server
type ServerServiceProvider[C any] struct {
	Server container.Key[C, *Server]
	Config container.Key[C, *config.Config]
	Router container.Key[C, *routing.Router]
	Logger container.Key[C, *Logger]
}

func (p *ServerServiceProvider[C]) Register(b *container.Builder[C]) {
	container.Bind(b, p.Server, func(ctx context.Context, l *container.Loader[C]) (*Server, error) {
		cfg, err := container.Get(ctx, l, p.Config)
		if err != nil {
			return nil, err
		}
		router, err := container.Get(ctx, l, p.Router)
		if err != nil {
			return nil, err
		}
		logger, err := container.Get(ctx, l, p.Logger)
		if err != nil {
			return nil, err
		}
		return NewServer(cfg.Addr(), router, logger.Named("server")), nil
	})
}
