package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/inspect"
	"github.com/km-arc/go-registry/framework/providers"
)

// ErrNotBooted is returned by accessors that need a built registry.
var ErrNotBooted = errors.New("app: not booted")

// Application is the top-level application. It embeds the registry Builder
// so user code can call app.Register(), app.Install() and app.LoadEarly()
// directly — exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Builder[Context]

	config   *config.Config
	registry *container.Registry[Context]
}

// New creates the application with the framework providers registered.
// Extra options are applied after the ones derived from cfg.
func New(cfg *config.Config, opts ...container.Option) *Application {
	metrics := prometheus.NewRegistry()
	b := container.NewBuilder[Context](append([]container.Option{
		container.WithMetrics(metrics),
		container.WithSlowThresholds(cfg.Registry.SlowComponent, cfg.Registry.SlowTotal),
		container.WithFactoryTimeout(cfg.Registry.FactoryTimeout),
	}, opts...)...)

	// Register framework core providers (same order as Laravel)
	b.Register(
		&providers.LogServiceProvider[Context]{Logger: LoggerKey, Config: ConfigKey},
		&providers.MetricsServiceProvider[Context]{Metrics: MetricsKey, Registry: metrics},
		&providers.RoutingServiceProvider[Context]{Router: RouterKey, Logger: LoggerKey},
		&providers.ServerServiceProvider[Context]{Server: ServerKey, Config: ConfigKey, Router: RouterKey, Logger: LoggerKey},
	)

	return &Application{Builder: b, config: cfg}
}

// Boot builds the registry with the config seeded and mounts the inspect
// routes. It does not start the server. Calling Boot again is a no-op.
func (a *Application) Boot(ctx context.Context) error {
	if a.registry != nil {
		return nil
	}
	reg, err := a.Build(ctx, ConfigKey.Value(a.config))
	if err != nil {
		return err
	}
	a.registry = reg

	c := reg.Context()
	inspect.Routes(c.Router, reg.Loader(), c.Metrics,
		container.Provide(reg.Loader(), func(c *Context, _ *http.Request) bool {
			return c.Server != nil && c.Server.Listening()
		}),
	)
	return nil
}

// Start boots the application (if needed) and starts the HTTP server. When
// the server cannot listen, the registry is stopped again.
func (a *Application) Start(ctx context.Context) error {
	if err := a.Boot(ctx); err != nil {
		return err
	}
	c := a.registry.Context()
	if err := c.Server.Start(); err != nil {
		a.Stop(ctx)
		return err
	}
	c.Logger.Info("Application running",
		zap.String("addr", c.Server.Addr()),
		zap.String("build", a.registry.Loader().ID()),
	)
	return nil
}

// Run starts the application and blocks until ctx is done, SIGINT or
// SIGTERM arrives, or the server fails. It then stops the registry within
// the configured shutdown timeout and returns the server's error, if any.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	c := a.registry.Context()

	var err error
	select {
	case <-ctx.Done():
	case err = <-c.Server.Done():
	}
	c.Logger.Info("Shutting down", zap.Duration("timeout", a.config.App.ShutdownTimeout))

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.App.ShutdownTimeout)
	defer cancel()
	a.Stop(stopCtx)
	return err
}

// Stop tears the registry down in reverse construction order. It is safe to
// call before Boot and more than once.
func (a *Application) Stop(ctx context.Context) {
	if a.registry != nil {
		a.registry.Stop(ctx)
	}
}

// Context returns the built components, or nil before Boot.
func (a *Application) Context() *Context {
	if a.registry == nil {
		return nil
	}
	return a.registry.Context()
}

// Status reports the registry's load status and timing.
func (a *Application) Status() (container.Status, error) {
	if a.registry == nil {
		return container.Status{}, ErrNotBooted
	}
	return a.registry.Loader().Status(), nil
}

// Config returns the configuration the application was created with.
func (a *Application) Config() *config.Config { return a.config }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
