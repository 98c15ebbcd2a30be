package providers_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/providers"
	"github.com/km-arc/go-registry/framework/routing"
)

// ── fixture ───────────────────────────────────────────────────────────────────

type services struct {
	Config  *config.Config
	Logger  *providers.Logger
	Metrics *prometheus.Registry
	Router  *routing.Router
	Server  *providers.Server
}

var (
	configKey  = container.NewKey("config", func(s *services) **config.Config { return &s.Config })
	loggerKey  = container.NewKey("logger", func(s *services) **providers.Logger { return &s.Logger })
	metricsKey = container.NewKey("metrics", func(s *services) **prometheus.Registry { return &s.Metrics })
	routerKey  = container.NewKey("router", func(s *services) **routing.Router { return &s.Router })
	serverKey  = container.NewKey("server", func(s *services) **providers.Server { return &s.Server })
)

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Name: "test", Env: "testing", Port: "0"}}
}

func newBuilder(t *testing.T, metrics *prometheus.Registry) (*container.Builder[services], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)

	b := container.NewBuilder[services]()
	b.Register(
		&providers.LogServiceProvider[services]{
			Logger: loggerKey,
			Config: configKey,
			Build:  func(*config.Config) (*zap.Logger, error) { return zap.New(core), nil },
		},
		&providers.MetricsServiceProvider[services]{Metrics: metricsKey, Registry: metrics},
		&providers.RoutingServiceProvider[services]{Router: routerKey, Logger: loggerKey},
		&providers.ServerServiceProvider[services]{Server: serverKey, Config: configKey, Router: routerKey, Logger: loggerKey},
	)
	return b, logs
}

// localURL turns a listener address such as "[::]:41234" into a loopback URL.
func localURL(t *testing.T, addr string) string {
	t.Helper()
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return "http://127.0.0.1:" + port
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

func TestLogServiceProvider_ReplacesGlobalsUntilStopped(t *testing.T) {
	before := zap.L()
	b, logs := newBuilder(t, nil)

	reg, err := b.Build(context.Background(), configKey.Value(testConfig()))
	require.NoError(t, err)

	zap.L().Info("through the global")
	entries := logs.FilterMessage("through the global").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test", entries[0].ContextMap()["app"])
	assert.Equal(t, "testing", entries[0].ContextMap()["env"])

	reg.Stop(context.Background())
	assert.Same(t, before, zap.L())
}

func TestLogServiceProvider_BuildError(t *testing.T) {
	b := container.NewBuilder[services](container.WithLogger(zap.NewNop()))
	b.Register(&providers.LogServiceProvider[services]{
		Logger: loggerKey,
		Config: configKey,
		Build:  func(*config.Config) (*zap.Logger, error) { return nil, io.ErrUnexpectedEOF },
	})

	_, err := b.Build(context.Background(), configKey.Value(testConfig()))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "logger:")
}

func TestNewLogger_DebugSelectsDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.App.Debug = true
	logger, err := providers.NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	cfg.App.Debug = false
	logger, err = providers.NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

func TestMetricsServiceProvider_RegistersRuntimeCollectors(t *testing.T) {
	metrics := prometheus.NewRegistry()
	b, _ := newBuilder(t, metrics)

	reg, err := b.Build(context.Background(), configKey.Value(testConfig()))
	require.NoError(t, err)
	defer reg.Stop(context.Background())

	assert.Same(t, metrics, reg.Context().Metrics)

	families, err := metrics.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}

func TestMetricsServiceProvider_DefaultRegistry(t *testing.T) {
	b, _ := newBuilder(t, nil)

	reg, err := b.Build(context.Background(), configKey.Value(testConfig()))
	require.NoError(t, err)
	defer reg.Stop(context.Background())

	assert.NotNil(t, reg.Context().Metrics)
}

// ── Routing / Server ──────────────────────────────────────────────────────────

func TestServerServiceProvider_ServesRouter(t *testing.T) {
	b, logs := newBuilder(t, nil)

	reg, err := b.Build(context.Background(), configKey.Value(testConfig()))
	require.NoError(t, err)

	c := reg.Context()
	c.Router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	assert.False(t, c.Server.Listening())
	require.NoError(t, c.Server.Start())

	resp, err := http.Get(localURL(t, c.Server.Addr()) + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, logs.FilterLoggerName("http").FilterMessage("Request").Len())

	reg.Stop(context.Background())
	assert.False(t, c.Server.Listening())
	assert.NoError(t, <-c.Server.Done())
}
