package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
	"github.com/km-arc/go-registry/framework/providers"
	"github.com/km-arc/go-registry/framework/routing"
)

// Context holds every framework component. A built registry fills all of
// its fields; a Loader fills them on demand.
type Context struct {
	Config  *config.Config
	Logger  *providers.Logger
	Metrics *prometheus.Registry
	Router  *routing.Router
	Server  *providers.Server
}

// Keys for the Context fields.
var (
	ConfigKey  = container.NewKey("config", func(c *Context) **config.Config { return &c.Config })
	LoggerKey  = container.NewKey("logger", func(c *Context) **providers.Logger { return &c.Logger })
	MetricsKey = container.NewKey("metrics", func(c *Context) **prometheus.Registry { return &c.Metrics })
	RouterKey  = container.NewKey("router", func(c *Context) **routing.Router { return &c.Router })
	ServerKey  = container.NewKey("server", func(c *Context) **providers.Server { return &c.Server })
)
