// Package container provides a typed, lazily resolved component registry with
// lifecycle management.
//
// # Overview
//
// An application describes its components as the fields of one struct, the
// context. Each field gets a Key and a factory. The registry builds each
// component the first time something asks for it, hands every factory a Loader
// through which it asks for its own dependencies, detects circular
// dependencies, records how long each component took to build, and tears
// everything down in reverse order at shutdown.
//
// # Registry Lifecycle
//
//  1. Declare: one Key per context field
//  2. Bind: b := container.NewBuilder[AppContext](); container.Bind(b, key, factory)
//  3. Build: reg, err := b.Build(ctx)      — every bound key is set after this
//  4. Serve requests through reg.Context()
//  5. Stop: reg.Stop(ctx)                  — reverse construction order
//
// # Keys
//
//	type AppContext struct {
//	    Config *config.Config
//	    DB     *sql.DB
//	    Repo   *UserRepository
//	}
//
//	var (
//	    ConfigKey = container.NewKey("config", func(c *AppContext) **config.Config { return &c.Config })
//	    DBKey     = container.NewKey("db", func(c *AppContext) **sql.DB { return &c.DB })
//	    RepoKey   = container.NewKey("repo", func(c *AppContext) **UserRepository { return &c.Repo })
//	)
//
// # Bindings
//
//	// Fixed value
//	container.Set(b, ConfigKey, cfg)
//
//	// Factory — runs once, on first request
//	container.Bind(b, DBKey, func(ctx context.Context, l *container.Loader[AppContext]) (*sql.DB, error) {
//	    cfg, err := container.Get(ctx, l, ConfigKey)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sql.Open(cfg.DB.Driver, cfg.DB.DSN())
//	})
//
//	// Resolved before everything else
//	b.LoadEarly(LoggerKey)
//
//	// Group bindings into install functions
//	b.Install(providers.Storage, providers.HTTP)
//
// # Resolving
//
//	repo, err := container.Get(ctx, l, RepoKey)              // required
//	cache, ok, err := container.GetOptional(ctx, l, CacheKey) // optional
//	snapshot, err := l.GetAll(ctx, DBKey, RepoKey)           // concurrent
//
// A factory that asks, directly or through other factories, for the key it is
// building fails with *CircularDependencyError. A required key with no
// binding fails with *UnboundError. Factory errors are logged and returned
// unchanged.
//
// # Teardown
//
// Components opt into teardown by implementing Stopper. Registry.Stop walks
// the components in reverse construction order; a failing Stop is logged and
// the sweep continues.
//
// # Diagnostics
//
// Each component's self-time (construction time minus time spent building its
// dependencies) is kept in Loader.Timing. When a component exceeds 50ms or a
// build exceeds 1s, one log line reports the whole table. WithMetrics exports
// the same numbers to Prometheus.
package container
