// Package providers holds the framework's service providers: the logger,
// the Prometheus registry, the router and the HTTP server. Each provider is
// generic over the application's context struct and is told which keys to
// bind, so any context that has the right fields can install them.
//
//	b.Register(
//	    &providers.LogServiceProvider[AppContext]{Logger: LoggerKey, Config: ConfigKey},
//	    &providers.RoutingServiceProvider[AppContext]{Router: RouterKey, Logger: LoggerKey},
//	)
package providers
