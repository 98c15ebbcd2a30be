package container

// ── Provider ──────────────────────────────────────────────────────────────────

// Provider groups related bindings, the way a Laravel service provider does.
// Providers that need settings carry them as fields:
//
//	type HTTPProvider struct{ Addr string }
//
//	func (p *HTTPProvider) Register(b *container.Builder[AppContext]) {
//	    container.Bind(b, ServerKey, func(ctx context.Context, l *container.Loader[AppContext]) (*Server, error) {
//	        return NewServer(p.Addr), nil
//	    })
//	}
//
//	b.Register(&HTTPProvider{Addr: ":8000"})
type Provider[C any] interface {
	Register(b *Builder[C])
}

// ProviderFunc adapts an install function to the Provider interface.
type ProviderFunc[C any] func(b *Builder[C])

// Register calls f(b).
func (f ProviderFunc[C]) Register(b *Builder[C]) { f(b) }

// Register applies providers in order and records them.
func (b *Builder[C]) Register(providers ...Provider[C]) *Builder[C] {
	for _, p := range providers {
		p.Register(b)
		b.providers = append(b.providers, p)
	}
	return b
}

// Providers returns the providers registered so far, in order.
func (b *Builder[C]) Providers() []Provider[C] {
	out := make([]Provider[C], len(b.providers))
	copy(out, b.providers)
	return out
}
