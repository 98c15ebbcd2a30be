package container

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder collects factory bindings for the context type C and produces
// Loaders or fully built registries from them.
//
//	b := container.NewBuilder[AppContext](container.WithLogger(logger))
//	container.Set(b, ConfigKey, cfg)
//	container.Bind(b, CacheKey, newCache)
//	b.LoadEarly(LoggerKey)
//
//	reg, err := b.Build(ctx)
//	defer reg.Stop(context.Background())
type Builder[C any] struct {
	table     *table[C]
	early     []Ref[C]
	providers []Provider[C]
	opts      options
}

// NewBuilder returns an empty Builder.
func NewBuilder[C any](opts ...Option) *Builder[C] {
	b := &Builder[C]{
		table: newTable[C](),
		opts:  defaultOptions(),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Bind registers factory for key, replacing any earlier binding. The factory
// runs at most once per successful result, however many Loaders request it.
func Bind[C, T any](b *Builder[C], key Key[C, T], factory Factory[C, T]) *Builder[C] {
	b.table.bind(&entry[C]{
		ref:      key,
		memo:     &memoized[C, T]{factory: factory},
		typeName: typeName[T](),
	})
	return b
}

// Set binds key to a fixed value.
func Set[C, T any](b *Builder[C], key Key[C, T], v T) *Builder[C] {
	return Bind(b, key, func(context.Context, *Loader[C]) (T, error) {
		return v, nil
	})
}

// LoadEarly marks keys to be resolved, one after the other and in the order
// given, before the rest of the build. Use it for components whose side
// effects other factories rely on without declaring them as dependencies.
// Early keys pull their own dependencies early too, so keep them small.
func (b *Builder[C]) LoadEarly(refs ...Ref[C]) *Builder[C] {
	b.early = append(b.early, refs...)
	return b
}

// Install applies configuration functions to the builder.
//
//	b.Install(providers.Logging, providers.HTTP)
func (b *Builder[C]) Install(fns ...func(*Builder[C])) *Builder[C] {
	for _, fn := range fns {
		fn(b)
	}
	return b
}

// Bound reports whether a factory is registered under name.
func (b *Builder[C]) Bound(name string) bool {
	return b.table.bound(name)
}

// BuildLoader returns a root Loader for lazy, partial access. Seeded keys are
// present from the start and their factories never run.
func (b *Builder[C]) BuildLoader(seeds ...Seed[C]) *Loader[C] {
	return newLoader(b.table, &b.opts, seeds)
}

// Build resolves the early keys in order, then every other bound key, and
// returns the built registry.
func (b *Builder[C]) Build(ctx context.Context, seeds ...Seed[C]) (*Registry[C], error) {
	loader := b.BuildLoader(seeds...)
	for _, ref := range b.early {
		if err := ref.resolve(ctx, loader); err != nil {
			return nil, err
		}
	}
	c, err := loader.Build(ctx)
	if err != nil {
		return nil, err
	}
	return &Registry[C]{context: c, loader: loader, opts: &b.opts}, nil
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry is a fully built context together with its teardown.
type Registry[C any] struct {
	context *C
	loader  *Loader[C]
	opts    *options

	stopOnce sync.Once
}

// Context returns the built context. Every bound key's slot is set.
func (r *Registry[C]) Context() *C { return r.context }

// Loader returns the root loader the registry was built with.
func (r *Registry[C]) Loader() *Loader[C] { return r.loader }

// Stop tears components down in reverse construction order, so a component
// is always stopped before the ones it was built from. Every component that
// implements Stopper gets its call: failures and panics are logged with the
// key and do not interrupt the sweep. Only the first call does anything.
func (r *Registry[C]) Stop(ctx context.Context) {
	r.stopOnce.Do(func() {
		slots := r.loader.inserted()
		for i := len(slots) - 1; i >= 0; i-- {
			s := slots[i]
			stopper, ok := s.stopper(r.context)
			if !ok {
				continue
			}
			if err := stopSafely(ctx, stopper); err != nil {
				r.opts.log().Error(fmt.Sprintf("Error stopping '%s'", s.name),
					zap.String("component", s.name),
					zap.String("build", r.loader.ID()),
					zap.Error(err),
				)
				r.opts.metrics.teardownFailed(s.name)
			}
		}
	})
}

func stopSafely(ctx context.Context, s Stopper) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("container: stop panicked: %v", p)
		}
	}()
	return s.Stop(ctx)
}
