package container

import (
	"context"
	"fmt"
)

// ── Keys ──────────────────────────────────────────────────────────────────────

// Key names one component slot of the context struct C, holding a value of
// type T. The field accessor returns the address of the struct field, which is
// how the loader reads and writes slots without reflection.
//
//	type AppContext struct {
//	    Config *config.Config
//	    Cache  *redis.Client
//	}
//
//	var CacheKey = container.NewKey("cache", func(c *AppContext) **redis.Client { return &c.Cache })
type Key[C, T any] struct {
	name  string
	field func(*C) *T
}

// NewKey declares a component slot. It panics on an empty name or a nil
// accessor, both of which are wiring mistakes.
func NewKey[C, T any](name string, field func(*C) *T) Key[C, T] {
	if name == "" {
		panic("container: key name must not be empty")
	}
	if field == nil {
		panic(fmt.Sprintf("container: key [%s] has no field accessor", name))
	}
	return Key[C, T]{name: name, field: field}
}

// Name returns the key's name, as used in logs, timing and errors.
func (k Key[C, T]) Name() string { return k.name }

func (k Key[C, T]) String() string { return k.name }

// Value returns a Seed that pre-supplies v for this key, bypassing its factory.
//
//	reg, err := builder.Build(ctx, app.ConfigKey.Value(cfg))
func (k Key[C, T]) Value(v T) Seed[C] {
	return Seed[C]{
		slot:  k.slot(),
		apply: func(c *C) { *k.field(c) = v },
	}
}

func (k Key[C, T]) slot() slot[C] {
	return slot[C]{
		name: k.name,
		stopper: func(c *C) (Stopper, bool) {
			s, ok := any(*k.field(c)).(Stopper)
			return s, ok
		},
	}
}

func (k Key[C, T]) resolve(ctx context.Context, l *Loader[C]) error {
	_, err := Get(ctx, l, k)
	return err
}

// Ref is the type-erased view of a Key. It is what GetAll, LoadEarly and the
// build sweep accept, since they deal with keys of mixed value types.
type Ref[C any] interface {
	Name() string
	resolve(ctx context.Context, l *Loader[C]) error
	slot() slot[C]
}

// Seed pre-supplies one slot of a Loader's partial context.
type Seed[C any] struct {
	slot  slot[C]
	apply func(*C)
}

// slot is what the loader remembers about an inserted component: its name and
// how to reach its stop capability during teardown.
type slot[C any] struct {
	name    string
	stopper func(*C) (Stopper, bool)
}

// ── Stop capability ───────────────────────────────────────────────────────────

// Stopper is implemented by components that hold resources. Registry.Stop
// calls it in reverse construction order.
type Stopper interface {
	Stop(ctx context.Context) error
}

// StopFunc adapts a plain function to the Stopper interface.
type StopFunc func(ctx context.Context) error

// Stop calls f(ctx).
func (f StopFunc) Stop(ctx context.Context) error { return f(ctx) }
