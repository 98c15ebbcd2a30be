package container_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-registry/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

// countersProvider carries its settings as fields, like a configured
// service provider.
type countersProvider struct {
	Start int

	registerCalled bool
}

func (p *countersProvider) Register(b *container.Builder[testContext]) {
	p.registerCalled = true
	container.Set(b, aKey, p.Start)
	container.Bind(b, bKey, plusOne(aKey))
}

// ── Register ──────────────────────────────────────────────────────────────────

func TestProvider_Register_AppliesImmediately(t *testing.T) {
	p := &countersProvider{Start: 10}
	b := container.NewBuilder[testContext]()
	b.Register(p)

	if !p.registerCalled {
		t.Error("Register() should be called when the provider is registered")
	}
	if !b.Bound("a") || !b.Bound("b") {
		t.Error("expected the provider's bindings on the builder")
	}

	reg, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, reg.Context().B)
}

func TestProvider_Register_LaterProviderOverrides(t *testing.T) {
	b := container.NewBuilder[testContext]()
	b.Register(
		&countersProvider{Start: 1},
		container.ProviderFunc[testContext](func(b *container.Builder[testContext]) {
			container.Set(b, aKey, 100)
		}),
	)

	reg, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, reg.Context().A)
	assert.Equal(t, 101, reg.Context().B)
}

func TestProvider_Providers_InRegistrationOrder(t *testing.T) {
	first := &countersProvider{}
	second := container.ProviderFunc[testContext](func(*container.Builder[testContext]) {})

	b := container.NewBuilder[testContext]()
	b.Register(first).Register(second)

	got := b.Providers()
	require.Len(t, got, 2)
	assert.Same(t, first, got[0])

	// The returned slice is a copy.
	got[0] = nil
	assert.NotNil(t, b.Providers()[0])
}

func TestProvider_Install_IsNotRecorded(t *testing.T) {
	b := container.NewBuilder[testContext]()
	b.Install(func(b *container.Builder[testContext]) { container.Set(b, aKey, 1) })

	assert.True(t, b.Bound("a"))
	assert.Empty(t, b.Providers())
}
