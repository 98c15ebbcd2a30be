package container_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-registry/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type testContext struct {
	A   int
	B   int
	C   int
	Opt string

	X *service
	Y *service
	Z *service
}

var (
	aKey   = container.NewKey("a", func(c *testContext) *int { return &c.A })
	bKey   = container.NewKey("b", func(c *testContext) *int { return &c.B })
	cKey   = container.NewKey("c", func(c *testContext) *int { return &c.C })
	optKey = container.NewKey("opt", func(c *testContext) *string { return &c.Opt })

	xKey = container.NewKey("x", func(c *testContext) **service { return &c.X })
	yKey = container.NewKey("y", func(c *testContext) **service { return &c.Y })
	zKey = container.NewKey("z", func(c *testContext) **service { return &c.Z })
)

type loader = container.Loader[testContext]

// service records its Stop calls in a shared journal.
type service struct {
	name    string
	journal *journal
	err     error
}

func (s *service) Stop(context.Context) error {
	s.journal.add(s.name)
	return s.err
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func observed(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func value[T any](v T) container.Factory[testContext, T] {
	return func(context.Context, *loader) (T, error) { return v, nil }
}

func plusOne(dep container.Key[testContext, int]) container.Factory[testContext, int] {
	return func(ctx context.Context, l *loader) (int, error) {
		v, err := container.Get(ctx, l, dep)
		if err != nil {
			return 0, err
		}
		return v + 1, nil
	}
}

// chain binds x, y depending on x, z depending on y.
func chain(b *container.Builder[testContext], j *journal) {
	container.Bind(b, xKey, func(context.Context, *loader) (*service, error) {
		return &service{name: "x", journal: j}, nil
	})
	container.Bind(b, yKey, func(ctx context.Context, l *loader) (*service, error) {
		if _, err := container.Get(ctx, l, xKey); err != nil {
			return nil, err
		}
		return &service{name: "y", journal: j}, nil
	})
	container.Bind(b, zKey, func(ctx context.Context, l *loader) (*service, error) {
		if _, err := container.Get(ctx, l, yKey); err != nil {
			return nil, err
		}
		return &service{name: "z", journal: j}, nil
	})
}
