package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InProgress is the timing entry of a component whose factory is running.
const InProgress time.Duration = -1

// ── Shared state ──────────────────────────────────────────────────────────────

// state is shared by a root Loader and every child forked from it. Each slot
// of partial is written at most once; order records insertion order for
// teardown.
type state[C any] struct {
	mu      sync.Mutex
	id      string
	partial C
	present map[string]bool
	order   []slot[C]
	timing  map[string]time.Duration
}

// ── Loader ────────────────────────────────────────────────────────────────────

// Loader resolves components lazily into a partially built context. The root
// Loader comes from Builder.BuildLoader; each factory receives a child Loader
// that shares the same context but carries a Scope extended with the key
// being built.
type Loader[C any] struct {
	state *state[C]
	table *table[C]
	opts  *options
	scope Scope

	// nested is the wall time, in nanoseconds, this loader spent waiting on
	// the components it constructed. The parent subtracts it to get self-time.
	nested atomic.Int64
	loaded atomic.Bool
}

func newLoader[C any](t *table[C], opts *options, seeds []Seed[C]) *Loader[C] {
	st := &state[C]{
		id:      uuid.NewString(),
		present: make(map[string]bool),
		timing:  make(map[string]time.Duration),
	}
	for _, s := range seeds {
		s.apply(&st.partial)
		if !st.present[s.slot.name] {
			st.present[s.slot.name] = true
			st.order = append(st.order, s.slot)
		}
	}
	return &Loader[C]{state: st, table: t, opts: opts}
}

func (l *Loader[C]) child(scope Scope) *Loader[C] {
	return &Loader[C]{state: l.state, table: l.table, opts: l.opts, scope: scope}
}

// Scope returns the resolution chain this loader was forked for.
func (l *Loader[C]) Scope() Scope { return l.scope }

// ID identifies the loader tree in logs.
func (l *Loader[C]) ID() string { return l.state.id }

// Loaded reports whether Build completed on this loader.
func (l *Loader[C]) Loaded() bool { return l.loaded.Load() }

// Context returns the built context once Build has succeeded.
func (l *Loader[C]) Context() (*C, bool) {
	if !l.loaded.Load() {
		return nil, false
	}
	return &l.state.partial, true
}

// ── Resolution ────────────────────────────────────────────────────────────────

// GetOptional returns the component for key, constructing it on first use.
// It reports false, without error, when the key has no factory and no
// supplied value. Factory errors are logged with the key and scope, then
// returned unchanged.
func GetOptional[C, T any](ctx context.Context, l *Loader[C], key Key[C, T]) (T, bool, error) {
	if v, ok := lookup(l, key); ok {
		return v, true, nil
	}

	var zero T
	m, err := factoryFor(l.table, key)
	if err != nil {
		return zero, false, err
	}
	if m == nil {
		return zero, false, nil
	}

	v, err := construct(ctx, l, key, m)
	if err != nil {
		l.opts.log().Error(fmt.Sprintf("Error loading '%s'", key.name),
			zap.String("component", key.name),
			zap.String("scope", l.scope.String()),
			zap.String("build", l.state.id),
			zap.Error(err),
		)
		return zero, false, err
	}
	return v, true, nil
}

// Get is GetOptional for required components: an absent, unbound key is an
// *UnboundError.
//
//	cfg, err := container.Get(ctx, l, ConfigKey)
func Get[C, T any](ctx context.Context, l *Loader[C], key Key[C, T]) (T, error) {
	v, ok, err := GetOptional(ctx, l, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, &UnboundError{Key: key.name}
	}
	return v, nil
}

// GetAll resolves refs concurrently and returns a snapshot of the context in
// which every requested slot is filled. The first failure cancels the context
// passed to the remaining factories.
func (l *Loader[C]) GetAll(ctx context.Context, refs ...Ref[C]) (C, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			return ref.resolve(gctx, l)
		})
	}
	if err := g.Wait(); err != nil {
		var zero C
		return zero, err
	}
	return l.snapshot(), nil
}

// Build resolves every bound key and marks the loader loaded. Once loaded it
// returns the same context without doing any work; a failed build leaves the
// loader unloaded so Build may be called again.
func (l *Loader[C]) Build(ctx context.Context) (*C, error) {
	if l.loaded.Load() {
		return &l.state.partial, nil
	}

	start := time.Now()
	if _, err := l.GetAll(ctx, l.table.refs()...); err != nil {
		return nil, err
	}
	l.loaded.Store(true)

	total := time.Since(start)
	l.opts.metrics.observeBuild(total)
	l.maybeSlowlog(total)
	return &l.state.partial, nil
}

// Provide binds fn to this loader's context. Every call of the returned
// function passes fn a snapshot of the context as it is at call time, which
// may still be partial.
//
//	health := container.Provide(l, func(c *AppContext, r *http.Request) bool {
//	    return c.Server != nil
//	})
func Provide[C, A, R any](l *Loader[C], fn func(c *C, arg A) R) func(A) R {
	return func(arg A) R {
		c := l.snapshot()
		return fn(&c, arg)
	}
}

func construct[C, T any](ctx context.Context, l *Loader[C], key Key[C, T], m *memoized[C, T]) (T, error) {
	var zero T

	scope, err := l.scope.Fork(key.name)
	if err != nil {
		return zero, err
	}
	release, err := l.table.waits.enter(l.scope.Current(), key.name)
	if err != nil {
		return zero, err
	}
	defer release()

	l.markInProgress(key.name)

	if d := l.opts.factoryTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	child := l.child(scope)
	start := time.Now()
	v, err := m.call(ctx, child)
	elapsed := time.Since(start)
	if err != nil {
		l.clearInProgress(key.name)
		l.opts.metrics.loadFailed(key.name)
		return zero, err
	}

	self := max(0, elapsed-time.Duration(child.nested.Load()))
	v = store(l, key, v, self)
	l.nested.Add(int64(elapsed))
	l.opts.metrics.observeLoad(key.name, self)
	return v, nil
}

// ── State access ──────────────────────────────────────────────────────────────

func lookup[C, T any](l *Loader[C], key Key[C, T]) (T, bool) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if !l.state.present[key.name] {
		var zero T
		return zero, false
	}
	return *key.field(&l.state.partial), true
}

// store writes v into the key's slot unless a concurrent resolution already
// did, in which case the stored value wins.
func store[C, T any](l *Loader[C], key Key[C, T], v T, self time.Duration) T {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if l.state.present[key.name] {
		return *key.field(&l.state.partial)
	}
	*key.field(&l.state.partial) = v
	l.state.present[key.name] = true
	l.state.order = append(l.state.order, key.slot())
	l.state.timing[key.name] = self
	return v
}

func (l *Loader[C]) markInProgress(name string) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if !l.state.present[name] {
		l.state.timing[name] = InProgress
	}
}

func (l *Loader[C]) clearInProgress(name string) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if !l.state.present[name] && l.state.timing[name] == InProgress {
		delete(l.state.timing, name)
	}
}

func (l *Loader[C]) snapshot() C {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.partial
}

// inserted returns the slots in insertion order.
func (l *Loader[C]) inserted() []slot[C] {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	out := make([]slot[C], len(l.state.order))
	copy(out, l.state.order)
	return out
}

// ── Diagnostics ───────────────────────────────────────────────────────────────

// Timing returns each component's self-time. Components still being built
// report InProgress.
func (l *Loader[C]) Timing() map[string]time.Duration {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	out := make(map[string]time.Duration, len(l.state.timing))
	for k, v := range l.state.timing {
		out[k] = v
	}
	return out
}

// Status is the serializable view of a loader.
type Status struct {
	Build  string             `json:"build" yaml:"build"`
	Loaded bool               `json:"loaded" yaml:"loaded"`
	Timing map[string]float64 `json:"timing" yaml:"timing"` // milliseconds, -1 while in progress
}

// Status reports whether the loader is loaded and the per-component timing.
func (l *Loader[C]) Status() Status {
	timing := l.Timing()
	ms := make(map[string]float64, len(timing))
	for k, d := range timing {
		if d == InProgress {
			ms[k] = -1
			continue
		}
		ms[k] = millis(d)
	}
	return Status{Build: l.state.id, Loaded: l.Loaded(), Timing: ms}
}
