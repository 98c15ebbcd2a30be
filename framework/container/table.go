package container

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds the component for one key. It receives a Loader scoped to
// that key, through which it requests its own dependencies.
//
//	container.Bind(b, CacheKey, func(ctx context.Context, l *container.Loader[AppContext]) (*redis.Client, error) {
//	    cfg, err := container.Get(ctx, l, ConfigKey)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return redis.NewClient(cfg.Redis), nil
//	})
type Factory[C, T any] func(ctx context.Context, l *Loader[C]) (T, error)

// ── Memoized factory ──────────────────────────────────────────────────────────

// memoized runs its factory at most once per successful result. Concurrent
// first requests share one in-flight call; a failed call is forgotten so the
// next build may retry it.
type memoized[C, T any] struct {
	factory Factory[C, T]
	flight  singleflight.Group

	mu   sync.Mutex
	done bool
	val  T
}

func (m *memoized[C, T]) call(ctx context.Context, l *Loader[C]) (T, error) {
	if v, ok := m.cached(); ok {
		return v, nil
	}
	_, err, _ := m.flight.Do("", func() (any, error) {
		if _, ok := m.cached(); ok {
			return nil, nil
		}
		v, err := m.factory(ctx, l)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.val, m.done = v, true
		m.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := m.cached()
	return v, nil
}

func (m *memoized[C, T]) cached() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val, m.done
}

// ── Binding table ─────────────────────────────────────────────────────────────

// entry is one bound key: the key itself (for the build sweep) and its
// memoized factory, stored untyped and asserted back by factoryFor.
type entry[C any] struct {
	ref      Ref[C]
	memo     any
	typeName string
}

// table is owned by a Builder and borrowed by every Loader it creates.
type table[C any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[C]
	order   []string
	waits   *waitGraph
}

func newTable[C any]() *table[C] {
	return &table[C]{
		entries: make(map[string]*entry[C]),
		waits:   newWaitGraph(),
	}
}

// bind registers or replaces the entry for a key. A replaced key keeps its
// original position in the build order.
func (t *table[C]) bind(e *entry[C]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name := e.ref.Name()
	if _, ok := t.entries[name]; !ok {
		t.order = append(t.order, name)
	}
	t.entries[name] = e
}

func (t *table[C]) lookup(name string) (*entry[C], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e, ok
}

func (t *table[C]) bound(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

// refs returns every bound key in registration order.
func (t *table[C]) refs() []Ref[C] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Ref[C], 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name].ref)
	}
	return out
}

// factoryFor returns the memoized factory bound to key, or nil when the key is
// unbound.
func factoryFor[C, T any](t *table[C], key Key[C, T]) (*memoized[C, T], error) {
	e, ok := t.lookup(key.name)
	if !ok {
		return nil, nil
	}
	m, ok := e.memo.(*memoized[C, T])
	if !ok {
		return nil, &KeyTypeError{Key: key.name, Want: typeName[T](), Got: e.typeName}
	}
	return m, nil
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}

// ── Wait graph ────────────────────────────────────────────────────────────────

// waitGraph records which component is currently blocked on which. Scope
// catches cycles along one resolution path; the graph catches the ones that
// close through a sibling goroutine's in-flight construction, which would
// otherwise deadlock on the shared memo cell.
type waitGraph struct {
	mu    sync.Mutex
	edges map[string]map[string]int
}

func newWaitGraph() *waitGraph {
	return &waitGraph{edges: make(map[string]map[string]int)}
}

// enter records that from is blocked on to and returns the matching release.
// It fails if to is already, directly or transitively, blocked on from.
func (g *waitGraph) enter(from, to string) (func(), error) {
	if from == "" {
		return func() {}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if path := g.path(to, from); path != nil {
		return nil, &CircularDependencyError{
			Key:   from,
			Chain: append([]string{from}, path...),
		}
	}

	if g.edges[from] == nil {
		g.edges[from] = make(map[string]int)
	}
	g.edges[from][to]++

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.edges[from][to]--; g.edges[from][to] <= 0 {
			delete(g.edges[from], to)
			if len(g.edges[from]) == 0 {
				delete(g.edges, from)
			}
		}
	}, nil
}

// path returns the keys from src to dst along recorded edges, or nil.
// Callers hold g.mu.
func (g *waitGraph) path(src, dst string) []string {
	seen := make(map[string]bool)
	var walk func(string) []string
	walk = func(n string) []string {
		if n == dst {
			return []string{n}
		}
		if seen[n] {
			return nil
		}
		seen[n] = true
		for next := range g.edges[n] {
			if p := walk(next); p != nil {
				return append([]string{n}, p...)
			}
		}
		return nil
	}
	return walk(src)
}
