package container

import (
	"slices"
	"strings"
)

// Scope is the chain of components currently being constructed on one
// resolution path, outermost first. A Scope is never mutated: Fork returns a
// new one, and a finished resolution simply drops its child.
type Scope struct {
	chain []string
}

// Fork returns a Scope extended with key. It fails with a
// *CircularDependencyError when key is already on the chain.
func (s Scope) Fork(key string) (Scope, error) {
	if s.Has(key) {
		return Scope{}, &CircularDependencyError{
			Key:   key,
			Chain: append(s.Chain(), key),
		}
	}
	next := make([]string, len(s.chain), len(s.chain)+1)
	copy(next, s.chain)
	return Scope{chain: append(next, key)}, nil
}

// Has reports whether key is on the chain.
func (s Scope) Has(key string) bool {
	return slices.Contains(s.chain, key)
}

// Chain returns a copy of the keys on the chain, outermost first.
func (s Scope) Chain() []string {
	return slices.Clone(s.chain)
}

// Current returns the innermost key, or "" for a root scope.
func (s Scope) Current() string {
	if len(s.chain) == 0 {
		return ""
	}
	return s.chain[len(s.chain)-1]
}

// Len returns the depth of the chain.
func (s Scope) Len() int { return len(s.chain) }

func (s Scope) String() string {
	return strings.Join(s.chain, " -> ")
}
