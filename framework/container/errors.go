package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCircularDependency matches every *CircularDependencyError.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrUnbound matches every *UnboundError.
	ErrUnbound = errors.New("container: unbound component")
)

// CircularDependencyError is returned when resolving Key would require Key
// itself. Chain is the resolution path, ending with the repeated key.
type CircularDependencyError struct {
	Key   string
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("container: circular dependency on [%s]: %s", e.Key, strings.Join(e.Chain, " -> "))
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// UnboundError is returned by Get when a key has neither a factory nor a
// supplied value.
type UnboundError struct {
	Key string
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("container: attempt to load unbound [%s]", e.Key)
}

func (e *UnboundError) Is(target error) bool {
	return target == ErrUnbound
}

// KeyTypeError is returned when one key name was bound with a value type
// different from the one it is requested with.
type KeyTypeError struct {
	Key  string
	Want string
	Got  string
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("container: [%s] is bound as %s, requested as %s", e.Key, e.Got, e.Want)
}
