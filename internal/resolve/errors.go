package resolve

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

var (
	// ErrCircularDependency matches any *CircularDependencyError.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrUnknownDependency matches any *UnknownDependencyError.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrUnknownComponent matches any *UnknownComponentError.
	ErrUnknownComponent = errors.New("unknown component")
)

// CircularDependencyError reports a dependency cycle. Path starts and ends
// with the same id.
type CircularDependencyError struct {
	Path []component.ID
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("circular dependency: %s", strings.Join(parts, " -> "))
}

func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// key identifies the cycle independent of where it was entered.
func (e *CircularDependencyError) key() string {
	if len(e.Path) < 2 {
		return ""
	}
	ring := e.Path[:len(e.Path)-1]
	start := 0
	for i, id := range ring {
		if id < ring[start] {
			start = i
		}
	}
	var sb strings.Builder
	for i := range ring {
		sb.WriteString(string(ring[(start+i)%len(ring)]))
		sb.WriteByte(0)
	}
	return sb.String()
}

// UnknownDependencyError reports a dependency that is not registered.
type UnknownDependencyError struct {
	Requesting component.ID
	Missing    component.ID
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("component %q depends on unknown component %q", e.Requesting, e.Missing)
}

func (e *UnknownDependencyError) Is(target error) bool { return target == ErrUnknownDependency }

// UnknownComponentError reports a request for a component that is not
// registered.
type UnknownComponentError struct {
	ID component.ID
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q", e.ID)
}

func (e *UnknownComponentError) Is(target error) bool { return target == ErrUnknownComponent }
