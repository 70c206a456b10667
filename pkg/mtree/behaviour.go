// pkg/mtree/behaviour.go
package mtree

import (
	"fmt"

	"github.com/pingcap/errors"
)

// Behaviour is the policy applied to a duplicate or null key, and also the
// outcome reported by Add.
type Behaviour uint8

const (
	// Ignore drops the insertion silently.
	Ignore Behaviour = iota
	// Allow accepts the insertion.
	Allow
	// Disallow rejects the insertion; callers usually turn it into an error.
	Disallow
)

func (b Behaviour) String() string {
	switch b {
	case Ignore:
		return "Ignore"
	case Allow:
		return "Allow"
	case Disallow:
		return "Disallow"
	default:
		return fmt.Sprintf("Behaviour(%d)", uint8(b))
	}
}

// ParseBehaviour accepts the single-letter codes I, A and D as well as the
// full names.
func ParseBehaviour(s string) (Behaviour, error) {
	switch s {
	case "I", "i", "Ignore", "ignore":
		return Ignore, nil
	case "A", "a", "Allow", "allow":
		return Allow, nil
	case "D", "d", "Disallow", "disallow":
		return Disallow, nil
	}
	return Ignore, errors.Errorf("mtree: unknown behaviour %q", s)
}

// TreeInfo is the policy for one key component.
type TreeInfo struct {
	Name        string
	OnDuplicate Behaviour
	OnNullKey   Behaviour
	// Descending orders this component from high to low.
	Descending bool
}

func (ti TreeInfo) String() string {
	dir := "asc"
	if ti.Descending {
		dir = "desc"
	}
	return fmt.Sprintf("%s(dup=%s, null=%s, %s)", ti.Name, ti.OnDuplicate, ti.OnNullKey, dir)
}
