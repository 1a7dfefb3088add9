// Package replacement replays page reference strings against a fixed pool of
// frames under the FIFO, LRU and OPT replacement policies.
package replacement

import (
	"fmt"
	"strings"
)

// Kind selects a replacement policy.
type Kind int

// A list of the supported policies, in the order they are compared.
const (
	FIFO Kind = iota
	LRU
	OPT
)

// AllKinds returns every policy in comparison order.
func AllKinds() []Kind {
	return []Kind{FIFO, LRU, OPT}
}

func (k Kind) String() string {
	switch k {
	case FIFO:
		return "FIFO"
	case LRU:
		return "LRU"
	case OPT:
		return "OPT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a policy name into a Kind. The name is case-insensitive.
func ParseKind(name string) (Kind, error) {
	for _, k := range AllKinds() {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown replacement policy %q", name)
}

// A Policy replays a reference string and annotates every reference.
type Policy interface {
	Kind() Kind

	// Replay starts from an empty frame pool of the given capacity and
	// returns one annotation per reference.
	Replay(capacity int, refs []Page) ([]Annotation, error)
}

// NewPolicy creates the policy of the given kind.
func NewPolicy(kind Kind) Policy {
	switch kind {
	case FIFO:
		return NewFIFOPolicy()
	case LRU:
		return NewLRUPolicy()
	case OPT:
		return NewOPTPolicy()
	default:
		panic(fmt.Sprintf("unknown replacement policy %d", int(kind)))
	}
}

// Replay runs the policy of the given kind over refs.
func Replay(kind Kind, capacity int, refs []Page) ([]Annotation, error) {
	return NewPolicy(kind).Replay(capacity, refs)
}
