package services

import "fmt"

// DedupPolicy decides what happens to a remote message that is the
// transport echoing our own broadcast back.
type DedupPolicy string

const (
	// DedupNone appends every remote message.
	DedupNone DedupPolicy = "none"
	// DedupOwnEcho drops remote messages sent by the local peer id.
	DedupOwnEcho DedupPolicy = "own-echo"
)

// AnonymousPolicy decides what happens to a remote message without sender.
type AnonymousPolicy string

const (
	AnonymousRender AnonymousPolicy = "render"
	AnonymousReject AnonymousPolicy = "reject"
)

type Policy struct {
	Dedup     DedupPolicy
	Anonymous AnonymousPolicy
}

// DefaultPolicy keeps every message, anonymous ones included.
func DefaultPolicy() Policy {
	return Policy{Dedup: DedupNone, Anonymous: AnonymousRender}
}

func ParsePolicy(dedup, anonymous string) (Policy, error) {
	p := Policy{Dedup: DedupPolicy(dedup), Anonymous: AnonymousPolicy(anonymous)}
	switch p.Dedup {
	case DedupNone, DedupOwnEcho:
	default:
		return Policy{}, fmt.Errorf("unknown dedup policy %q", dedup)
	}
	switch p.Anonymous {
	case AnonymousRender, AnonymousReject:
	default:
		return Policy{}, fmt.Errorf("unknown anonymous policy %q", anonymous)
	}
	return p, nil
}
