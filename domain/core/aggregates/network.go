package aggregates

import (
	"strings"

	"peoplenet/domain/config"
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
)

// ViewMode selects which edge kinds are rendered
type ViewMode string

const (
	ViewAll        ViewMode = "all"
	ViewDirect     ViewMode = "direct"
	ViewIntroduced ViewMode = "introduced"
	ViewExternal   ViewMode = "external"
)

// ParseViewMode parses a view mode, defaulting to all
func ParseViewMode(raw string) ViewMode {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ViewAll, ViewDirect, ViewIntroduced, ViewExternal:
		return m
	default:
		return ViewAll
	}
}

// Network is a read-only snapshot of a user's people rooted at the "You" node.
// It never mutates the people it was built from.
type Network struct {
	rootID   valueobjects.PersonID
	rootName string
	people   []*entities.Person
	index    map[valueobjects.PersonID]*entities.Person
	cfg      *config.DomainConfig
}

// NewNetwork builds a snapshot over people in collection order. A person
// flagged as the user profile becomes the root; otherwise a synthetic root
// with the reserved id is used.
func NewNetwork(people []*entities.Person, cfg *config.DomainConfig) *Network {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	n := &Network{
		rootID:   valueobjects.RootID(),
		rootName: cfg.RootName,
		people:   make([]*entities.Person, 0, len(people)),
		index:    make(map[valueobjects.PersonID]*entities.Person, len(people)),
		cfg:      cfg,
	}

	for _, p := range people {
		if p == nil {
			continue
		}
		if p.IsUserProfile() && n.rootID.String() == valueobjects.RootPersonID {
			n.rootID = p.ID()
			n.rootName = p.Name()
			continue
		}
		if p.ID().String() == valueobjects.RootPersonID {
			// a stored record may not shadow the synthetic root
			continue
		}
		if _, dup := n.index[p.ID()]; dup {
			continue
		}
		n.index[p.ID()] = p
		n.people = append(n.people, p)
	}

	return n
}

// RootID returns the id of the root node
func (n *Network) RootID() valueobjects.PersonID { return n.rootID }

// RootName returns the display name of the root node
func (n *Network) RootName() string { return n.rootName }

// IsRoot reports whether id is the root node
func (n *Network) IsRoot(id valueobjects.PersonID) bool { return id.Equals(n.rootID) }

// Len returns the number of non-root people
func (n *Network) Len() int { return len(n.people) }

// IsEmpty reports whether the network has no non-root people
func (n *Network) IsEmpty() bool { return len(n.people) == 0 }

// People returns the non-root people in collection order
func (n *Network) People() []*entities.Person {
	out := make([]*entities.Person, len(n.people))
	copy(out, n.people)
	return out
}

// Person looks up a non-root person by id
func (n *Network) Person(id valueobjects.PersonID) (*entities.Person, bool) {
	p, ok := n.index[id]
	return p, ok
}

// Name returns the display name for any node id, including the root
func (n *Network) Name(id valueobjects.PersonID) string {
	if n.IsRoot(id) {
		return n.rootName
	}
	if p, ok := n.index[id]; ok {
		return p.Name()
	}
	return ""
}

// Config returns the rules the snapshot was built with
func (n *Network) Config() *config.DomainConfig { return n.cfg }

// introducerOf returns the resolved introducer id of p. The bool is false
// when the introduction should be drawn from the root instead: a direct or
// external introduction, or an existing one whose reference is dangling,
// points at p itself, or points at the root.
func (n *Network) introducerOf(p *entities.Person) (valueobjects.PersonID, bool) {
	conn := p.Connection()
	if conn.IntroducedByType != valueobjects.IntroducedExisting {
		return valueobjects.PersonID{}, false
	}
	ref := conn.IntroducedBy
	if ref.IsZero() || ref.Equals(p.ID()) || n.IsRoot(ref) {
		return valueobjects.PersonID{}, false
	}
	if _, ok := n.index[ref]; !ok {
		return valueobjects.PersonID{}, false
	}
	return ref, true
}
