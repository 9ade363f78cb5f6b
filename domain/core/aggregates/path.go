package aggregates

import (
	"peoplenet/domain/core/valueobjects"
	pkgerrors "peoplenet/pkg/errors"
)

// Path labels
const (
	LabelDirect   = "Direct connection"
	LabelNetwork  = "Through network"
	LabelExternal = "External intro"
)

// TruncationReason explains why a walk stopped before reaching the root
type TruncationReason string

const (
	TruncatedNone             TruncationReason = ""
	TruncatedCycle            TruncationReason = "cycle"
	TruncatedMissingReference TruncationReason = "missing_reference"
)

// ConnectionPath is the chain of introductions from the root to a person
type ConnectionPath struct {
	// Chain holds display names from the root (when reached) to the target
	Chain []string `json:"chain"`
	// IDs holds the node ids of Chain; external introducers have no id and are skipped
	IDs       []valueobjects.PersonID `json:"ids"`
	Label     string                  `json:"label"`
	Truncated bool                    `json:"truncated"`
	Reason    TruncationReason        `json:"reason,omitempty"`
}

type pathStep struct {
	name string
	id   valueobjects.PersonID
}

// ReconstructPath walks introduction edges from target back to the root.
//
// The walk is iterative and tracks visited ids: revisiting a person stops
// the walk with Reason=cycle, and an introducer id absent from the snapshot
// stops it with Reason=missing_reference. In both cases the partial chain
// built so far is returned. The only error is an unknown target.
func (n *Network) ReconstructPath(target valueobjects.PersonID) (ConnectionPath, error) {
	if n.IsRoot(target) {
		return ConnectionPath{
			Chain: []string{n.rootName},
			IDs:   []valueobjects.PersonID{n.rootID},
			Label: LabelDirect,
		}, nil
	}

	person, ok := n.index[target]
	if !ok {
		return ConnectionPath{}, pkgerrors.NewNotFoundError("person")
	}

	path := ConnectionPath{}
	switch person.Connection().IntroducedByType {
	case valueobjects.IntroducedExternal:
		path.Label = LabelExternal
	case valueobjects.IntroducedExisting:
		path.Label = LabelNetwork
	default:
		path.Label = LabelDirect
	}

	// steps are collected target-first and reversed at the end
	steps := []pathStep{{name: person.Name(), id: person.ID()}}
	visited := map[valueobjects.PersonID]bool{person.ID(): true}
	current := person

	for {
		conn := current.Connection()

		if conn.IntroducedByType == valueobjects.IntroducedExternal {
			steps = append(steps,
				pathStep{name: n.externalName(conn.IntroducedByName)},
				pathStep{name: n.rootName, id: n.rootID},
			)
			break
		}

		if conn.IntroducedByType != valueobjects.IntroducedExisting || n.IsRoot(conn.IntroducedBy) {
			steps = append(steps, pathStep{name: n.rootName, id: n.rootID})
			break
		}

		ref := conn.IntroducedBy
		if visited[ref] {
			path.Truncated = true
			path.Reason = TruncatedCycle
			break
		}

		next, found := n.index[ref]
		if !found {
			path.Truncated = true
			path.Reason = TruncatedMissingReference
			break
		}

		visited[ref] = true
		steps = append(steps, pathStep{name: next.Name(), id: next.ID()})
		current = next
	}

	path.Chain = make([]string, 0, len(steps))
	path.IDs = make([]valueobjects.PersonID, 0, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		path.Chain = append(path.Chain, steps[i].name)
		if !steps[i].id.IsZero() {
			path.IDs = append(path.IDs, steps[i].id)
		}
	}

	return path, nil
}

// PathNodeIDs returns the set of node ids on the path, used to dim everything else
func PathNodeIDs(path ConnectionPath) map[valueobjects.PersonID]struct{} {
	out := make(map[valueobjects.PersonID]struct{}, len(path.IDs))
	for _, id := range path.IDs {
		out[id] = struct{}{}
	}
	return out
}

// OnPath reports whether an edge joins two consecutive ids of the path.
// An external introducer has no id, so root→target counts for external intros.
func OnPath(path ConnectionPath, e Edge) bool {
	for i := 0; i+1 < len(path.IDs); i++ {
		if path.IDs[i].Equals(e.Source) && path.IDs[i+1].Equals(e.Target) {
			return true
		}
	}
	return false
}

func (n *Network) externalName(name string) string {
	if name == "" {
		return n.cfg.ExternalUnknownName
	}
	return name
}
