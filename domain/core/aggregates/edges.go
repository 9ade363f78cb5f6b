package aggregates

import (
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"
)

// EdgeKind classifies an introduction edge
type EdgeKind string

const (
	EdgeDirect     EdgeKind = "direct"
	EdgeIntroduced EdgeKind = "introduced"
	EdgeExternal   EdgeKind = "external"
	EdgeConnector  EdgeKind = "connector"
	EdgeGroup      EdgeKind = "group"
)

// StrokeStyle is the dash pattern used to draw an edge
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

// Edge is a renderable directed edge from introducer to person
type Edge struct {
	Source      valueobjects.PersonID `json:"source"`
	Target      valueobjects.PersonID `json:"target"`
	Kind        EdgeKind              `json:"kind"`
	StrokeWidth float64               `json:"strokeWidth"`
	StrokeStyle StrokeStyle           `json:"strokeStyle"`
}

// StyleFor returns the stroke style of an edge kind
func StyleFor(kind EdgeKind) StrokeStyle {
	switch kind {
	case EdgeIntroduced, EdgeGroup:
		return StrokeDashed
	case EdgeConnector:
		return StrokeDotted
	default:
		return StrokeSolid
	}
}

// Includes reports whether the view mode keeps edges of the given kind.
// This is an inclusion filter only; reachability is not considered.
func (m ViewMode) Includes(kind EdgeKind) bool {
	switch m {
	case ViewDirect:
		return kind == EdgeDirect
	case ViewIntroduced:
		return kind == EdgeIntroduced || kind == EdgeConnector
	case ViewExternal:
		return kind == EdgeExternal
	default:
		return kind == EdgeDirect || kind == EdgeIntroduced || kind == EdgeExternal || kind == EdgeConnector
	}
}

// BuildEdges derives the introduction edges and filters them by view mode.
//
// Every non-root person contributes exactly one introduction edge. A
// connector edge from the root is added once per introducer that appears in
// an introduced edge and whose own edge is not a direct edge, so that the
// introducer stays visibly attached to the root when its own edge is
// filtered out. An introducer whose reference is dangling or points at the
// root is drawn with a direct edge and gets no connector. Connectors cover a
// single hop only.
func (n *Network) BuildEdges(mode ViewMode) []Edge {
	edges := make([]Edge, 0, len(n.people))
	connected := make(map[valueobjects.PersonID]bool)

	for _, p := range n.people {
		kind := EdgeDirect
		source := n.rootID

		switch p.Connection().IntroducedByType {
		case valueobjects.IntroducedExternal:
			kind = EdgeExternal
		case valueobjects.IntroducedExisting:
			if introducer, ok := n.introducerOf(p); ok {
				kind = EdgeIntroduced
				source = introducer
			}
		}

		if mode.Includes(kind) {
			edges = append(edges, n.newEdge(source, p, kind))
		}

		if kind != EdgeIntroduced || connected[source] {
			continue
		}
		connected[source] = true

		// an introducer whose own edge already runs from the root as a
		// direct edge needs no connector
		introducer := n.index[source]
		if introducer.Connection().IntroducedByType != valueobjects.IntroducedExternal {
			if _, introduced := n.introducerOf(introducer); !introduced {
				continue
			}
		}
		if mode.Includes(EdgeConnector) {
			edges = append(edges, n.newEdge(n.rootID, introducer, EdgeConnector))
		}
	}

	return edges
}

func (n *Network) newEdge(source valueobjects.PersonID, target *entities.Person, kind EdgeKind) Edge {
	return Edge{
		Source:      source,
		Target:      target.ID(),
		Kind:        kind,
		StrokeWidth: n.StrokeWidth(target.Strength()),
		StrokeStyle: StyleFor(kind),
	}
}

// StrokeWidth maps a strength to an edge width
func (n *Network) StrokeWidth(s valueobjects.Strength) float64 {
	return n.cfg.BaseStrokeWidth + float64(valueobjects.Rank(s))*n.cfg.StrokeWidthPerRank
}
