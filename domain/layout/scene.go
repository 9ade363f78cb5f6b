package layout

import (
	"strings"

	"peoplenet/domain/core/aggregates"
	"peoplenet/domain/core/valueobjects"
)

// GroupBy selects the synthetic grouping overlay
type GroupBy string

const (
	GroupNone    GroupBy = "none"
	GroupTeam    GroupBy = "team"
	GroupCompany GroupBy = "company"
	GroupRole    GroupBy = "role"
)

// ParseGroupBy parses a group-by mode, defaulting to none
func ParseGroupBy(raw string) GroupBy {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(raw))); g {
	case GroupTeam, GroupCompany, GroupRole:
		return g
	default:
		return GroupNone
	}
}

// NodeKind distinguishes the root, people and synthetic group nodes
type NodeKind string

const (
	NodeRoot   NodeKind = "root"
	NodePerson NodeKind = "person"
	NodeGroup  NodeKind = "group"
)

// Node is a renderable node
type Node struct {
	ID       string                `json:"id"`
	Label    string                `json:"label"`
	Kind     NodeKind              `json:"kind"`
	Strength valueobjects.Strength `json:"strength,omitempty"`
	Rank     int                   `json:"rank,omitempty"`
	Radius   float64               `json:"radius"`
	Color    string                `json:"color"`
	Position valueobjects.Position `json:"position"`
	Dimmed   bool                  `json:"dimmed"`
}

// SceneEdge is a renderable edge between scene nodes
type SceneEdge struct {
	Source      string                 `json:"source"`
	Target      string                 `json:"target"`
	Kind        aggregates.EdgeKind    `json:"kind"`
	StrokeWidth float64                `json:"strokeWidth"`
	StrokeStyle aggregates.StrokeStyle `json:"strokeStyle"`
	Highlighted bool                   `json:"highlighted"`
	Dimmed      bool                   `json:"dimmed"`
}

// SceneOptions are the view inputs of a scene
type SceneOptions struct {
	ViewMode   aggregates.ViewMode
	GroupBy    GroupBy
	SelectedID valueobjects.PersonID
}

// Scene is the node and edge set handed to a layout strategy
type Scene struct {
	Nodes       []Node                     `json:"nodes"`
	Edges       []SceneEdge                `json:"edges"`
	Path        *aggregates.ConnectionPath `json:"path,omitempty"`
	PathNodeIDs []string                   `json:"pathNodeIds,omitempty"`
	// Camera frames the positioned nodes in the requested viewport
	Camera *Camera `json:"camera,omitempty"`
	// Ticks is the number of force steps run to position the scene
	Ticks int `json:"ticks,omitempty"`
}

// GroupNodeID is the id of the synthetic node for a group value
func GroupNodeID(field GroupBy, value string) string {
	return "group:" + string(field) + ":" + value
}

// BuildScene derives nodes and edges for a view. The root comes first,
// people follow in collection order, then group nodes in first-seen order.
// A selected person reconstructs its path and dims everything off it.
func BuildScene(net *aggregates.Network, opts SceneOptions) Scene {
	scene := Scene{Nodes: []Node{}, Edges: []SceneEdge{}}
	if net == nil || net.IsEmpty() {
		return scene
	}
	cfg := net.Config()

	scene.Nodes = append(scene.Nodes, Node{
		ID:     net.RootID().String(),
		Label:  net.RootName(),
		Kind:   NodeRoot,
		Radius: cfg.RootNodeRadius,
		Color:  RootColor,
	})

	people := net.People()
	for _, p := range people {
		s := p.Strength()
		scene.Nodes = append(scene.Nodes, Node{
			ID:       p.ID().String(),
			Label:    p.Name(),
			Kind:     NodePerson,
			Strength: s,
			Rank:     valueobjects.Rank(s),
			Radius:   NodeRadius(s, cfg),
			Color:    NodeColor(s),
		})
	}

	for _, e := range net.BuildEdges(opts.ViewMode) {
		scene.Edges = append(scene.Edges, SceneEdge{
			Source:      e.Source.String(),
			Target:      e.Target.String(),
			Kind:        e.Kind,
			StrokeWidth: e.StrokeWidth,
			StrokeStyle: e.StrokeStyle,
		})
	}

	if opts.GroupBy != "" && opts.GroupBy != GroupNone {
		seen := make(map[string]bool)
		for _, p := range people {
			value := p.GroupValue(string(opts.GroupBy))
			if value == "" {
				continue
			}
			gid := GroupNodeID(opts.GroupBy, value)
			if !seen[gid] {
				seen[gid] = true
				scene.Nodes = append(scene.Nodes, Node{
					ID:     gid,
					Label:  value,
					Kind:   NodeGroup,
					Radius: cfg.GroupNodeRadius,
					Color:  GroupColor,
				})
			}
			scene.Edges = append(scene.Edges, SceneEdge{
				Source:      p.ID().String(),
				Target:      gid,
				Kind:        aggregates.EdgeGroup,
				StrokeWidth: cfg.BaseStrokeWidth,
				StrokeStyle: aggregates.StyleFor(aggregates.EdgeGroup),
			})
		}
	}

	if !opts.SelectedID.IsZero() {
		if path, err := net.ReconstructPath(opts.SelectedID); err == nil {
			highlight(&scene, path)
		}
	}

	return scene
}

func highlight(scene *Scene, path aggregates.ConnectionPath) {
	onPath := aggregates.PathNodeIDs(path)
	scene.Path = &path
	scene.PathNodeIDs = make([]string, 0, len(path.IDs))
	for _, id := range path.IDs {
		scene.PathNodeIDs = append(scene.PathNodeIDs, id.String())
	}

	for i := range scene.Nodes {
		id, err := valueobjects.NewPersonIDFromString(scene.Nodes[i].ID)
		if err != nil {
			continue
		}
		_, ok := onPath[id]
		scene.Nodes[i].Dimmed = !ok
	}

	for i := range scene.Edges {
		e := &scene.Edges[i]
		edge := aggregates.Edge{
			Source: valueobjects.MustPersonID(e.Source),
			Target: valueobjects.MustPersonID(e.Target),
		}
		e.Highlighted = aggregates.OnPath(path, edge)
		e.Dimmed = !e.Highlighted
	}
}
