package layout

import (
	"context"
	"math"
	"testing"

	"peoplenet/domain/config"
	"peoplenet/domain/core/aggregates"
	"peoplenet/domain/core/entities"
	"peoplenet/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPerson(t *testing.T, id, name string, conn entities.Connection, team string) *entities.Person {
	t.Helper()
	p, err := entities.ReconstructPerson(entities.PersonState{
		ID:         valueobjects.MustPersonID(id),
		UserID:     "user-123",
		Name:       name,
		Connection: conn,
		Profile:    entities.Profile{Team: team},
	})
	require.NoError(t, err)
	return p
}

func testNetwork(t *testing.T) *aggregates.Network {
	t.Helper()
	return aggregates.NewNetwork([]*entities.Person{
		testPerson(t, "alice", "Alice", entities.DirectConnection(valueobjects.StrengthStrong), "Platform"),
		testPerson(t, "bob", "Bob", entities.IntroducedBy(valueobjects.StrengthCasual, valueobjects.MustPersonID("alice")), "Platform"),
		testPerson(t, "cara", "Cara", entities.DirectConnection(valueobjects.StrengthFleeting), "Design"),
		testPerson(t, "dan", "Dan", entities.DirectConnection(valueobjects.StrengthCore), ""),
	}, nil)
}

func TestEncoding_Monotonic(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	prevRadius, prevColor := 0.0, -1
	for _, s := range valueobjects.AllStrengths() {
		r := NodeRadius(s, cfg)
		c := ColorIndex(s)
		assert.GreaterOrEqual(t, r, prevRadius)
		assert.GreaterOrEqual(t, c, prevColor)
		assert.Equal(t, Palette[c], NodeColor(s))
		prevRadius, prevColor = r, c
	}
	assert.Equal(t, NodeColor(valueobjects.StrengthCasual), NodeColor("unknown"))
}

func TestBuildScene_Empty(t *testing.T) {
	scene := BuildScene(aggregates.NewNetwork(nil, nil), SceneOptions{ViewMode: aggregates.ViewAll})

	assert.Empty(t, scene.Nodes)
	assert.Empty(t, scene.Edges)
}

func TestBuildScene_Nodes(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})

	require.Len(t, scene.Nodes, 5)
	assert.Equal(t, NodeRoot, scene.Nodes[0].Kind)
	assert.Equal(t, "You", scene.Nodes[0].Label)
	assert.Equal(t, "alice", scene.Nodes[1].ID)
	assert.Equal(t, 5, scene.Nodes[1].Rank)
	assert.Len(t, scene.Edges, 4)
	assert.Nil(t, scene.Path)
}

func TestBuildScene_GroupBy(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll, GroupBy: GroupTeam})

	groups := []string{}
	for _, n := range scene.Nodes {
		if n.Kind == NodeGroup {
			groups = append(groups, n.ID)
		}
	}
	assert.Equal(t, []string{"group:team:Platform", "group:team:Design"}, groups)

	groupEdges := 0
	for _, e := range scene.Edges {
		if e.Kind == aggregates.EdgeGroup {
			groupEdges++
			assert.Equal(t, aggregates.StrokeDashed, e.StrokeStyle)
		}
	}
	assert.Equal(t, 3, groupEdges)
}

func TestBuildScene_SelectedDimsOffPath(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{
		ViewMode:   aggregates.ViewAll,
		SelectedID: valueobjects.MustPersonID("bob"),
	})

	require.NotNil(t, scene.Path)
	assert.Equal(t, []string{"You", "Alice", "Bob"}, scene.Path.Chain)
	assert.Equal(t, []string{"you", "alice", "bob"}, scene.PathNodeIDs)

	dimmed := map[string]bool{}
	for _, n := range scene.Nodes {
		dimmed[n.ID] = n.Dimmed
	}
	assert.False(t, dimmed["you"])
	assert.False(t, dimmed["bob"])
	assert.True(t, dimmed["cara"])

	highlighted := 0
	for _, e := range scene.Edges {
		if e.Highlighted {
			highlighted++
		}
	}
	assert.Equal(t, 2, highlighted)
}

func TestCircular(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})

	first := Circular(scene.Nodes, 800, 600, 200)
	second := Circular(scene.Nodes, 800, 600, 200)

	assert.Equal(t, first, second)
	assert.Equal(t, valueobjects.NewPosition(400, 300), first[0].Position)
	assert.InDelta(t, 600, first[1].Position.X, 1e-9)
	assert.InDelta(t, 300, first[1].Position.Y, 1e-9)
	for _, n := range first[1:] {
		assert.InDelta(t, 200, n.Position.DistanceTo(first[0].Position), 1e-9)
	}
	assert.Equal(t, valueobjects.Position{}, scene.Nodes[1].Position, "input not modified")
}

func TestStep_Pure(t *testing.T) {
	nodes := []SimNode{{ID: "a", X: 0, Y: 0, Radius: 5}, {ID: "b", X: 10, Y: 0, Radius: 5}}
	p := ParamsFromConfig(config.DefaultDomainConfig(), 0, 0)

	out := Step(nodes, []Link{{Source: 0, Target: 1}}, p, 1, 1)

	assert.Equal(t, 0.0, nodes[0].X)
	assert.NotEqual(t, nodes[0].X, out[0].X)
	assert.Less(t, out[0].X, out[1].X)
}

func TestSimulation_Deterministic(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	cfg := config.DefaultDomainConfig()

	a := NewSimulation(scene, 800, 600, cfg)
	b := NewSimulation(scene, 800, 600, cfg)
	_, err := a.Run(context.Background(), 50)
	require.NoError(t, err)
	_, err = b.Run(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, a.Positions(), b.Positions())
}

func TestSimulation_CoolsAndStops(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)

	ticks, err := sim.Run(context.Background(), 0)

	require.NoError(t, err)
	assert.True(t, sim.Stopped())
	assert.Less(t, sim.Alpha(), config.DefaultDomainConfig().AlphaMin)
	assert.Greater(t, ticks, 100)
	assert.Equal(t, sim.Ticks(), ticks, "the cooling step is counted")
	assert.False(t, sim.Tick())
	assert.Equal(t, ticks, sim.Ticks())

	sim.Restart(0.5)
	assert.False(t, sim.Stopped())
	assert.True(t, sim.Tick())
}

func TestSimulation_EnergyDecays(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)

	speed := func() float64 {
		total := 0.0
		for _, n := range sim.Nodes() {
			total += math.Hypot(n.VX, n.VY)
		}
		return total
	}

	_, err := sim.Run(context.Background(), 20)
	require.NoError(t, err)
	early := speed()
	_, err = sim.Run(context.Background(), 250)
	require.NoError(t, err)

	assert.Less(t, speed(), early)
}

func TestSimulation_PinAndRelease(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)
	pin := valueobjects.NewPosition(42, 24)

	require.NoError(t, sim.Pin("alice", pin))
	_, err := sim.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, pin, sim.Positions()["alice"])

	sim.Release("alice")
	sim.Restart(1)
	_, err = sim.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.NotEqual(t, pin, sim.Positions()["alice"])

	assert.Error(t, sim.Pin("nobody", pin))
}

func TestSimulation_Drag(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)
	_, err := sim.Run(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, sim.Stopped())

	require.NoError(t, sim.DragStart("bob"))
	assert.False(t, sim.Stopped())
	require.NoError(t, sim.DragTo("bob", valueobjects.NewPosition(10, 10)))
	for i := 0; i < 20; i++ {
		sim.Tick()
	}
	assert.Equal(t, valueobjects.NewPosition(10, 10), sim.Positions()["bob"])

	sim.DragEnd("bob", false)
	_, err = sim.Run(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.NewPosition(10, 10), sim.Positions()["bob"])
}

func TestSimulation_RunHonorsContext(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticks, err := sim.Run(ctx, 100)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ticks)
}

func TestSimulation_SetGraphKeepsPositions(t *testing.T) {
	net := testNetwork(t)
	scene := BuildScene(net, SceneOptions{ViewMode: aggregates.ViewAll})
	sim := NewSimulation(scene, 800, 600, nil)
	_, err := sim.Run(context.Background(), 30)
	require.NoError(t, err)
	before := sim.Positions()

	grouped := BuildScene(net, SceneOptions{ViewMode: aggregates.ViewAll, GroupBy: GroupTeam})
	sim.SetGraph(grouped)

	after := sim.Positions()
	assert.Equal(t, before["alice"], after["alice"])
	assert.Contains(t, after, "group:team:Platform")
	assert.Equal(t, 1.0, sim.Alpha())
}

func TestCamera(t *testing.T) {
	cam := NewCamera(0.5, 4)
	cam.Pan(30, -20)
	cam.ZoomAt(2, valueobjects.NewPosition(100, 100))

	p := valueobjects.NewPosition(12.5, -7)
	back := cam.ToWorld(cam.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	anchor := valueobjects.NewPosition(250, 80)
	world := cam.ToWorld(anchor)
	cam.ZoomAt(1.5, anchor)
	after := cam.ToScreen(world)
	assert.InDelta(t, anchor.X, after.X, 1e-9)
	assert.InDelta(t, anchor.Y, after.Y, 1e-9)

	cam.ZoomAt(100, anchor)
	assert.Equal(t, 4.0, cam.K)
	cam.ZoomAt(0.0001, anchor)
	assert.Equal(t, 0.5, cam.K)
}

func TestPosition_Strategy(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})

	circ, err := Position(context.Background(), scene, Options{Strategy: ParseStrategy("circular")}, nil)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.NewPosition(480, 360), circ.Nodes[0].Position)

	forced, err := Position(context.Background(), scene, Options{Strategy: StrategyForce, Ticks: 5000}, nil)
	require.NoError(t, err)
	for _, n := range forced.Nodes {
		assert.False(t, math.IsNaN(n.Position.X))
	}
}

func TestPosition_FramesScene(t *testing.T) {
	scene := BuildScene(testNetwork(t), SceneOptions{ViewMode: aggregates.ViewAll})
	cfg := config.DefaultDomainConfig()

	forced, err := Position(context.Background(), scene, Options{Strategy: StrategyForce, Width: 400, Height: 300}, cfg)
	require.NoError(t, err)

	assert.Greater(t, forced.Ticks, 0)
	assert.LessOrEqual(t, forced.Ticks, cfg.DefaultTicks)
	require.NotNil(t, forced.Camera)
	for _, n := range forced.Nodes {
		p := forced.Camera.ToScreen(n.Position)
		assert.GreaterOrEqual(t, p.X, 0.0, n.ID)
		assert.LessOrEqual(t, p.X, 400.0, n.ID)
		assert.GreaterOrEqual(t, p.Y, 0.0, n.ID)
		assert.LessOrEqual(t, p.Y, 300.0, n.ID)
	}
}

func TestCamera_FitDoesNotMagnify(t *testing.T) {
	cam := NewCamera(0.1, 8)
	nodes := []Node{{Position: valueobjects.NewPosition(10, 10), Radius: 5}}

	cam.Fit(nodes, 800, 600, 40)

	assert.Equal(t, 1.0, cam.K)
	assert.Equal(t, valueobjects.NewPosition(400, 300), cam.ToScreen(nodes[0].Position))
}
