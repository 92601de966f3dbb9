package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func platforms(names ...string) []domain.Platform {
	out := make([]domain.Platform, len(names))
	for i, n := range names {
		out[i] = domain.Platform{ID: fmt.Sprintf("p%d", i), Name: n}
	}
	return out
}

func resolved(id string, names ...string) domain.Agent {
	return domain.Agent{ID: id, Key: domain.AgentKey(names), Solutions: names, AgentName: id, Status: domain.AgentResolved}
}

func TestNewEllipse(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	assert.Equal(t, Point{480, 300}, e.Center)
	assert.InDelta(t, 400.8, e.RX, eps)
	assert.InDelta(t, 213.6, e.RY, eps)

	for _, vp := range []Viewport{{}, {Width: -50, Height: -10}, {Width: 120, Height: 90}} {
		e := NewEllipse(vp)
		assert.Equal(t, Point{200, 180}, e.Center, "%v", vp)
		assert.InDelta(t, NodeRadius*5.6, e.RX, eps)
		assert.InDelta(t, NodeRadius*4.5, e.RY, eps)
	}
}

func TestClamp(t *testing.T) {
	e := NewEllipse(DefaultViewport)

	inside := Point{500, 310}
	assert.Equal(t, inside, Clamp(inside, e, NodeRadius))

	far := Point{5000, -3000}
	got := Clamp(far, e, NodeRadius)
	assert.LessOrEqual(t, e.Norm(got), 1.0)

	// direction from the center is preserved
	want := math.Atan2(far.Y-e.Center.Y, far.X-e.Center.X)
	assert.InDelta(t, want, math.Atan2(got.Y-e.Center.Y, got.X-e.Center.X), 1e-9)

	// padding never shrinks the ellipse below its floor
	small := NewEllipse(Viewport{})
	p := Clamp(Point{small.Center.X + 1000, small.Center.Y}, small, 500)
	assert.InDelta(t, small.Center.X+NodeRadius*2.8*ClampSafety, p.X, 1e-9)
}

func TestPlatformsLieOnEllipse(t *testing.T) {
	for _, vp := range []Viewport{DefaultViewport, {}, {Width: 1920, Height: 1080}, {Width: 420, Height: 900}} {
		e := NewEllipse(vp)
		for n := 1; n <= 12; n++ {
			names := make([]string, n)
			for i := range names {
				names[i] = fmt.Sprintf("Platform %d", i)
			}
			for _, node := range PlacePlatforms(platforms(names...), e) {
				assert.InDelta(t, 1.0, e.Norm(node.Pos), 1e-9, "vp=%v n=%d %s", vp, n, node.Name)
			}
		}
	}
}

func TestFirstPlatformAtTop(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := PlacePlatforms(platforms("SAP", "Slack", "Jira", "Workday"), e)
	require.Len(t, nodes, 4)
	assert.InDelta(t, e.Center.X, nodes[0].Pos.X, eps)
	assert.InDelta(t, e.Center.Y-e.RY, nodes[0].Pos.Y, eps)
	assert.InDelta(t, e.Center.X+e.RX, nodes[1].Pos.X, eps)
	assert.InDelta(t, e.Center.Y+e.RY, nodes[2].Pos.Y, eps)
}

func TestPlaceAgentsTowardAnchors(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := PlacePlatforms(platforms("SAP", "Slack", "Jira", "Workday"), e)

	agents := PlaceAgents([]domain.Agent{resolved("a1", "SAP", "slack")}, nodes, e)
	require.Len(t, agents, 1)
	a := agents[0]
	assert.Equal(t, []string{"p0", "p1"}, a.Anchors)
	assert.Greater(t, a.Pos.X, e.Center.X, "toward Slack on the right")
	assert.Less(t, a.Pos.Y, e.Center.Y, "toward SAP at the top")
	assert.LessOrEqual(t, e.Norm(a.Pos), 1.0)
}

func TestPlaceAgentsBalancedAnchorsUseFallbackSlot(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := PlacePlatforms(platforms("SAP", "Slack", "Jira", "Workday"), e)

	// SAP (top) and Jira (bottom) cancel out around the center
	agents := PlaceAgents([]domain.Agent{resolved("a1", "SAP", "Jira")}, nodes, e)
	require.Len(t, agents, 1)
	assert.InDelta(t, e.Center.X, agents[0].Pos.X, 1e-6)
	assert.Less(t, agents[0].Pos.Y, e.Center.Y)
}

func TestPlaceAgentsWithoutAnchors(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := PlacePlatforms(platforms("SAP", "Slack"), e)

	agents := PlaceAgents([]domain.Agent{
		resolved("a1", "Unknown", "Other"),
		resolved("a2", "Missing", "Gone"),
	}, nodes, e)
	require.Len(t, agents, 2)
	assert.Empty(t, agents[0].Anchors)
	for _, a := range agents {
		assert.LessOrEqual(t, e.Norm(a.Pos), 1.0)
	}
	// two slots: top and bottom
	assert.Less(t, agents[0].Pos.Y, e.Center.Y)
	assert.Greater(t, agents[1].Pos.Y, e.Center.Y)
}

func assertSeparatedOrCapped(t *testing.T, nodes []AgentNode, settled bool) {
	t.Helper()
	if !settled {
		return
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			assert.GreaterOrEqual(t, nodes[i].Pos.Dist(nodes[j].Pos), AgentSeparation-separationSlack,
				"%s vs %s", nodes[i].ID, nodes[j].ID)
		}
	}
}

func TestResolveCollisionsCoincident(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	for n := 2; n <= 10; n++ {
		nodes := make([]AgentNode, n)
		for i := range nodes {
			nodes[i] = AgentNode{ID: fmt.Sprintf("a%d", i), Pos: e.Center}
		}
		got, settled := ResolveCollisions(nodes, e)
		require.Len(t, got, n)
		assertSeparatedOrCapped(t, got, settled)
		for _, node := range got {
			assert.LessOrEqual(t, e.Norm(node.Pos), 1.0)
		}
		// input is not mutated
		assert.Equal(t, e.Center, nodes[0].Pos)
	}
}

func TestResolveCollisionsSeparatedUntouched(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := []AgentNode{
		{ID: "a", Pos: Point{300, 300}},
		{ID: "b", Pos: Point{600, 300}},
	}
	got, settled := ResolveCollisions(nodes, e)
	assert.True(t, settled)
	assert.Equal(t, nodes, got)
}

func TestResolveCollisionsPair(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := []AgentNode{
		{ID: "a", Pos: Point{470, 300}},
		{ID: "b", Pos: Point{490, 300}},
	}
	got, settled := ResolveCollisions(nodes, e)
	require.True(t, settled)
	assert.InDelta(t, AgentSeparation, got[0].Pos.Dist(got[1].Pos), 1e-9)
	assert.InDelta(t, e.Center.X, (got[0].Pos.X+got[1].Pos.X)/2, 1e-9)
}

func TestResolveCollisionsSettledOnLastPass(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	nodes := []AgentNode{
		{ID: "a", Pos: Point{470, 300}},
		{ID: "b", Pos: Point{490, 300}},
	}

	// one pass separates the pair, leaving no room for a clean pass after it
	got, settled := resolveCollisions(nodes, e, 1)
	assert.True(t, settled)
	assert.InDelta(t, AgentSeparation, got[0].Pos.Dist(got[1].Pos), 1e-9)

	crowd := make([]AgentNode, 10)
	for i := range crowd {
		crowd[i] = AgentNode{ID: fmt.Sprintf("c%d", i), Pos: e.Center}
	}
	stacked, settled := resolveCollisions(crowd, e, 0)
	assert.False(t, settled)
	assert.Equal(t, crowd, stacked)
}

func TestComputeCollisionProperty(t *testing.T) {
	names := []string{"SAP", "Salesforce", "Slack", "Jira", "Workday", "Snowflake", "Oracle", "Zoom"}
	var agents []domain.Agent
	for i := 0; i < 10; i++ {
		a, b := names[i%len(names)], names[(i+1)%len(names)]
		agents = append(agents, resolved(fmt.Sprintf("a%d", i), a, b))
	}
	for _, vp := range []Viewport{DefaultViewport, {}, {Width: 1400, Height: 900}} {
		mesh := Compute(Input{Viewport: vp, Platforms: platforms(names...), Agents: agents})
		assertSeparatedOrCapped(t, mesh.Agents, mesh.Settled)
	}
}

func TestHeatmapIntensity(t *testing.T) {
	h := NewHeatmap([]domain.HeatmapEntry{
		{Pair: "SAP + Salesforce", Value: 80},
		{Pair: "Slack → Jira", Value: 5},
		{Pair: "Workday & Oracle", Value: 250},
		{Pair: "Zoom + Slack", Value: math.NaN()},
		{Pair: "   ", Value: 90},
	})

	assert.InDelta(t, 0.8, h.Intensity("Salesforce", "SAP"), eps)
	assert.InDelta(t, 0.2, h.Intensity("jira", "slack"), eps)
	assert.InDelta(t, 1.0, h.Intensity("Oracle", "Workday"), eps)
	assert.InDelta(t, 0.2, h.Intensity("Slack", "Zoom"), eps)
	assert.InDelta(t, 0.35, h.Intensity("SAP", "Zoom"), eps)
	assert.Len(t, h, 4)
}

func TestControlPoint(t *testing.T) {
	got := ControlPoint(Point{0, 0}, Point{100, 0}, Point{50, 100})
	assert.Equal(t, Point{50, 50}, got)
}

func TestBalancedSeeds(t *testing.T) {
	e := NewEllipse(DefaultViewport)
	place := func(names ...string) []PlatformNode { return PlacePlatforms(platforms(names...), e) }

	six := place("A", "B", "C", "D", "E", "F")
	assert.Equal(t, [][2]string{{"A", "D"}, {"C", "F"}, {"E", "B"}}, BalancedSeeds(six, SeedPairCount(len(six))))

	five := place("A", "B", "C", "D", "E")
	assert.Equal(t, [][2]string{{"A", "D"}, {"C", "B"}}, BalancedSeeds(five, SeedPairCount(len(five))))

	assert.Equal(t, [][2]string{{"A", "B"}}, BalancedSeeds(place("A", "B"), 2))
	assert.Nil(t, BalancedSeeds(place("A"), 2))
	assert.Nil(t, BalancedSeeds(place("A", "  "), 2))
}

func TestSeedPairCount(t *testing.T) {
	assert.Equal(t, 2, SeedPairCount(5))
	assert.Equal(t, 3, SeedPairCount(6))
	assert.Equal(t, 3, SeedPairCount(10))
}

func TestComputeEdges(t *testing.T) {
	pending := resolved("pending", "SAP", "Slack")
	pending.Status = domain.AgentPending

	in := Input{
		Viewport:  DefaultViewport,
		Platforms: platforms("SAP", "Slack", "Jira", "Workday", "Snowflake"),
		Agents: []domain.Agent{
			resolved("a1", "SAP", "Slack", "Jira"),
			resolved("a2", "Workday", "SAP"),
			pending,
		},
		Heatmap: []domain.HeatmapEntry{{Pair: "SAP + Workday", Value: 90}},
	}
	mesh := Compute(in)

	assert.Len(t, mesh.Platforms, 5)
	assert.Len(t, mesh.Agents, 3)
	assert.Len(t, mesh.Anchors, 3+2+2)
	require.Len(t, mesh.Flows, 3+1, "pending agents have no flows")

	var workday *Edge
	for i := range mesh.Flows {
		if mesh.Flows[i].AgentID == "a2" {
			workday = &mesh.Flows[i]
		}
	}
	require.NotNil(t, workday)
	assert.InDelta(t, 0.9, workday.Intensity, eps)
	assert.Equal(t, ControlPoint(workday.Start, workday.End, mesh.Ellipse.Center), workday.Control)

	assert.Equal(t, mesh, Compute(in), "layout is deterministic")
}

func TestComputeEmpty(t *testing.T) {
	mesh := Compute(Input{})
	assert.Empty(t, mesh.Platforms)
	assert.Empty(t, mesh.Agents)
	assert.True(t, mesh.Settled)
}
