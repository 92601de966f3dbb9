package layout

import (
	"math"

	"github.com/soyeahso/meshbuilder/internal/domain"
)

// AgentNode is a positioned agent.
type AgentNode struct {
	ID      string   `json:"id"`
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Anchors []string `json:"anchors"`
	Pos     Point    `json:"pos"`
	Pending bool     `json:"pending"`
	Vendor  bool     `json:"vendor,omitempty"`
}

// PlaceAgents positions each agent on the ray from the center through the
// centroid of its anchor platforms, inside the ring of platforms. Agents
// without resolvable anchors, or whose anchors balance out around the
// center, take an evenly spaced slot by index.
func PlaceAgents(agents []domain.Agent, platforms []PlatformNode, e Ellipse) []AgentNode {
	idx := indexPlatforms(platforms)
	inner := math.Max(math.Min(e.RX, e.RY)*0.58, NodeRadius*3.2)
	total := max(len(agents), 1)

	nodes := make([]AgentNode, 0, len(agents))
	for i, a := range agents {
		fallback := polar(slotAngle(i, total), 1)

		var anchors []PlatformNode
		for _, name := range a.Solutions {
			if p, ok := idx.lookup(name); ok {
				anchors = append(anchors, p)
			}
		}

		node := AgentNode{
			ID:      a.ID,
			Key:     a.Key,
			Name:    a.AgentName,
			Anchors: make([]string, 0, len(anchors)),
			Pending: a.IsPending(),
			Vendor:  a.Vendor,
		}
		for _, p := range anchors {
			node.Anchors = append(node.Anchors, p.ID)
		}

		if len(anchors) == 0 {
			node.Pos = Clamp(e.Center.Add(fallback.Scale(inner)), e, NodeRadius)
			nodes = append(nodes, node)
			continue
		}

		var centroid Point
		for _, p := range anchors {
			centroid = centroid.Add(p.Pos)
		}
		centroid = centroid.Scale(1 / float64(len(anchors)))

		dir := centroid.Sub(e.Center)
		mag := dir.Len()
		if mag < NodeRadius*1.2 {
			dir, mag = fallback, 1
		}
		unit := dir.Scale(1 / mag)

		desired := math.Min(inner, mag-NodeRadius*0.3)
		radius := inner * 0.72
		if desired > NodeRadius*1.8 {
			radius = desired
		}
		node.Pos = Clamp(e.Center.Add(unit.Scale(radius)), e, NodeRadius)
		nodes = append(nodes, node)
	}
	return nodes
}
