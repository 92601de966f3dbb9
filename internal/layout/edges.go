package layout

import (
	"math"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/extract"
)

const (
	minIntensity     = 0.2
	defaultIntensity = 0.35
)

// EdgeKind distinguishes agent-to-platform anchors from platform message flows.
type EdgeKind string

const (
	EdgeAnchor EdgeKind = "anchor"
	EdgeFlow   EdgeKind = "flow"
)

// Edge is a quadratic curve between two nodes.
type Edge struct {
	ID        string   `json:"id"`
	Kind      EdgeKind `json:"kind"`
	AgentID   string   `json:"agentId"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Start     Point    `json:"start"`
	Control   Point    `json:"control"`
	End       Point    `json:"end"`
	Intensity float64  `json:"intensity,omitempty"`
}

// ControlPoint bends an edge toward the mesh center: it is the midpoint of
// the edge midpoint and center.
func ControlPoint(a, b, center Point) Point {
	return midpoint(midpoint(a, b), center)
}

// Heatmap maps canonical platform pairs to impact scores in [0, 100].
type Heatmap map[string]float64

// NewHeatmap indexes entries by canonical pair. Entries with an empty pair
// are skipped; non-finite values count as 0.
func NewHeatmap(entries []domain.HeatmapEntry) Heatmap {
	h := make(Heatmap, len(entries))
	for _, e := range entries {
		key := domain.CanonicalPair(e.Pair)
		if key == "" {
			continue
		}
		v := e.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		h[key] = extract.Clamp(v, 0, 100)
	}
	return h
}

// Intensity is the visual weight of the edge between two platforms:
// value/100 bounded to [0.2, 1], or 0.35 when the pair has no entry.
func (h Heatmap) Intensity(a, b string) float64 {
	v, ok := h[domain.PairKey(a, b)]
	if !ok {
		return defaultIntensity
	}
	return extract.Clamp(v/100, minIntensity, 1)
}

func anchorEdges(agents []AgentNode, idx platformIndex, center Point) []Edge {
	var edges []Edge
	for _, a := range agents {
		for _, id := range a.Anchors {
			p := idx[id]
			edges = append(edges, Edge{
				ID:      a.ID + ">" + id,
				Kind:    EdgeAnchor,
				AgentID: a.ID,
				From:    a.ID,
				To:      id,
				Start:   a.Pos,
				Control: ControlPoint(a.Pos, p.Pos, center),
				End:     p.Pos,
			})
		}
	}
	return edges
}

// flowEdges connects every platform pair of each resolved agent, once per
// agent and pair.
func flowEdges(agents []domain.Agent, idx platformIndex, heat Heatmap, center Point) []Edge {
	var edges []Edge
	seen := make(map[string]bool)
	for _, a := range agents {
		if a.IsPending() || len(a.Solutions) < 2 {
			continue
		}
		for i := 0; i < len(a.Solutions); i++ {
			for j := i + 1; j < len(a.Solutions); j++ {
				src, ok1 := idx.lookup(a.Solutions[i])
				dst, ok2 := idx.lookup(a.Solutions[j])
				if !ok1 || !ok2 || src.ID == dst.ID {
					continue
				}
				id := a.ID + "-" + domain.PairKey(src.Name, dst.Name)
				if seen[id] {
					continue
				}
				seen[id] = true
				edges = append(edges, Edge{
					ID:        id,
					Kind:      EdgeFlow,
					AgentID:   a.ID,
					From:      src.ID,
					To:        dst.ID,
					Start:     src.Pos,
					Control:   ControlPoint(src.Pos, dst.Pos, center),
					End:       dst.Pos,
					Intensity: heat.Intensity(src.Name, dst.Name),
				})
			}
		}
	}
	return edges
}
