package layout

import "github.com/soyeahso/meshbuilder/internal/domain"

// Input is everything the layout depends on.
type Input struct {
	Viewport  Viewport
	Platforms []domain.Platform
	Agents    []domain.Agent
	Heatmap   []domain.HeatmapEntry
}

// Mesh is a fully computed layout.
type Mesh struct {
	Viewport  Viewport       `json:"viewport"`
	Ellipse   Ellipse        `json:"ellipse"`
	Platforms []PlatformNode `json:"platforms"`
	Agents    []AgentNode    `json:"agents"`
	Anchors   []Edge         `json:"anchors"`
	Flows     []Edge         `json:"flows"`
	// Settled is false when collision resolution hit its pass limit.
	Settled bool `json:"settled"`
}

// Compute lays out the whole mesh.
func Compute(in Input) Mesh {
	e := NewEllipse(in.Viewport)
	platforms := PlacePlatforms(in.Platforms, e)
	idx := indexPlatforms(platforms)

	agents, settled := ResolveCollisions(PlaceAgents(in.Agents, platforms, e), e)

	return Mesh{
		Viewport:  in.Viewport,
		Ellipse:   e,
		Platforms: platforms,
		Agents:    agents,
		Anchors:   anchorEdges(agents, idx, e.Center),
		Flows:     flowEdges(in.Agents, idx, NewHeatmap(in.Heatmap), e.Center),
		Settled:   settled,
	}
}
