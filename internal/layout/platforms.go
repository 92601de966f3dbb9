package layout

import (
	"math"
	"strings"

	"github.com/soyeahso/meshbuilder/internal/domain"
)

// PlatformNode is a positioned platform.
type PlatformNode struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Logo  string  `json:"logoUrl,omitempty"`
	Angle float64 `json:"angle"`
	Pos   Point   `json:"pos"`
}

// PlacePlatforms spaces platforms evenly around the ellipse, starting at the top.
func PlacePlatforms(platforms []domain.Platform, e Ellipse) []PlatformNode {
	nodes := make([]PlatformNode, 0, len(platforms))
	for i, p := range platforms {
		angle := slotAngle(i, len(platforms))
		nodes = append(nodes, PlatformNode{
			ID:    p.ID,
			Name:  p.Name,
			Logo:  p.Logo(),
			Angle: angle,
			Pos: e.Center.Add(Point{
				X: e.RX * math.Cos(angle),
				Y: e.RY * math.Sin(angle),
			}),
		})
	}
	return nodes
}

// platformIndex resolves platform references by id, exact name, or
// lowercase name, in that order.
type platformIndex map[string]PlatformNode

func indexPlatforms(nodes []PlatformNode) platformIndex {
	idx := make(platformIndex, len(nodes)*3)
	for _, n := range nodes {
		idx[n.ID] = n
	}
	for _, n := range nodes {
		if _, ok := idx[n.Name]; !ok {
			idx[n.Name] = n
		}
		lower := strings.ToLower(n.Name)
		if _, ok := idx[lower]; !ok {
			idx[lower] = n
		}
	}
	return idx
}

func (idx platformIndex) lookup(ref string) (PlatformNode, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return PlatformNode{}, false
	}
	if n, ok := idx[ref]; ok {
		return n, true
	}
	n, ok := idx[strings.ToLower(ref)]
	return n, ok
}
