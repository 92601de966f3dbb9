package layout

import "math"

// separationSlack absorbs floating-point error so a pair pushed to exactly
// AgentSeparation counts as separated.
const separationSlack = 1e-6

// ResolveCollisions pushes overlapping agent nodes apart. Each pass visits
// every pair closer than AgentSeparation and moves both nodes away from each
// other by half the overlap, re-clamping them into the ellipse. It stops
// after a pass with no adjustment or after MaxCollisionPasses passes. settled
// is false only when pairs still overlap after the last pass.
func ResolveCollisions(nodes []AgentNode, e Ellipse) (resolved []AgentNode, settled bool) {
	return resolveCollisions(nodes, e, MaxCollisionPasses)
}

func resolveCollisions(nodes []AgentNode, e Ellipse, passes int) (resolved []AgentNode, settled bool) {
	resolved = make([]AgentNode, len(nodes))
	copy(resolved, nodes)
	padding := NodeRadius * 0.4

	for pass := 0; pass < passes; pass++ {
		adjusted := false
		for i := 0; i < len(resolved); i++ {
			for j := i + 1; j < len(resolved); j++ {
				a, b := resolved[i].Pos, resolved[j].Pos
				d := b.Sub(a)
				dist := d.Len()
				if dist >= AgentSeparation-separationSlack {
					continue
				}
				var unit Point
				if dist < 1e-9 {
					// coincident nodes separate along a direction fixed by their indices
					unit = polar(float64(i*7+j)*math.Pi/5, 1)
				} else {
					unit = d.Scale(1 / dist)
				}
				push := (AgentSeparation - dist) / 2
				resolved[i].Pos = Clamp(a.Sub(unit.Scale(push)), e, padding)
				resolved[j].Pos = Clamp(b.Add(unit.Scale(push)), e, padding)
				adjusted = true
			}
		}
		if !adjusted {
			return resolved, true
		}
	}
	return resolved, !overlapping(resolved)
}

func overlapping(nodes []AgentNode) bool {
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Pos.Dist(nodes[j].Pos) < AgentSeparation-separationSlack {
				return true
			}
		}
	}
	return false
}
