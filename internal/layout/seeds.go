package layout

import (
	"slices"
	"strings"
)

// SeedPairCount is how many opening pairs to seed for n platforms.
func SeedPairCount(n int) int {
	if n >= 6 {
		return 3
	}
	return 2
}

// BalancedSeeds pairs platforms that sit roughly opposite each other on the
// ellipse, spreading up to maxPairs pairs around it. Each platform is used at
// most once. With fewer than two named platforms it returns nil.
func BalancedSeeds(nodes []PlatformNode, maxPairs int) [][2]string {
	sorted := make([]PlatformNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Name = strings.TrimSpace(n.Name); n.Name != "" {
			sorted = append(sorted, n)
		}
	}
	slices.SortStableFunc(sorted, func(a, b PlatformNode) int {
		switch {
		case a.Angle < b.Angle:
			return -1
		case a.Angle > b.Angle:
			return 1
		}
		return 0
	})

	total := len(sorted)
	if total < 2 {
		return nil
	}

	maxCombos := max(1, min(maxPairs, total/2))
	halfStep := (total + 1) / 2
	stride := max(1, total/maxCombos)
	used := make(map[string]bool, total)
	var pairs [][2]string

	for i := 0; i < total && len(pairs) < maxCombos; i += stride {
		first := sorted[i]
		if used[first.ID] {
			continue
		}
		for off := 0; off < total; off++ {
			cand := sorted[(i+halfStep+off)%total]
			if cand.ID == first.ID || used[cand.ID] {
				continue
			}
			pairs = append(pairs, [2]string{first.Name, cand.Name})
			used[first.ID] = true
			used[cand.ID] = true
			break
		}
	}

	if len(pairs) == 0 {
		pairs = append(pairs, [2]string{sorted[0].Name, sorted[1].Name})
	}
	return pairs
}
