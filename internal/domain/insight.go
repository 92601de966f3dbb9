package domain

import "time"

// Priorities are the inferred strategic priorities for a company.
type Priorities struct {
	Priorities []string `json:"priorities"`
	Summary    string   `json:"summary"`
	Error      string   `json:"error,omitempty"`
}

// HeatmapEntry scores the strategic impact of connecting a pair of platforms.
type HeatmapEntry struct {
	Pair      string  `json:"pair"`
	Value     float64 `json:"value"`
	Rationale string  `json:"rationale"`
}

// EnterpriseContext is the supporting narrative for a company's mesh.
type EnterpriseContext struct {
	SynergyInsights     []string       `json:"synergyInsights"`
	IndustryComparisons []string       `json:"industryComparisons"`
	PriorityHeatmap     []HeatmapEntry `json:"priorityHeatmap"`
	Error               string         `json:"error,omitempty"`
}

// EmptyContext returns a context with non-nil, empty collections.
func EmptyContext() EnterpriseContext {
	return EnterpriseContext{
		SynergyInsights:     []string{},
		IndustryComparisons: []string{},
		PriorityHeatmap:     []HeatmapEntry{},
	}
}

// Discovery is everything learned about a company in one search.
type Discovery struct {
	Company    string            `json:"company"`
	Solutions  []Solution        `json:"solutions"`
	Priorities Priorities        `json:"priorities"`
	Context    EnterpriseContext `json:"context"`
	FetchedAt  time.Time         `json:"-"`
}
