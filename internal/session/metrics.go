package session

import (
	"math"
	"regexp"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/soyeahso/meshbuilder/internal/config"
)

// DefaultMessagesPerAgent is the yearly event volume assumed per agent.
const DefaultMessagesPerAgent = config.DefaultMessagesPerAgent

type valueLever struct {
	label string
	re    *regexp.Regexp
}

var valueLevers = []valueLever{
	{"Customer Experience Gains", regexp.MustCompile(`(?i)(customer|experience|service|engagement|journey)`)},
	{"Operational Efficiency", regexp.MustCompile(`(?i)(operation|process|automation|latency|throughput|workflow)`)},
	{"Revenue Intelligence", regexp.MustCompile(`(?i)(revenue|sales|pipeline|forecast|upsell|quote)`)},
	{"Compliance & Resilience", regexp.MustCompile(`(?i)(compliance|risk|resilien|audit|governance)`)},
}

var defaultLevers = []string{"Faster cross-platform orchestration", "Improved decision latency"}

// Metrics summarize the value of the confirmed agents.
type Metrics struct {
	TotalAgents       int      `json:"totalAgents"`
	UniquePlatforms   int      `json:"uniquePlatforms"`
	Messages          int64    `json:"messages"`
	FormattedMessages string   `json:"formattedMessages"`
	ValueLevers       []string `json:"valueLevers"`
	Benefits          []string `json:"benefits"`
	MeshScore         int      `json:"meshScore"`
}

// ComputeMetrics derives the mesh metrics from the finished agents in s.
func ComputeMetrics(s State, messagesPerAgent int64) Metrics {
	agents := s.ResolvedAgents()

	platforms := make(map[string]bool)
	benefits := make([]string, 0, 3)
	counts := make([]int, len(valueLevers))
	for _, a := range agents {
		for _, name := range a.Solutions {
			platforms[name] = true
		}
		if a.Description != "" && len(benefits) < 3 {
			benefits = append(benefits, a.Description)
		}
		corpus := a.Description + " " + a.DraftPrompt
		for i, v := range valueLevers {
			if v.re.MatchString(corpus) {
				counts[i]++
			}
		}
	}

	order := make([]int, 0, len(valueLevers))
	for i, n := range counts {
		if n > 0 {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int { return counts[b] - counts[a] })
	levers := make([]string, 0, 3)
	for _, i := range order {
		if len(levers) == 3 {
			break
		}
		levers = append(levers, valueLevers[i].label)
	}
	if len(levers) == 0 {
		levers = append(levers, defaultLevers...)
	}

	score := 14*len(agents) + 6*len(platforms) + 5*len(s.Context.PriorityHeatmap)
	messages := int64(len(agents)) * messagesPerAgent

	return Metrics{
		TotalAgents:       len(agents),
		UniquePlatforms:   len(platforms),
		Messages:          messages,
		FormattedMessages: humanize.Comma(messages),
		ValueLevers:       levers,
		Benefits:          benefits,
		MeshScore:         int(math.Max(5, math.Min(100, float64(score)))),
	}
}
