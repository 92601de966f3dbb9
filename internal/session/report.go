package session

import (
	"fmt"
	"regexp"
	"strings"
)

var fileNameSpace = regexp.MustCompile(`\s+`)

// ReportTitle is the heading of the analysis report.
func ReportTitle(company string) string {
	if company == "" {
		return "Solace Agent Mesh Analysis"
	}
	return "Solace Agent Mesh Analysis for " + company
}

// ReportFileName is the suggested file name for the report of company.
func ReportFileName(company string) string {
	if company == "" {
		return "solace-agent-mesh-analysis.md"
	}
	return "solace-agent-mesh-" + strings.ToLower(fileNameSpace.ReplaceAllString(company, "-")) + ".md"
}

// Report renders the analysis summary of s as Markdown.
func Report(s State, m Metrics) string {
	var b strings.Builder
	section := func(title string) {
		fmt.Fprintf(&b, "\n## %s\n\n", title)
	}
	bullet := func(format string, args ...any) {
		b.WriteString("- ")
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "# %s\n", ReportTitle(s.Company))

	if p := strings.TrimSpace(s.Priorities); p != "" {
		section("Regional Priorities")
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if len(s.Context.SynergyInsights) > 0 {
		section("Synergy Agents to Spotlight")
		for _, item := range s.Context.SynergyInsights {
			bullet("%s", item)
		}
	}
	if len(s.Context.IndustryComparisons) > 0 {
		section("Industry Benchmarks")
		for _, item := range s.Context.IndustryComparisons {
			bullet("%s", item)
		}
	}
	if len(s.Context.PriorityHeatmap) > 0 {
		section("Priority Heatmap (Strategic Impact)")
		for _, e := range s.Context.PriorityHeatmap {
			if e.Rationale == "" {
				bullet("%s: %g/100", e.Pair, e.Value)
				continue
			}
			bullet("%s: %g/100 (%s)", e.Pair, e.Value, e.Rationale)
		}
	}
	if len(s.Platforms) > 0 {
		section("Connected Platforms")
		for _, p := range s.Platforms {
			bullet("%s", p.Name)
		}
	}
	if agents := s.ResolvedAgents(); len(agents) > 0 {
		section("Agents in Focus")
		for _, a := range agents {
			bullet("%s: %s", a.AgentName, a.Description)
		}
	}

	section("Mesh Metrics")
	bullet("Mesh Maturity Score: %d", m.MeshScore)
	bullet("Estimated Event Throughput: %s messages/year", m.FormattedMessages)
	if len(m.ValueLevers) > 0 {
		bullet("Value Levers: %s", strings.Join(m.ValueLevers, ", "))
	}
	if len(m.Benefits) > 0 {
		section("Business Benefits")
		for _, benefit := range m.Benefits {
			bullet("%s", benefit)
		}
	}

	b.WriteString("\n---\n\nDeveloped by the Solace Agent Mesh demo team.\n")
	return b.String()
}
