package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/meshbuilder/internal/domain"
)

func meshState(t *testing.T) State {
	t.Helper()
	s := reviewing(t, "SAP", "Salesforce", "Workday", "Slack", "Jira")
	s.Context = domain.EnterpriseContext{
		SynergyInsights:     []string{"Event-driven CRM"},
		IndustryComparisons: []string{"80% of peers stream orders"},
		PriorityHeatmap: []domain.HeatmapEntry{
			{Pair: "SAP + Salesforce", Value: 90, Rationale: "orders"},
			{Pair: "Jira + Slack", Value: 40},
		},
	}
	return mustReduce(t, s,
		Confirm{},
		BeginAgent{Names: []string{"SAP", "Workday"}, Attempt: 1},
		ResolveAgent{Key: "sap|workday", Attempt: 1, Concept: domain.AgentConcept{
			AgentName:   "Workforce Planner",
			Description: "Improves customer journey handoffs.",
			DraftPrompt: "Automate the hiring workflow.",
		}},
		BeginAgent{Names: []string{"Jira", "Slack"}, Attempt: 2},
	)
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(meshState(t), DefaultMessagesPerAgent)

	// two vendor agents plus one generated; the pending one does not count
	assert.Equal(t, 3, m.TotalAgents)
	assert.Equal(t, 3, m.UniquePlatforms)
	assert.Equal(t, int64(16_500_000), m.Messages)
	assert.Equal(t, "16,500,000", m.FormattedMessages)
	assert.Equal(t, 14*3+6*3+5*2, m.MeshScore)
	require.NotEmpty(t, m.ValueLevers)
	assert.Equal(t, "Customer Experience Gains", m.ValueLevers[0])
	assert.Len(t, m.Benefits, 3)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(Initial(), DefaultMessagesPerAgent)
	assert.Zero(t, m.TotalAgents)
	assert.Equal(t, "0", m.FormattedMessages)
	assert.Equal(t, 5, m.MeshScore, "score has a floor")
	assert.Equal(t, []string{"Faster cross-platform orchestration", "Improved decision latency"}, m.ValueLevers)
	assert.Empty(t, m.Benefits)
}

func TestComputeMetrics_ScoreCap(t *testing.T) {
	s := Initial()
	for i := 0; i < MaxAgents; i++ {
		key := []string{"Hub", string(rune('A' + i))}
		s = mustReduce(t, s,
			BeginAgent{Names: key, Attempt: uint64(i + 1)},
			ResolveAgent{Key: domain.AgentKey(key), Attempt: uint64(i + 1), Concept: domain.AgentConcept{AgentName: "x"}},
		)
	}
	assert.Equal(t, 100, ComputeMetrics(s, 1).MeshScore)
}

func TestReport(t *testing.T) {
	s := meshState(t)
	s = mustReduce(t, s, SetPriorities{Text: "Cut latency"})
	report := Report(s, ComputeMetrics(s, DefaultMessagesPerAgent))

	assert.True(t, strings.HasPrefix(report, "# Solace Agent Mesh Analysis for Acme Corp\n"))
	for _, want := range []string{
		"## Regional Priorities\n\nCut latency\n",
		"## Synergy Agents to Spotlight\n\n- Event-driven CRM\n",
		"## Industry Benchmarks",
		"- SAP + Salesforce: 90/100 (orders)\n",
		"- Jira + Slack: 40/100\n",
		"## Connected Platforms\n\n- SAP\n- Salesforce\n",
		"- Workforce Planner: Improves customer journey handoffs.\n",
		"- Estimated Event Throughput: 16,500,000 messages/year\n",
		"## Business Benefits",
		"Developed by the Solace Agent Mesh demo team.",
	} {
		assert.Contains(t, report, want)
	}
	assert.NotContains(t, report, PendingAgentName)
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "solace-agent-mesh-acme-corp.md", ReportFileName("Acme  Corp"))
	assert.Equal(t, "solace-agent-mesh-analysis.md", ReportFileName(""))
	assert.Equal(t, "Solace Agent Mesh Analysis", ReportTitle(""))
}
