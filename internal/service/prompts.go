package service

import (
	"fmt"
	"strings"
)

const (
	solutionSystemPrompt = "You are a research assistant helping solution architects understand enterprise software landscapes. Always respond with valid JSON."
	prioritySystemPrompt = "You are an industry analyst who understands enterprise roadmaps and business priorities. Always answer with JSON."
	contextSystemPrompt  = "You are an enterprise integration analyst. Always respond with concise JSON that can be rendered in dashboards."
	briefingSystemPrompt = "You are an integration strategist that researches enterprise systems and their data flows. Provide crisp, factual insights."
	agentSystemPrompt    = "You are a product marketer for Solace Agent Mesh. Craft compelling but concise agent concepts. Always respond using JSON."
)

func solutionsPrompt(company string) string {
	return fmt.Sprintf(`Identify the top enterprise software solutions or SaaS platforms most likely used by %s. `+
		`Optimise for systems that integrate cleanly with Solace Agent Mesh (e.g., SAP S/4HANA, Salesforce, ServiceNow, Workday, Snowflake, Slack, Jira, MuleSoft, Google Cloud). `+
		`Return a JSON array of up to %d objects with the schema { "name": string, "logoUrl": string | null }. `+
		`Ensure logo URLs are direct image links (prefer SVG or PNG) from official brand libraries or well-known logo CDNs. `+
		`If a trustworthy logo URL is unavailable, set "logoUrl" to null.`, company, maxSolutions)
}

func prioritiesPrompt(company string) string {
	return fmt.Sprintf(`For %s, outline the top three executive priorities for the next 12 months that would motivate investment in connected digital operations. `+
		`Return JSON with the shape { "priorities": string[<=3], "summary": string (<=80 words) }. `+
		`Focus on measurable imperatives (e.g., latency reduction, margin protection, customer experience) and avoid generic statements.`, company)
}

func contextPrompt(company string) string {
	return fmt.Sprintf(`For %s, identify cross-platform integration insights that a Solace Agent Mesh demo should highlight.
Return JSON with shape {
  "synergyInsights": string[] (<=3),
  "industryComparisons": string[] (<=3),
  "priorityHeatmap": [{ "pair": string, "value": number (0-100), "rationale": string }]
}.
Guidelines:
- Draw on public benchmarks (e.g., "80%% of regional peers integrate CRM + ERP via event streams").
- Focus on platforms such as SAP, Salesforce, ServiceNow, Workday, Snowflake, Jira, Slack.
- Format "pair" like "SAP + Salesforce" and reflect regional considerations (APAC, EMEA, Americas).
- "value" is the estimated strategic impact of a Solace agent linking that pair.`, company)
}

func briefingPrompt(names []string, priorities string) string {
	line := "No explicit customer priorities were provided; infer typical goals for these platforms."
	if priorities != "" {
		line = fmt.Sprintf("Focus on the customer's stated annual priorities: %s.", priorities)
	}
	return fmt.Sprintf(`Provide a tight 140-word briefing on why connecting %s unlocks value. %s `+
		`Highlight the personas served, key data exchanged, latency or reliability concerns, and the north-star business outcome. `+
		`Format your answer as markdown with two sections: "Opportunities" (bulleted) and "Observability Signals" (bulleted).`,
		strings.Join(names, ", "), line)
}

func conceptPrompt(names []string, briefing, priorities string) string {
	cue := "No explicit priorities; emphasise the most material business outcome."
	if priorities != "" {
		cue = fmt.Sprintf("Priorities to honor: %s. Anchor on these outcomes.", priorities)
	}
	if briefing == "" {
		briefing = "No additional context available."
	}
	return fmt.Sprintf(`Design a Solace Agent Mesh concept that orchestrates %s. Use the research context below to stay grounded.

[Context]
%s

%s

Return a JSON object with keys: agentName (string, 4 words max), description (string, <=40 words), `+
		`roiEstimate (string summarising 12-month ROI in dollars or percentage, <=25 words), `+
		`draftPrompt (string, 120-180 words written in second person, with clear goals, data sources, guardrails, and success metrics).`,
		strings.Join(names, " + "), briefing, cue)
}
