package domain

import "strings"

type vendorTemplate struct {
	vendor      string
	keywords    []string
	agentName   string
	description string
	draftPrompt string
	roiEstimate string
}

var vendorTemplates = []vendorTemplate{
	{
		vendor:      "SAP",
		keywords:    []string{"sap"},
		agentName:   "SAP Standard Agent",
		description: "SAP’s packaged integration agent streams S/4HANA events directly into Solace Mesh.",
		draftPrompt: "You operate the SAP Standard Agent for the enterprise. Relay S/4HANA business events (orders, shipments, inventory signals) into the Solace Agent Mesh so downstream agents stay synchronized while SAP keeps its native automations.",
		roiEstimate: "Bundled with SAP event enablement—focus on faster deployments.",
	},
	{
		vendor:      "Salesforce",
		keywords:    []string{"salesforce"},
		agentName:   "Salesforce Standard Agent",
		description: "Salesforce’s packaged agent streams CRM changes into the mesh for cross-cloud playbooks.",
		draftPrompt: "You manage the Salesforce Standard Agent. Capture opportunity, service, and marketing events from Salesforce and publish them into the Solace Agent Mesh while respecting Salesforce guardrails and rate limits.",
		roiEstimate: "Salesforce event relays accelerate revenue orchestration.",
	},
}

// VendorAgents returns the packaged vendor agents that apply to the given
// platforms. Each vendor agent attaches to every platform mentioning the vendor.
func VendorAgents(platforms []Platform) []Agent {
	var agents []Agent
	for _, tpl := range vendorTemplates {
		var matched []string
		for _, p := range platforms {
			name := strings.ToLower(p.Name)
			for _, kw := range tpl.keywords {
				if strings.Contains(name, kw) {
					matched = append(matched, p.Name)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		id := "vendor-" + strings.ToLower(tpl.vendor)
		agents = append(agents, Agent{
			ID:          id,
			Key:         id,
			Solutions:   matched,
			AgentName:   tpl.agentName,
			Description: tpl.description,
			DraftPrompt: tpl.draftPrompt,
			ROIEstimate: tpl.roiEstimate,
			Context:     "Vendor-supplied agent package",
			Status:      AgentResolved,
			Vendor:      true,
		})
	}
	return agents
}
