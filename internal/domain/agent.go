package domain

// AgentStatus is the lifecycle state of an agent in the mesh.
type AgentStatus string

const (
	AgentPending  AgentStatus = "pending"
	AgentResolved AgentStatus = "resolved"
)

// Agent is a generated integration concept connecting 2-3 platforms.
// Vendor agents are packaged by a platform vendor and may attach to a single
// platform.
type Agent struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Solutions   []string    `json:"solutions"`
	AgentName   string      `json:"agentName"`
	Description string      `json:"description"`
	DraftPrompt string      `json:"draftPrompt"`
	ROIEstimate string      `json:"roiEstimate"`
	Context     string      `json:"context,omitempty"`
	Status      AgentStatus `json:"status"`
	Vendor      bool        `json:"vendor,omitempty"`
	// Attempt identifies the request that produced a pending placeholder.
	Attempt uint64 `json:"-"`
}

// IsPending reports whether generation is still in flight.
func (a Agent) IsPending() bool {
	return a.Status == AgentPending
}

// AgentConcept is the generated description of an integration agent.
type AgentConcept struct {
	AgentName   string   `json:"agentName"`
	Description string   `json:"description"`
	DraftPrompt string   `json:"draftPrompt"`
	ROIEstimate string   `json:"roiEstimate"`
	Context     string   `json:"context"`
	Solutions   []string `json:"solutions"`
}

const (
	DefaultAgentName   = "Hybrid Integration Agent"
	DefaultDraftPrompt = "Provide a comprehensive agent prompt here."
	DefaultROIEstimate = "ROI TBD – refine with customer benchmarks."
)
