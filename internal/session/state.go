// Package session models one user's mesh-building session: discovery
// review, the confirmed platform mesh, and the agents drawn across it.
package session

import (
	"errors"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/layout"
)

// Limits on the review list and the mesh.
const (
	MaxCandidates = 10
	MinConfirmed  = 5
	MaxAgents     = 10
)

// Placeholder text shown while an agent is being generated.
const (
	PendingAgentName   = "Designing Agent Mesh..."
	PendingDescription = "Drafting a Solace agent tailored to this connection."
	PendingDraftPrompt = "Generating prompt..."
	PendingROIEstimate = "Estimating ROI..."
)

var (
	ErrTooFewSelected   = errors.New("Select at least five platforms")
	ErrNoValidNames     = errors.New("Provide valid names for at least five solutions.")
	ErrCandidateLimit   = errors.New("the review list already holds ten platforms")
	ErrUnknownCandidate = errors.New("unknown platform")
	ErrNotReviewing     = errors.New("no platform review in progress")
	// ErrStale reports an agent result whose placeholder is gone or was
	// replaced by a newer request.
	ErrStale = errors.New("stale agent result")
)

// Phase is the coarse stage of a session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReviewing Phase = "reviewing"
	PhaseMesh      Phase = "mesh"
)

// State is an immutable snapshot of a session. Reduce never modifies the
// slices of the State it is given.
type State struct {
	Phase   Phase  `json:"phase"`
	Company string `json:"company"`

	Candidates []domain.Platform `json:"candidates"`
	Selected   []string          `json:"selected"`

	Platforms []domain.Platform `json:"platforms"`
	Agents    []domain.Agent    `json:"agents"`

	// Priorities is the free-text priority statement sent with agent requests.
	Priorities string                   `json:"priorities"`
	Discovered domain.Priorities        `json:"discovered"`
	Context    domain.EnterpriseContext `json:"context"`

	Viewport layout.Viewport `json:"viewport"`
	Error    string          `json:"error,omitempty"`
}

// Initial returns the empty session.
func Initial() State {
	return State{
		Phase:    PhaseIdle,
		Context:  domain.EmptyContext(),
		Viewport: layout.DefaultViewport,
	}
}

// IsSelected reports whether the candidate id is selected for confirmation.
func (s State) IsSelected(id string) bool {
	for _, sel := range s.Selected {
		if sel == id {
			return true
		}
	}
	return false
}

// Agent returns the agent stored under key.
func (s State) Agent(key string) (domain.Agent, bool) {
	for _, a := range s.Agents {
		if a.Key == key {
			return a, true
		}
	}
	return domain.Agent{}, false
}

// HasResolved reports whether a finished agent exists for key.
func (s State) HasResolved(key string) bool {
	a, ok := s.Agent(key)
	return ok && !a.IsPending()
}

// ResolvedAgents returns the agents that are not pending.
func (s State) ResolvedAgents() []domain.Agent {
	out := make([]domain.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		if !a.IsPending() {
			out = append(out, a)
		}
	}
	return out
}

// PlatformNames returns the names of the confirmed platforms.
func (s State) PlatformNames() []string {
	names := make([]string, len(s.Platforms))
	for i, p := range s.Platforms {
		names[i] = p.Name
	}
	return names
}

// platformName resolves a confirmed platform id.
func (s State) platformName(id string) (string, bool) {
	for _, p := range s.Platforms {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}
