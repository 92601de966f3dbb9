package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/layout"
)

// Action is a state transition applied by Reduce.
type Action interface {
	action()
}

type (
	// Reset clears everything except the viewport.
	Reset struct{}

	// Discovered loads a discovery into the review list, selecting every entry.
	Discovered struct {
		Discovery *domain.Discovery
	}

	// ToggleSelection flips whether a candidate will be confirmed.
	ToggleSelection struct {
		ID string
	}

	// UpdateCandidate renames a candidate or changes its logo.
	UpdateCandidate struct {
		ID      string
		Name    string
		LogoURL *string
	}

	RemoveCandidate struct {
		ID string
	}

	// AddCandidate appends a user-entered platform and selects it.
	AddCandidate struct {
		Name    string
		LogoURL *string
	}

	// Confirm turns the selected candidates into the mesh.
	Confirm struct{}

	CancelReview struct{}

	SetPriorities struct {
		Text string
	}

	SetViewport struct {
		Viewport layout.Viewport
	}

	// BeginAgent inserts a pending placeholder for Names, replacing any
	// agent stored under the same key.
	BeginAgent struct {
		Names   []string
		Attempt uint64
		Silent  bool
	}

	// ResolveAgent replaces the placeholder of the same attempt with the
	// generated concept.
	ResolveAgent struct {
		Key     string
		Attempt uint64
		Concept domain.AgentConcept
	}

	// FailAgent removes the placeholder of the same attempt.
	FailAgent struct {
		Key     string
		Attempt uint64
		Err     string
		Silent  bool
	}

	SetError struct {
		Message string
	}
)

func (Reset) action()           {}
func (Discovered) action()      {}
func (ToggleSelection) action() {}
func (UpdateCandidate) action() {}
func (RemoveCandidate) action() {}
func (AddCandidate) action()    {}
func (Confirm) action()         {}
func (CancelReview) action()    {}
func (SetPriorities) action()   {}
func (SetViewport) action()     {}
func (BeginAgent) action()      {}
func (ResolveAgent) action()    {}
func (FailAgent) action()       {}
func (SetError) action()        {}

// Reduce applies a to s. On error s is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case Reset:
		next := Initial()
		next.Viewport = s.Viewport
		return next, nil

	case Discovered:
		return discovered(s, a.Discovery), nil

	case ToggleSelection:
		if s.Phase != PhaseReviewing {
			return s, ErrNotReviewing
		}
		if s.IsSelected(a.ID) {
			s.Selected = slices.DeleteFunc(slices.Clone(s.Selected), func(id string) bool { return id == a.ID })
			return s, nil
		}
		if !slices.ContainsFunc(s.Candidates, func(p domain.Platform) bool { return p.ID == a.ID }) {
			return s, ErrUnknownCandidate
		}
		if len(s.Selected) >= MaxCandidates {
			return s, nil
		}
		s.Selected = append(slices.Clone(s.Selected), a.ID)
		return s, nil

	case UpdateCandidate:
		i := slices.IndexFunc(s.Candidates, func(p domain.Platform) bool { return p.ID == a.ID })
		if i < 0 {
			return s, ErrUnknownCandidate
		}
		candidates := slices.Clone(s.Candidates)
		candidates[i].Name = a.Name
		candidates[i].LogoURL = a.LogoURL
		s.Candidates = candidates
		return s, nil

	case RemoveCandidate:
		s.Candidates = slices.DeleteFunc(slices.Clone(s.Candidates), func(p domain.Platform) bool { return p.ID == a.ID })
		s.Selected = slices.DeleteFunc(slices.Clone(s.Selected), func(id string) bool { return id == a.ID })
		return s, nil

	case AddCandidate:
		if s.Phase != PhaseReviewing {
			return s, ErrNotReviewing
		}
		if len(s.Candidates) >= MaxCandidates {
			return s, ErrCandidateLimit
		}
		p := domain.NewPlatform("custom", a.Name, a.LogoURL)
		if p.Name == "" {
			return s, ErrNoValidNames
		}
		s.Candidates = append(slices.Clone(s.Candidates), p)
		s.Selected = append(slices.Clone(s.Selected), p.ID)
		return s, nil

	case Confirm:
		return confirm(s)

	case CancelReview:
		s.Candidates = nil
		s.Selected = nil
		s.Company = ""
		s.Phase = PhaseIdle
		if len(s.Platforms) > 0 {
			s.Phase = PhaseMesh
		}
		return s, nil

	case SetPriorities:
		s.Priorities = strings.TrimSpace(a.Text)
		return s, nil

	case SetViewport:
		s.Viewport = a.Viewport
		return s, nil

	case BeginAgent:
		return beginAgent(s, a), nil

	case ResolveAgent:
		return resolveAgent(s, a)

	case FailAgent:
		i := pendingIndex(s, a.Key, a.Attempt)
		if i < 0 {
			return s, ErrStale
		}
		s.Agents = slices.Delete(slices.Clone(s.Agents), i, i+1)
		if !a.Silent {
			s.Error = a.Err
		}
		return s, nil

	case SetError:
		s.Error = a.Message
		return s, nil

	default:
		return s, fmt.Errorf("unknown action %T", a)
	}
}

func discovered(s State, d *domain.Discovery) State {
	next := Initial()
	next.Viewport = s.Viewport
	next.Phase = PhaseReviewing
	next.Company = domain.TitleCase(d.Company)

	solutions := d.Solutions
	if len(solutions) > MaxCandidates {
		solutions = solutions[:MaxCandidates]
	}
	for i, sol := range solutions {
		name := strings.TrimSpace(sol.Name)
		if name == "" {
			name = fmt.Sprintf("Solution %d", i+1)
		}
		p := domain.NewPlatform("auto", name, sol.LogoURL)
		next.Candidates = append(next.Candidates, p)
		next.Selected = append(next.Selected, p.ID)
	}

	next.Discovered = d.Priorities
	next.Priorities = d.Priorities.Summary
	if next.Priorities == "" {
		next.Priorities = strings.Join(d.Priorities.Priorities, "\n")
	}
	next.Context = d.Context
	return next
}

func confirm(s State) (State, error) {
	if s.Phase != PhaseReviewing {
		return s, ErrNotReviewing
	}
	var selected []domain.Platform
	for _, c := range s.Candidates {
		if s.IsSelected(c.ID) {
			selected = append(selected, c)
		}
	}
	if len(selected) < MinConfirmed {
		return s, fmt.Errorf("%w (currently %d).", ErrTooFewSelected, len(selected))
	}
	if len(selected) > MaxCandidates {
		selected = selected[:MaxCandidates]
	}

	platforms := make([]domain.Platform, 0, len(selected))
	for _, c := range selected {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		platforms = append(platforms, domain.Platform{
			ID:      c.ID,
			Name:    name,
			LogoURL: domain.ResolveLogo(name, c.LogoURL),
		})
	}
	if len(platforms) < MinConfirmed {
		return s, ErrNoValidNames
	}

	s.Platforms = platforms
	s.Agents = domain.VendorAgents(platforms)
	s.Phase = PhaseMesh
	s.Error = ""
	return s, nil
}

func beginAgent(s State, a BeginAgent) State {
	key := domain.AgentKey(a.Names)
	placeholder := domain.Agent{
		ID:          "pending-" + key,
		Key:         key,
		Solutions:   slices.Clone(a.Names),
		AgentName:   PendingAgentName,
		Description: PendingDescription,
		DraftPrompt: PendingDraftPrompt,
		ROIEstimate: PendingROIEstimate,
		Status:      domain.AgentPending,
		Attempt:     a.Attempt,
	}
	agents := slices.DeleteFunc(slices.Clone(s.Agents), func(ag domain.Agent) bool { return ag.Key == key })
	s.Agents = lastAgents(append(agents, placeholder))
	if !a.Silent {
		s.Error = ""
	}
	return s
}

func resolveAgent(s State, a ResolveAgent) (State, error) {
	i := pendingIndex(s, a.Key, a.Attempt)
	if i < 0 {
		return s, ErrStale
	}
	solutions := s.Agents[i].Solutions
	if len(a.Concept.Solutions) > 0 {
		solutions = slices.Clone(a.Concept.Solutions)
	}
	agent := domain.Agent{
		ID:          fmt.Sprintf("%s-%d", a.Key, a.Attempt),
		Key:         a.Key,
		Solutions:   solutions,
		AgentName:   a.Concept.AgentName,
		Description: a.Concept.Description,
		DraftPrompt: a.Concept.DraftPrompt,
		ROIEstimate: a.Concept.ROIEstimate,
		Context:     a.Concept.Context,
		Status:      domain.AgentResolved,
	}
	agents := slices.Delete(slices.Clone(s.Agents), i, i+1)
	s.Agents = lastAgents(append(agents, agent))
	return s, nil
}

// pendingIndex finds the placeholder for key created by attempt.
func pendingIndex(s State, key string, attempt uint64) int {
	return slices.IndexFunc(s.Agents, func(a domain.Agent) bool {
		return a.Key == key && a.IsPending() && a.Attempt == attempt
	})
}

// lastAgents keeps at most MaxAgents entries. The oldest finished agents go
// first so in-flight placeholders keep their slot; placeholders are evicted,
// oldest first, only when they alone exceed the cap.
func lastAgents(agents []domain.Agent) []domain.Agent {
	excess := len(agents) - MaxAgents
	if excess <= 0 {
		return agents
	}
	drop := make([]bool, len(agents))
	for _, pending := range []bool{false, true} {
		for i, a := range agents {
			if excess == 0 {
				break
			}
			if a.IsPending() == pending {
				drop[i] = true
				excess--
			}
		}
	}
	kept := make([]domain.Agent, 0, MaxAgents)
	for i, a := range agents {
		if !drop[i] {
			kept = append(kept, a)
		}
	}
	return kept
}
