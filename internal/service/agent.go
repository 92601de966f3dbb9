package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/extract"
	"github.com/soyeahso/meshbuilder/internal/llm"
	"github.com/soyeahso/meshbuilder/internal/store"
)

// AgentRequest is the input to GenerateAgent.
type AgentRequest struct {
	Solutions  []string `json:"solutions"`
	Priorities string   `json:"priorities,omitempty"`
	// Company is only used to label the concept log entry.
	Company string `json:"company,omitempty"`
}

// GenerateAgent invents an integration agent for two or three platforms.
func (s *Service) GenerateAgent(ctx context.Context, req AgentRequest) (*domain.AgentConcept, error) {
	if len(req.Solutions) < domain.MinAgentPlatforms || len(req.Solutions) > domain.MaxAgentPlatforms {
		return nil, &detailedError{kind: ErrInvalidSolutions, msg: "Provide a list of 2 or 3 solution names."}
	}
	names := make([]string, 0, len(req.Solutions))
	for _, n := range req.Solutions {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) < domain.MinAgentPlatforms {
		return nil, &detailedError{kind: ErrInvalidSolutions, msg: "Each solution name must be a non-empty string."}
	}
	priorities := strings.TrimSpace(req.Priorities)

	briefing := s.briefing(ctx, names, priorities)

	draft, provider, err := s.draftConcept(ctx, names, briefing, priorities)
	if err != nil {
		return nil, err
	}

	concept := &domain.AgentConcept{
		AgentName:   extract.StringOr(draft, "agentName", domain.DefaultAgentName),
		Description: extract.StringOr(draft, "description", fmt.Sprintf("Coordinates %s with Solace Agent Mesh to streamline enterprise flows.", strings.Join(names, " and "))),
		DraftPrompt: extract.StringOr(draft, "draftPrompt", domain.DefaultDraftPrompt),
		ROIEstimate: extract.StringOr(draft, "roiEstimate", domain.DefaultROIEstimate),
		Context:     briefing,
		Solutions:   names,
	}

	if err := s.cache.RecordConcept(ctx, store.ConceptRecord{
		Key:      domain.AgentKey(names),
		Company:  strings.TrimSpace(req.Company),
		Provider: provider,
		Concept:  *concept,
	}); err != nil {
		s.log.Warn().Err(err).Msg("recording concept failed")
	}

	s.log.Info().
		Strs("solutions", names).
		Str("agent", concept.AgentName).
		Str("provider", provider).
		Msg("agent concept generated")
	return concept, nil
}

// briefing researches the integration. Failures yield "".
func (s *Service) briefing(ctx context.Context, names []string, priorities string) string {
	req := llm.Prompt(briefingSystemPrompt, briefingPrompt(names, priorities))
	req.Temperature = llm.Float(0.35)
	req.TopP = llm.Float(0.7)

	content, err := s.complete(ctx, llm.ProviderPerplexity, req, "Perplexity returned an empty briefing.")
	if err != nil {
		s.log.Debug().Err(err).Strs("solutions", names).Msg("integration briefing unavailable")
		return ""
	}
	return content
}

// draftConcept asks OpenAI for the concept when it is configured, and the
// research provider otherwise.
func (s *Service) draftConcept(ctx context.Context, names []string, briefing, priorities string) (map[string]any, string, error) {
	req := llm.Prompt(agentSystemPrompt, conceptPrompt(names, briefing, priorities))

	provider := llm.ProviderPerplexity
	emptyMsg := "Perplexity fallback returned an empty response."
	if s.registry.Has(llm.ProviderOpenAI) {
		provider = llm.ProviderOpenAI
		emptyMsg = "OpenAI returned an empty response."
		req.Temperature = llm.Float(0.55)
	} else {
		req.Temperature = llm.Float(0.5)
		req.TopP = llm.Float(0.75)
	}

	content, err := s.complete(ctx, provider, req, emptyMsg)
	if err != nil {
		return nil, provider, err
	}
	draft, err := extract.Object(content)
	if err != nil {
		return nil, provider, err
	}
	return draft, provider, nil
}
