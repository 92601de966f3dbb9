package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/meshbuilder/internal/domain"
	"github.com/soyeahso/meshbuilder/internal/extract"
	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/llm"
)

const (
	maxSolutions  = 10
	maxPriorities = 3
)

// FallbackSolutions is returned when the research provider cannot be reached.
var FallbackSolutions = []domain.Solution{
	{Name: "SAP S/4HANA", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/sap/0FAAFF")},
	{Name: "Salesforce CRM", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/salesforce/00A1E0")},
	{Name: "ServiceNow ITSM", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/servicenow/4CAF50")},
	{Name: "Workday HCM", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/workday/FF6319")},
	{Name: "Snowflake Data Cloud", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/snowflake/29B5E8")},
	{Name: "Slack", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/slack/4A154B")},
	{Name: "Jira Software", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/jira/0052CC")},
	{Name: "Oracle Fusion ERP", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/oracle/F80000")},
	{Name: "MuleSoft Anypoint", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/mulesoft/009ADA")},
	{Name: "Google Cloud Platform", LogoURL: domain.OptionalString("https://cdn.simpleicons.org/googlecloud/4285F4")},
}

// Solutions asks the research provider which platforms company likely runs.
func (s *Service) Solutions(ctx context.Context, company string) ([]domain.Solution, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrCompanyRequired
	}

	req := llm.Prompt(solutionSystemPrompt, solutionsPrompt(company))
	req.Temperature = llm.Float(0.2)
	req.TopP = llm.Float(0.7)

	solutions, err := s.solutions(ctx, req)
	if err != nil {
		if llm.IsNetworkError(err) {
			s.log.Warn().Err(err).Str("company", company).Msg("research provider unreachable, using fallback solutions")
			return cloneSolutions(FallbackSolutions), nil
		}
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, fmt.Errorf("Perplexity request failed: %w", err)
	}
	return solutions, nil
}

func (s *Service) solutions(ctx context.Context, req llm.CompletionRequest) ([]domain.Solution, error) {
	content, err := s.complete(ctx, llm.ProviderPerplexity, req, "Perplexity returned an empty response.")
	if err != nil {
		return nil, err
	}
	items, err := extract.Records(content)
	if err != nil {
		return nil, err
	}
	if len(items) > maxSolutions {
		items = items[:maxSolutions]
	}

	out := make([]domain.Solution, 0, len(items))
	for _, item := range extract.Objects(items) {
		name := extract.String(item, "name")
		if name == "" {
			continue
		}
		out = append(out, domain.Solution{
			Name:    name,
			LogoURL: domain.OptionalString(extract.String(item, "logoUrl")),
		})
	}
	if len(items) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("%w: no named solutions in response", extract.ErrUnexpectedShape)
	}
	return out, nil
}

// IsFallback reports whether solutions is the static default list returned
// when the research provider was unreachable.
func IsFallback(solutions []domain.Solution) bool {
	if len(solutions) != len(FallbackSolutions) {
		return false
	}
	for i := range solutions {
		if solutions[i].Name != FallbackSolutions[i].Name {
			return false
		}
	}
	return true
}

func cloneSolutions(in []domain.Solution) []domain.Solution {
	out := make([]domain.Solution, len(in))
	for i, sol := range in {
		out[i] = domain.Solution{Name: sol.Name}
		if sol.LogoURL != nil {
			logo := *sol.LogoURL
			out[i].LogoURL = &logo
		}
	}
	return out
}

// Priorities infers up to three strategic priorities. Failures are reported
// in the Error field.
func (s *Service) Priorities(ctx context.Context, company string) domain.Priorities {
	company = strings.TrimSpace(company)
	if company == "" {
		return domain.Priorities{Priorities: []string{}, Error: ErrCompanyRequired.Error()}
	}

	req := llm.Prompt(prioritySystemPrompt, prioritiesPrompt(company))
	req.Temperature = llm.Float(0.25)
	req.TopP = llm.Float(0.6)

	content, err := s.complete(ctx, llm.ProviderPerplexity, req, "Perplexity returned an empty priorities response.")
	if err == nil {
		var parsed map[string]any
		if parsed, err = extract.Object(content); err == nil {
			list := extract.StringList(parsed, "priorities", maxPriorities)
			return domain.Priorities{
				Priorities: list,
				Summary:    extract.StringOr(parsed, "summary", strings.Join(list, "; ")),
			}
		}
	}

	s.log.Warn().Err(err).Str("company", company).Msg("priorities unavailable")
	return domain.Priorities{Priorities: []string{}, Error: err.Error()}
}

// EnterpriseContext gathers synergy insights, peer comparisons and the pair
// heatmap. Failures are reported in the Error field.
func (s *Service) EnterpriseContext(ctx context.Context, company string) domain.EnterpriseContext {
	company = strings.TrimSpace(company)
	if company == "" {
		out := domain.EmptyContext()
		out.Error = ErrCompanyRequired.Error()
		return out
	}

	req := llm.Prompt(contextSystemPrompt, contextPrompt(company))
	req.Temperature = llm.Float(0.35)
	req.TopP = llm.Float(0.75)

	content, err := s.complete(ctx, llm.ProviderPerplexity, req, "Perplexity returned an empty enterprise context response.")
	if err == nil {
		var parsed map[string]any
		if parsed, err = extract.Object(content); err == nil {
			return parseContext(parsed)
		}
	}

	s.log.Warn().Err(err).Str("company", company).Msg("enterprise context unavailable")
	out := domain.EmptyContext()
	out.Error = err.Error()
	return out
}

func parseContext(parsed map[string]any) domain.EnterpriseContext {
	out := domain.EmptyContext()
	out.SynergyInsights = extract.StringList(parsed, "synergyInsights", 0)
	out.IndustryComparisons = extract.StringList(parsed, "industryComparisons", 0)
	for _, entry := range extract.Objects(parsed["priorityHeatmap"]) {
		pair := extract.String(entry, "pair")
		if pair == "" {
			continue
		}
		value, _ := extract.Number(entry, "value")
		out.PriorityHeatmap = append(out.PriorityHeatmap, domain.HeatmapEntry{
			Pair:      pair,
			Value:     extract.Clamp(value, 0, 100),
			Rationale: extract.String(entry, "rationale"),
		})
	}
	return out
}

// Discover runs the three discovery calls concurrently, consulting the
// discovery cache first.
func (s *Service) Discover(ctx context.Context, company string) (*domain.Discovery, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, ErrCompanyRequired
	}

	if cached, ok, err := s.cache.GetDiscovery(ctx, company); err != nil {
		s.log.Warn().Err(err).Str("company", company).Msg("discovery cache read failed")
	} else if ok {
		s.log.Debug().Str("company", company).Msg("discovery cache hit")
		cached.Company = company
		s.emit(ctx, hooks.EventDiscoveryComplete, map[string]any{"company": company, "cached": true, "solutions": len(cached.Solutions)})
		return cached, nil
	}

	out := &domain.Discovery{Company: company}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		solutions, err := s.Solutions(gctx, company)
		out.Solutions = solutions
		return err
	})
	g.Go(func() error {
		out.Priorities = s.Priorities(gctx, company)
		return nil
	})
	g.Go(func() error {
		out.Context = s.EnterpriseContext(gctx, company)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.FetchedAt = time.Now()

	// Degraded results are not cached so a later search can recover them.
	if out.Priorities.Error == "" && out.Context.Error == "" && !IsFallback(out.Solutions) {
		if err := s.cache.PutDiscovery(ctx, out); err != nil {
			s.log.Warn().Err(err).Str("company", company).Msg("discovery cache write failed")
		}
	}

	s.log.Info().
		Str("company", company).
		Int("solutions", len(out.Solutions)).
		Int("priorities", len(out.Priorities.Priorities)).
		Msg("discovery complete")
	s.emit(ctx, hooks.EventDiscoveryComplete, map[string]any{"company": company, "cached": false, "solutions": len(out.Solutions)})
	return out, nil
}
