// Package service implements company discovery and agent concept
// generation on top of the configured language-model providers.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/llm"
	"github.com/soyeahso/meshbuilder/internal/logging"
	"github.com/soyeahso/meshbuilder/internal/store"
)

var (
	// ErrCompanyRequired is returned for a blank company name.
	ErrCompanyRequired = errors.New("company name is required")
	// ErrInvalidSolutions is returned when an agent request does not name
	// two or three platforms.
	ErrInvalidSolutions = errors.New("invalid solutions")
)

// Service runs the discovery and generation calls.
type Service struct {
	registry *llm.Registry
	cache    store.Cache
	hooks    *hooks.Manager
	log      *logging.Logger
}

// New creates a Service. cache and hm may be nil.
func New(registry *llm.Registry, cache store.Cache, hm *hooks.Manager, log *logging.Logger) *Service {
	if cache == nil {
		cache = store.NopCache{}
	}
	return &Service{
		registry: registry,
		cache:    cache,
		hooks:    hm,
		log:      log.Sub("service"),
	}
}

// Cache returns the discovery cache and concept log.
func (s *Service) Cache() store.Cache {
	return s.cache
}

// detailedError reports msg to callers while matching kind with errors.Is.
type detailedError struct {
	kind error
	msg  string
}

func (e *detailedError) Error() string { return e.msg }

func (e *detailedError) Unwrap() error { return e.kind }

// complete sends req to provider and returns the trimmed content. An empty
// completion is reported as emptyMsg.
func (s *Service) complete(ctx context.Context, provider string, req llm.CompletionRequest, emptyMsg string) (string, error) {
	client, err := s.registry.Resolve(provider)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := client.Complete(ctx, req)
	if err != nil {
		s.log.Debug().Err(err).Str("provider", client.Name()).Msg("completion failed")
		return "", err
	}
	s.log.Debug().
		Str("provider", client.Name()).
		Int("outputTokens", resp.Usage.OutputTokens).
		Dur("elapsed", time.Since(start)).
		Msg("completion finished")

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", &detailedError{kind: llm.ErrEmptyCompletion, msg: emptyMsg}
	}
	return content, nil
}

func (s *Service) emit(ctx context.Context, event string, data map[string]any) {
	if s.hooks != nil {
		s.hooks.Emit(ctx, event, data)
	}
}
