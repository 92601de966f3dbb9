package llm

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/logging"
)

// Registry manages LLM provider clients and resolves model references to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model alias → provider name
	fallback string            // default provider name
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps a model name to a provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the default provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Has reports whether a provider is registered under exactly this name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}

	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}

	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewPerplexityClient builds the research provider.
func NewPerplexityClient(cfg config.ProviderConfig) *ChatClient {
	return NewChatClient(ChatConfig{
		Name:    ProviderPerplexity,
		Display: "Perplexity",
		EnvVar:  "PERPLEXITY_API_KEY",
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// NewOpenAIClient builds the creative provider.
func NewOpenAIClient(cfg config.ProviderConfig) *ChatClient {
	return NewChatClient(ChatConfig{
		Name:    ProviderOpenAI,
		Display: "OpenAI",
		EnvVar:  "OPENAI_API_KEY",
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// NewRegistryFromConfig registers Perplexity unconditionally, so a missing
// key surfaces as a ConfigError on first use, and OpenAI only when its key
// is set. Unknown references fall back to Perplexity.
func NewRegistryFromConfig(cfg config.ProvidersConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	reg.Register(ProviderPerplexity, NewPerplexityClient(cfg.Perplexity))
	reg.SetFallback(ProviderPerplexity)
	for _, alias := range []string{"sonar", "sonar-pro", "sonar-reasoning", cfg.Perplexity.Model} {
		reg.Alias(alias, ProviderPerplexity)
	}

	if cfg.OpenAI.Configured() {
		reg.Register(ProviderOpenAI, NewOpenAIClient(cfg.OpenAI))
		for _, alias := range []string{"gpt-4o", "gpt-4o-mini", cfg.OpenAI.Model} {
			reg.Alias(alias, ProviderOpenAI)
		}
	}

	return reg
}
