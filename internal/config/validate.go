package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	validBinds := []string{"lan", "loopback", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "server.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Server.Bind),
		})
	}
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.customBindHost",
			Message: "required when bind: custom",
		})
	}

	validEnvs := []string{"development", "production", "test"}
	if cfg.Server.Env != "" && !slices.Contains(validEnvs, cfg.Server.Env) {
		issues = append(issues, ValidationIssue{
			Path:    "server.env",
			Message: fmt.Sprintf("must be one of %v, got %q", validEnvs, cfg.Server.Env),
		})
	}

	if cfg.Server.MaxBodyBytes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.maxBodyBytes",
			Message: "must not be negative",
		})
	}

	issues = append(issues, validateProvider("providers.perplexity", cfg.Providers.Perplexity)...)
	issues = append(issues, validateProvider("providers.openai", cfg.Providers.OpenAI)...)

	if cfg.Mesh.MessagesPerAgent < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "mesh.messagesPerAgent",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Mesh.MessagesPerAgent),
		})
	}
	if cfg.Mesh.SeedDelayMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "mesh.seedDelayMs",
			Message: "must not be negative",
		})
	}

	validStores := []string{"sqlite", "memory", "none"}
	if cfg.Cache.Store != "" && !slices.Contains(validStores, cfg.Cache.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "cache.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Cache.Store),
		})
	}
	if cfg.Cache.TTLMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "cache.ttlMinutes",
			Message: "must not be negative",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}

func validateProvider(path string, p ProviderConfig) []ValidationIssue {
	var issues []ValidationIssue
	if p.BaseURL != "" {
		u, err := url.Parse(p.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    path + ".baseUrl",
				Message: fmt.Sprintf("must be an absolute URL, got %q", p.BaseURL),
			})
		}
	}
	if p.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    path + ".timeoutSeconds",
			Message: "must not be negative",
		})
	}
	return issues
}
