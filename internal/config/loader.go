package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields resolves ${ENV_VAR} references in provider keys.
func expandSensitiveFields(cfg *Config) {
	cfg.Providers.Perplexity.APIKey = expandEnvVars(cfg.Providers.Perplexity.APIKey)
	cfg.Providers.OpenAI.APIKey = expandEnvVars(cfg.Providers.OpenAI.APIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields left empty by the config file.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = d.Server.Bind
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = d.Server.Env
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	fillProvider(&cfg.Providers.Perplexity, d.Providers.Perplexity)
	fillProvider(&cfg.Providers.OpenAI, d.Providers.OpenAI)
	if cfg.Mesh.SeedDelayMs == 0 {
		cfg.Mesh.SeedDelayMs = d.Mesh.SeedDelayMs
	}
	if cfg.Mesh.MessagesPerAgent == 0 {
		cfg.Mesh.MessagesPerAgent = d.Mesh.MessagesPerAgent
	}
	if cfg.Cache.Store == "" {
		cfg.Cache.Store = d.Cache.Store
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = d.Cache.TTLMinutes
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = d.Logging.ConsoleStyle
	}
}

func fillProvider(p *ProviderConfig, d ProviderConfig) {
	if p.Model == "" {
		p.Model = d.Model
	}
	if p.BaseURL == "" {
		p.BaseURL = d.BaseURL
	}
	if p.TimeoutSeconds == 0 {
		p.TimeoutSeconds = d.TimeoutSeconds
	}
}

// applyEnvOverrides reads the provider variables and MESHBUILDER_* overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PERPLEXITY_API_KEY"); v != "" {
		cfg.Providers.Perplexity.APIKey = v
	}
	if v := os.Getenv("PERPLEXITY_MODEL"); v != "" {
		cfg.Providers.Perplexity.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Providers.OpenAI.Model = v
	}
	if v := os.Getenv("MESHBUILDER_ENV"); v != "" {
		cfg.Server.Env = strings.ToLower(v)
	}
	if v := os.Getenv("MESHBUILDER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MESHBUILDER_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
}
