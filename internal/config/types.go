package config

// Config is the root configuration for meshbuilder.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Providers ProvidersConfig `yaml:"providers,omitempty"`
	Mesh      MeshConfig      `yaml:"mesh,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP/WebSocket server.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "lan" | "loopback" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Env            string   `yaml:"env,omitempty"` // "development" | "production"
	StaticDir      string   `yaml:"staticDir,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	MaxBodyBytes   int64    `yaml:"maxBodyBytes,omitempty"`
}

// ProvidersConfig holds the language-model providers.
type ProvidersConfig struct {
	Perplexity ProviderConfig `yaml:"perplexity,omitempty"`
	OpenAI     ProviderConfig `yaml:"openai,omitempty"`
}

// ProviderConfig configures one OpenAI-compatible chat completions endpoint.
type ProviderConfig struct {
	APIKey         string `yaml:"apiKey,omitempty"`
	Model          string `yaml:"model,omitempty"`
	BaseURL        string `yaml:"baseUrl,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// Configured reports whether an API key is present.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// MeshConfig tunes the interactive mesh session.
type MeshConfig struct {
	SeedDelayMs      int   `yaml:"seedDelayMs,omitempty"`
	AutoSeed         *bool `yaml:"autoSeed,omitempty"`
	MessagesPerAgent int64 `yaml:"messagesPerAgent,omitempty"`
}

// AutoSeedEnabled reports whether balanced seed agents are generated after confirm.
// Defaults to true.
func (m MeshConfig) AutoSeedEnabled() bool {
	return m.AutoSeed == nil || *m.AutoSeed
}

// CacheConfig controls where discovery results are cached.
type CacheConfig struct {
	Store      string `yaml:"store,omitempty"` // "sqlite" | "memory" | "none"
	TTLMinutes int    `yaml:"ttlMinutes,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
