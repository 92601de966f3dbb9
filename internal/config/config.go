package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort             = 3001
	DefaultPerplexityURL    = "https://api.perplexity.ai"
	DefaultPerplexityModel  = "sonar"
	DefaultOpenAIURL        = "https://api.openai.com/v1"
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultMessagesPerAgent = 5_500_000
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           DefaultPort,
			Bind:           "lan",
			Env:            "development",
			StaticDir:      "client/dist",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Providers: ProvidersConfig{
			Perplexity: ProviderConfig{
				Model:          DefaultPerplexityModel,
				BaseURL:        DefaultPerplexityURL,
				TimeoutSeconds: 45,
			},
			OpenAI: ProviderConfig{
				Model:          DefaultOpenAIModel,
				BaseURL:        DefaultOpenAIURL,
				TimeoutSeconds: 60,
			},
		},
		Mesh: MeshConfig{
			SeedDelayMs:      3200,
			MessagesPerAgent: DefaultMessagesPerAgent,
		},
		Cache: CacheConfig{
			Store:      "sqlite",
			TTLMinutes: 24 * 60,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ListenHost maps the bind mode to a listen host.
func (s ServerConfig) ListenHost() string {
	switch s.Bind {
	case "loopback":
		return "127.0.0.1"
	case "custom":
		return s.CustomBindHost
	default:
		return "0.0.0.0"
	}
}

// Production reports whether the server runs in production mode.
func (s ServerConfig) Production() bool {
	return s.Env == "production"
}
