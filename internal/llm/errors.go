package llm

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrEmptyCompletion marks a completion that returned no content.
var ErrEmptyCompletion = errors.New("empty completion")

// ConfigError is returned when a provider is called without credentials.
type ConfigError struct {
	Provider string
	EnvVar   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s API key is not configured. Set %s in your environment.", e.Provider, e.EnvVar)
}

// ProviderError is returned when an LLM provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int   // HTTP status code, 0 for transport failures
	Err      error // underlying transport error, if any
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err means the provider could not be reached
// at all: name resolution failed or the connection was refused.
func IsNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout()
}
