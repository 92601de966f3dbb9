package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/meshbuilder/internal/version"
)

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	Name    string // registry name, e.g. "perplexity"
	Display string // name used in error messages, e.g. "Perplexity"
	EnvVar  string // variable that supplies the key, for configuration errors
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatClient calls an OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	cfg    ChatConfig
	client *http.Client
}

// NewChatClient creates a chat completions client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a non-streaming chat completion request.
func (c *ChatClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, &ConfigError{Provider: c.cfg.Display, EnvVar: c.cfg.EnvVar}
	}
	start := time.Now()

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}
	if req.Model != "" {
		body.Model = req.Model
	}
	if req.System != "" {
		body.Messages = append(body.Messages, Message{Role: RoleSystem, Content: req.System})
	}
	body.Messages = append(body.Messages, req.Messages...)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: c.cfg.Display, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: c.cfg.Display, Message: "failed to read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			Provider: c.cfg.Display,
			Code:     resp.StatusCode,
			Message:  errorMessage(resp.StatusCode, respBody),
		}
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{Provider: c.cfg.Display, Code: resp.StatusCode, Message: "failed to parse response: " + err.Error()}
	}

	out := &CompletionResponse{
		Model:    result.Model,
		Duration: time.Since(start),
		Usage: Usage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
		},
	}
	if len(result.Choices) > 0 {
		out.Content = strings.TrimSpace(result.Choices[0].Message.Content)
		out.StopReason = result.Choices[0].FinishReason
	}
	return out, nil
}

// Name returns the provider name.
func (c *ChatClient) Name() string {
	return c.cfg.Name
}

// errorMessage prefers the provider's {"error":{"message":...}} text.
func errorMessage(status int, body []byte) string {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 300 {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
