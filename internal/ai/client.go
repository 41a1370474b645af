package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUpstream marks a completion-service failure (timeout, non-2xx,
// unusable body). Callers degrade it to "could not parse" toward the
// user but must not confuse it with a clean empty result.
var ErrUpstream = errors.New("completion service failure")

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the strategy interface over completion providers.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// Config selects and configures a completion provider.
type Config struct {
	Provider  string // "siliconflow" (default) or "openai"
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

const (
	defaultSiliconFlowBase = "https://api.siliconflow.cn/v1"
	defaultOpenAIBase      = "https://api.openai.com/v1"
	defaultModel           = "deepseek-ai/DeepSeek-V3"
	defaultTimeout         = 30 * time.Second
	defaultMaxTokens       = 1024
)

// NewCompleter builds the configured provider. All current providers
// speak the OpenAI-compatible chat-completions API and differ only in
// their defaults; adding a genuinely different protocol means adding
// another Completer implementation here, not branching at call sites.
func NewCompleter(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "", "siliconflow":
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultSiliconFlowBase
		}
	case "openai":
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultOpenAIBase
		}
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	return &openAIClient{
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// openAIClient speaks the OpenAI-compatible chat completions API.
type openAIClient struct {
	model      string
	apiKey     string
	baseURL    string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      false,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUpstream)
	}

	return parsed.Choices[0].Message.Content, nil
}
