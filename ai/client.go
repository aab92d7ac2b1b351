// Package ai wraps an OpenAI-compatible text-completion endpoint with
// retry/backoff and a local extractive fallback.
package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completer is the outbound contract to the AI provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleteFunc performs a single completion attempt against the provider.
// The Client supplies retry/backoff around it.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// AttemptRecorder receives per-attempt telemetry. Implemented by
// internal/metrics.Exporter; may be nil.
type AttemptRecorder interface {
	RecordCompletionAttempt(ok bool)
	RecordCompletionRetry()
}

// Config represents completion client configuration.
// Read-only after initialization; safe to share across requests.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxRetries  int     // completion attempts per call (default: 3)
	Timeout     int     // per-attempt timeout in seconds (default: 60)
	Temperature float32 // default: 0.3, summaries want focused output
	MaxTokens   int     // default: 1024

	// RequestsPerMinute caps the outbound call rate. 0 disables limiting.
	RequestsPerMinute int
}

// Client calls the provider with exponential backoff between attempts.
// It keeps no state across calls beyond configuration.
type Client struct {
	apiKey      string
	model       string
	maxRetries  int
	backoffBase time.Duration
	call        CompleteFunc
	sleep       func(time.Duration)
	limiter     *rate.Limiter
	recorder    AttemptRecorder
}

// NewClient creates a completion client backed by an OpenAI-compatible
// endpoint. recorder may be nil.
func NewClient(cfg *Config, recorder AttemptRecorder) *Client {
	c := newClient(cfg, recorder)
	c.call = newOpenAICall(cfg)
	return c
}

// NewClientWithFunc creates a client that delegates each attempt to fn.
// Tests substitute a fake completion function here instead of mutating
// any shared state.
func NewClientWithFunc(cfg *Config, fn CompleteFunc, recorder AttemptRecorder) *Client {
	c := newClient(cfg, recorder)
	c.call = fn
	return c
}

func newClient(cfg *Config, recorder AttemptRecorder) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}
	return &Client{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxRetries:  maxRetries,
		backoffBase: time.Second,
		sleep:       time.Sleep,
		limiter:     limiter,
		recorder:    recorder,
	}
}

// Complete sends prompt to the provider and returns the generated text.
// It fails immediately with an UnavailableError when no API key is
// configured or the prompt is blank. Transient failures are retried up to
// MaxRetries attempts with exponential backoff (1s, 2s, 4s, ...); after
// exhaustion the last underlying error is returned wrapped.
//
// There is no automatic degradation to ExtractiveSummary here; callers
// choose the fallback mode explicitly.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", Unavailable("AI API key not configured", nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", Unavailable("cannot complete empty prompt", nil)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", Unavailable("rate limiter wait interrupted", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		text, err := c.call(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty response from provider")
		}
		if err == nil {
			if c.recorder != nil {
				c.recorder.RecordCompletionAttempt(true)
			}
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		if c.recorder != nil {
			c.recorder.RecordCompletionAttempt(false)
		}
		slog.Warn("AI completion attempt failed",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"error", err,
		)

		if attempt < c.maxRetries-1 {
			// Exponential backoff: 1s, 2s, 4s, ...
			delay := c.backoffBase << attempt
			if c.recorder != nil {
				c.recorder.RecordCompletionRetry()
			}
			c.sleep(delay)
		}
	}

	slog.Error("AI completion failed after retries", "attempts", c.maxRetries, "error", lastErr)
	return "", Unavailable("completion failed after retries", lastErr)
}

// newOpenAICall builds the provider-backed attempt function.
func newOpenAICall(cfg *Config) CompleteFunc {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	model := cfg.Model
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()

		start := time.Now()
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return "", errors.Wrap(err, "completion request failed")
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("provider returned no choices")
		}

		slog.Debug("AI completion response received",
			"model", model,
			"content_length", len(resp.Choices[0].Message.Content),
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp.Choices[0].Message.Content, nil
	}
}
