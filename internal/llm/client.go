// Package llm is a client for OpenAI-compatible completion endpoints with a
// bounded retry budget. Callers treat an exhausted budget as an absent
// result, never as a fatal condition.
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

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Config configures the client. Zero values get sensible defaults.
type Config struct {
	BaseURL   string
	APIKey    string
	BaseModel string // raw completions
	ChatModel string // chat completions

	MaxAttempts int           // default 3
	RetryDelay  time.Duration // default 1s
}

// Client talks to an OpenAI-compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	baseModel  string
	chatModel  string
	retry      retrypolicy.RetryPolicy[string]
}

// NewClient creates a client for the given endpoint.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	retry := retrypolicy.NewBuilder[string]().
		WithDelay(cfg.RetryDelay).
		WithMaxRetries(cfg.MaxAttempts - 1).
		Build()

	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		baseModel:  cfg.BaseModel,
		chatModel:  cfg.ChatModel,
		retry:      retry,
	}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type chatRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete generates raw text from the base model. Retried up to the attempt
// budget; empty output counts as a failed attempt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return failsafe.With(c.retry).Get(func() (string, error) {
		body := completionRequest{
			Prompt:      prompt,
			Model:       c.baseModel,
			MaxTokens:   512,
			Temperature: 1,
			TopP:        0.95,
			Stop:        []string{"<|im_end|>", "<"},
		}
		var resp completionResponse
		if err := c.post(ctx, "/completions", body, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Text) == "" {
			return "", fmt.Errorf("empty completion")
		}
		return resp.Choices[0].Text, nil
	})
}

// Chat runs one chat exchange against the instruct model.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return failsafe.With(c.retry).Get(func() (string, error) {
		body := chatRequest{
			Messages: []Message{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Model:       c.chatModel,
			MaxTokens:   512,
			Temperature: 1,
			TopP:        0.95,
		}
		var resp chatResponse
		if err := c.post(ctx, "/chat/completions", body, &resp); err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return "", fmt.Errorf("empty chat response")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
