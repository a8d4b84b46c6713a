package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Sender sends a prompt to a generative text service. Implementations never
// fail: any error is logged and mapped to an empty string.
type Sender interface {
	Send(ctx context.Context, prompt string) string
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// Compile-time check: *Client satisfies Sender.
var _ Sender = (*Client)(nil)

// New creates a new LLM client. A zero timeout disables the per-call deadline.
func New(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		timeout: timeout,
	}
}

// Complete sends a single user message and returns the assistant's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &ServiceError{Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Op: "chat completion", Err: fmt.Errorf("no choices returned")}
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", c.model, "chars", len(raw))
	return raw, nil
}

// Send is Complete with the degrade policy applied: failures become "".
func (c *Client) Send(ctx context.Context, prompt string) string {
	out, err := c.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("LLM call failed", "model", c.model, "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

// Ping checks that the endpoint answers a model listing request.
func (c *Client) Ping(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return &ServiceError{Op: "list models", Err: err}
	}
	return nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
