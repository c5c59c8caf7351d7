package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/askdb/askdb/internal/logger"
)

const defaultMaxTokens = 1024

// AnthropicClient implements Client using the Anthropic Messages API.
// Credentials come from the environment (ANTHROPIC_API_KEY).
type AnthropicClient struct {
	client anthropic.Client
	log    *logger.Logger
}

// NewAnthropicClient creates an Anthropic-backed Client.
func NewAnthropicClient(log *logger.Logger) *AnthropicClient {
	if log == nil {
		log = logger.Nop()
	}
	return &AnthropicClient{
		client: anthropic.NewClient(),
		log:    log,
	}
}

// Complete sends req to the Messages API and returns the response text.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	params := buildParams(req)

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	elapsed := time.Since(start)

	if err != nil {
		c.log.With().Str("model", req.Model).Dur("elapsed", elapsed).Err(err).
			Logger().Error("anthropic call failed")
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	c.log.With().Str("model", req.Model).Dur("elapsed", elapsed).
		Logger().Debug("anthropic call completed")

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

// buildParams maps the provider-neutral request onto Messages API params.
// System messages become system blocks; everything else is sent as a user
// message, preserving order.
func buildParams(req Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: m.Content})
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Opt(req.Temperature),
		System:      system,
		Messages:    messages,
	}
}
