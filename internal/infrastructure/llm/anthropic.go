package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"Zenframe/internal/config"
	"Zenframe/internal/ports"
)

const (
	anthropicDefaultMaxTokens = 1024
	anthropicDefaultModel     = "claude-3-5-haiku-latest"
)

// AnthropicClient implements ports.ChatClient with the Messages API.
type AnthropicClient struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int64
}

var _ ports.ChatClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.LLMConfig, opts ...anthropicoption.RequestOption) *AnthropicClient {
	base := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base = append(base, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		base = append(base, anthropicoption.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	model := cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(append(base, opts...)...),
		model:       anthropic.Model(model),
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends prompt as a single user turn and joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", errors.New("anthropic message: no text content")
	}
	return content, nil
}

// Close is a no-op.
func (c *AnthropicClient) Close() error {
	return nil
}
