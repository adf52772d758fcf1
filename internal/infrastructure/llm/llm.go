package llm

import (
	"context"
	"fmt"

	"Zenframe/internal/config"
	"Zenframe/internal/ports"
)

// Client is a chat client that may hold connections.
type Client interface {
	ports.ChatClient
	Close() error
}

// New builds the provider selected by cfg.Provider. An empty API key yields a nil client so that
// every article takes the fallback path.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case config.LLMProviderOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case config.LLMProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case config.LLMProviderGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
