package services

import (
	"context"
	"errors"
	"fmt"

	"riskatlas-api/internal/config"
	"riskatlas-api/internal/models"
)

// LLMClient is the upstream chat-completion seam used by the chat handler.
// Implementations must not retry; one failure is one request failure.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest is the provider-neutral shape of one generation call.
type CompletionRequest struct {
	Model     string
	MaxTokens int
	System    string
	Messages  []models.ChatMessage
}

// Completion is the first generated text block plus token accounting.
type Completion struct {
	Text  string
	Usage models.Usage
}

// ErrEmptyCompletion is returned when the upstream reply carries no content.
var ErrEmptyCompletion = errors.New("upstream response contained no content")

// NewLLMClient builds the client for cfg.LLMProvider. It returns a nil client
// when the provider's credential is not configured; the returned close func
// is always safe to call.
func NewLLMClient(ctx context.Context, cfg *config.Config) (LLMClient, func(), error) {
	noop := func() {}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, noop, nil
	}

	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewAnthropicClient(apiKey, cfg.LLMBaseURL), noop, nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(apiKey, cfg.LLMBaseURL), noop, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, apiKey)
		if err != nil {
			return nil, noop, err
		}
		return client, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.LLMProvider)
	}
}
