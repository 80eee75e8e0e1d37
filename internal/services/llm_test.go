package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskatlas-api/internal/config"
)

func TestNewLLMClient_MissingKeyReturnsNil(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderAnthropic}

	client, closeFn, err := NewLLMClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, client)
	closeFn()
}

func TestNewLLMClient_SelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		expected any
	}{
		{"anthropic", &config.Config{LLMProvider: config.ProviderAnthropic, AnthropicAPIKey: "a"}, &AnthropicClient{}},
		{"openai", &config.Config{LLMProvider: config.ProviderOpenAI, OpenAIAPIKey: "o"}, &OpenAIClient{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, closeFn, err := NewLLMClient(context.Background(), tc.cfg)
			require.NoError(t, err)
			defer closeFn()
			assert.IsType(t, tc.expected, client)
		})
	}
}

func TestNewLLMClient_UnknownProvider(t *testing.T) {
	cfg := &config.Config{LLMProvider: "llama", AnthropicAPIKey: "a"}

	_, _, err := NewLLMClient(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrUnknownProvider)
}
