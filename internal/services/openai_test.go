package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskatlas-api/internal/models"
)

type mockOpenAI struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (m *mockOpenAI) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.req = r
	return m.resp, m.err
}

func TestOpenAIClient_MapsRolesAndUsage(t *testing.T) {
	mock := &mockOpenAI{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "Hello!"}}},
		Usage:   openai.Usage{PromptTokens: 5, CompletionTokens: 3},
	}}
	client := &OpenAIClient{api: mock}

	completion, err := client.Complete(context.Background(), CompletionRequest{
		Model:     "gpt-4o-mini",
		MaxTokens: 1024,
		System:    "sys",
		Messages: []models.ChatMessage{
			{Role: models.RoleAssistant, Content: "earlier"},
			{Role: models.RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", completion.Text)
	assert.Equal(t, models.Usage{InputTokens: 5, OutputTokens: 3}, completion.Usage)

	require.Len(t, mock.req.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, mock.req.Messages[0].Role)
	assert.Equal(t, "sys", mock.req.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, mock.req.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, mock.req.Messages[2].Role)
	assert.Equal(t, 1024, mock.req.MaxTokens)
	assert.Equal(t, "gpt-4o-mini", mock.req.Model)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	client := &OpenAIClient{api: &mockOpenAI{}}
	_, err := client.Complete(context.Background(), CompletionRequest{Model: "m", MaxTokens: 1})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIClient_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
		}`))
	}))
	defer srv.Close()

	completion, err := NewOpenAIClient("sk-test", srv.URL).Complete(context.Background(), CompletionRequest{
		Model:     "gpt-4o-mini",
		MaxTokens: 16,
		Messages:  []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", completion.Text)
	assert.Equal(t, int64(8), completion.Usage.InputTokens+completion.Usage.OutputTokens)
}
