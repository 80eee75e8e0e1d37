package services

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskatlas-api/internal/models"
)

func TestGeminiHistory_MapsAssistantToModel(t *testing.T) {
	history := geminiHistory([]models.ChatMessage{
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "a1"},
	})

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, genai.Text("a1"), history[1].Parts[0])
}

func TestGeminiCompletion(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello!")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 5, CandidatesTokenCount: 3},
	}

	completion, err := geminiCompletion(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", completion.Text)
	assert.Equal(t, models.Usage{InputTokens: 5, OutputTokens: 3}, completion.Usage)
}

func TestGeminiCompletion_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"no parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geminiCompletion(tc.resp)
			assert.ErrorIs(t, err, ErrEmptyCompletion)
		})
	}
}
