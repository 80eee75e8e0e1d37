package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"riskatlas-api/internal/models"
)

type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// Complete replays all but the last turn as chat history and sends the last
// turn as the new message.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("gemini: no messages to send")
	}

	model := c.client.GenerativeModel(req.Model)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	last := len(req.Messages) - 1
	cs := model.StartChat()
	cs.History = geminiHistory(req.Messages[:last])

	resp, err := cs.SendMessage(ctx, genai.Text(req.Messages[last].Content))
	if err != nil {
		return nil, err
	}
	return geminiCompletion(resp)
}

func geminiHistory(msgs []models.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}

func geminiCompletion(resp *genai.GenerateContentResponse) (*Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyCompletion
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil, ErrEmptyCompletion
	}

	text, _ := content.Parts[0].(genai.Text)
	completion := &Completion{Text: string(text)}
	if resp.UsageMetadata != nil {
		completion.Usage = models.Usage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return completion, nil
}
