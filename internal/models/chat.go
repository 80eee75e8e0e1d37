package models

// Conversation roles accepted in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// Conversation returns the history followed by the new user turn.
func (r ChatRequest) Conversation() []ChatMessage {
	msgs := make([]ChatMessage, 0, len(r.History)+1)
	msgs = append(msgs, r.History...)
	return append(msgs, ChatMessage{Role: RoleUser, Content: r.Message})
}

// ValidRole reports whether role may appear in a conversation turn.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// Usage is the provider-reported token accounting for one generation.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
