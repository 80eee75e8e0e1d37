package models

import "testing"

func TestChatRequest_Conversation(t *testing.T) {
	req := ChatRequest{
		Message: "and pricing?",
		History: []ChatMessage{
			{Role: RoleUser, Content: "what is RiskAtlas?"},
			{Role: RoleAssistant, Content: "a risk platform"},
		},
	}

	conv := req.Conversation()
	if len(conv) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(conv))
	}
	if conv[0] != req.History[0] || conv[1] != req.History[1] {
		t.Errorf("History not preserved in order: %+v", conv)
	}
	if conv[2].Role != RoleUser || conv[2].Content != "and pricing?" {
		t.Errorf("Unexpected trailing turn %+v", conv[2])
	}

	// The request's own history must not be mutated by appending.
	if len(req.History) != 2 {
		t.Errorf("History mutated: %+v", req.History)
	}
}

func TestChatRequest_ConversationEmptyHistory(t *testing.T) {
	conv := ChatRequest{Message: "hi"}.Conversation()
	if len(conv) != 1 || conv[0].Content != "hi" {
		t.Errorf("Unexpected conversation %+v", conv)
	}
}

func TestValidRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{"user", true},
		{"assistant", true},
		{"system", false},
		{"", false},
		{"User", false},
	}

	for _, tc := range tests {
		if got := ValidRole(tc.role); got != tc.expected {
			t.Errorf("ValidRole(%q) = %v, expected %v", tc.role, got, tc.expected)
		}
	}
}
