package model

import "time"

// Message is a single utterance in a conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Exchange is one completed conversation turn: the user's message and the
// assistant's reply. It is the unit the classifier extracts memories from.
type Exchange struct {
	UserID            string    `json:"user_id"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Intent            string    `json:"intent,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}
