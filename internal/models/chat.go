package models

import "time"

// Role tags who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TimestampLayout is the ISO-8601 form stored in the history ("ts").
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ChatMessage represents a single turn kept in the local history.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"ts"`
}

// NewChatMessage stamps a turn with the given time in UTC.
func NewChatMessage(role Role, content string, at time.Time) ChatMessage {
	return ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the chat endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the body returned on any non-2xx answer.
type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}
