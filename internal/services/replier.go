package services

import "context"

// Replier produces the assistant answer for one user message.
type Replier interface {
	Model() string
	Reply(ctx context.Context, message string) (string, error)
}

// MockReplier answers without any external API, for offline development.
type MockReplier struct{}

func (MockReplier) Model() string { return "mock-invagro" }

func (MockReplier) Reply(ctx context.Context, message string) (string, error) {
	return "Entendido. (mock) Me pediste: \"" + message + "\"", nil
}
