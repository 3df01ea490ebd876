package policies

import (
	"context"
	"errors"
)

var ErrAssistantUnavailable = errors.New("assistant: upstream unavailable")

// AssistantPort answers guest questions about the platform. Implementations
// are expected to keep responses on booking, pricing, and hosting topics.
type AssistantPort interface {
	Answer(ctx context.Context, question string, history []AssistantTurn) (string, error)
}

type AssistantTurn struct {
	Role    string
	Content string
}
