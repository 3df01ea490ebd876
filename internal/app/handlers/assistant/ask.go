package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/calemaley/airbnb/internal/app/dto"
	"github.com/calemaley/airbnb/internal/app/policies"
	"github.com/calemaley/airbnb/internal/app/queries"
)

const askAssistantKey = "assistant.ask"

const maxHistoryTurns = 12

var ErrQuestionRequired = errors.New("assistant: question is required")

// AskQuery sends a guest question to the platform FAQ assistant.
type AskQuery struct {
	Question string
	History  []dto.AssistantTurn
}

func (q AskQuery) Key() string { return askAssistantKey }

type AskHandler struct {
	Assistant policies.AssistantPort
	Logger    *slog.Logger
}

func (h *AskHandler) Handle(ctx context.Context, q AskQuery) (dto.AssistantAnswer, error) {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return dto.AssistantAnswer{}, ErrQuestionRequired
	}
	if h.Assistant == nil {
		return dto.AssistantAnswer{}, policies.ErrAssistantUnavailable
	}

	history := q.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	turns := make([]policies.AssistantTurn, 0, len(history))
	for _, turn := range history {
		turns = append(turns, policies.AssistantTurn{Role: turn.Role, Content: turn.Content})
	}

	answer, err := h.Assistant.Answer(ctx, question, turns)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("assistant request failed", "error", err)
		}
		return dto.AssistantAnswer{}, err
	}
	return dto.AssistantAnswer{Answer: answer}, nil
}

var _ queries.Handler[AskQuery, dto.AssistantAnswer] = (*AskHandler)(nil)
