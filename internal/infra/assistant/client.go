package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calemaley/airbnb/internal/app/policies"
)

// systemPrompt pins the model to platform topics so the widget cannot be
// repurposed as a general chatbot.
const systemPrompt = "You are the StaysKenya help assistant. Answer only questions about " +
	"booking stays, listing a property, host registration, payments, and platform policies " +
	"in Kenya. If the question is off topic, say you can only help with StaysKenya. " +
	"Prices are in Kenyan shillings."

// GeminiClient implements the assistant port over the Gemini generateContent API.
type GeminiClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Model   string
	Logger  *slog.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Answer(ctx context.Context, question string, history []policies.AssistantTurn) (string, error) {
	if err := c.ensureConfigured(); err != nil {
		return "", err
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
	}
	for _, turn := range history {
		role := "user"
		if strings.EqualFold(turn.Role, "assistant") || strings.EqualFold(turn.Role, "model") {
			role = "model"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	payload.Contents = append(payload.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: question}},
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.BaseURL, "/"), c.Model, c.APIKey)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(request)
	if err != nil {
		c.logError("assistant request failed", err)
		return "", fmt.Errorf("%w: %w", policies.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("assistant: upstream returned status %d: %s", resp.StatusCode, string(snippet))
		c.logError("assistant returned error", err)
		return "", fmt.Errorf("%w: %w", policies.ErrAssistantUnavailable, err)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logError("assistant decode failed", err)
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", policies.ErrAssistantUnavailable
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func (c *GeminiClient) ensureConfigured() error {
	switch {
	case c == nil || c.Client == nil:
		return errors.New("assistant: http client not configured")
	case c.BaseURL == "":
		return errors.New("assistant: base url not configured")
	case c.APIKey == "":
		return errors.New("assistant: api key not configured")
	case c.Model == "":
		return errors.New("assistant: model not configured")
	default:
		return nil
	}
}

func (c *GeminiClient) logError(msg string, err error) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Error(msg, "error", err)
}

var _ policies.AssistantPort = (*GeminiClient)(nil)
