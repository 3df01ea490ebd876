package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calemaley/airbnb/internal/app/policies"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &GeminiClient{
		Client:  server.Client(),
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash",
	}
}

func TestAnswerSendsHistoryAndSystemPrompt(t *testing.T) {
	var got geminiRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Bookings are confirmed after payment."}]}}]}`))
	})

	history := []policies.AssistantTurn{
		{Role: "user", Content: "How do bookings work?"},
		{Role: "assistant", Content: "You pick dates and pay."},
	}
	answer, err := client.Answer(context.Background(), "When is it confirmed?", history)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "Bookings are confirmed after payment." {
		t.Fatalf("answer = %q", answer)
	}
	if got.SystemInstruction == nil || len(got.SystemInstruction.Parts) == 0 {
		t.Fatal("system instruction missing")
	}
	if len(got.Contents) != 3 {
		t.Fatalf("contents = %d turns, want 3", len(got.Contents))
	}
	if got.Contents[1].Role != "model" {
		t.Fatalf("history assistant role mapped to %q, want model", got.Contents[1].Role)
	}
	if got.Contents[2].Parts[0].Text != "When is it confirmed?" {
		t.Fatalf("last turn = %q", got.Contents[2].Parts[0].Text)
	}
}

func TestAnswerUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := client.Answer(context.Background(), "hello", nil)
	if !errors.Is(err, policies.ErrAssistantUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrAssistantUnavailable", err)
	}
}

func TestAnswerEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Answer(context.Background(), "hello", nil)
	if !errors.Is(err, policies.ErrAssistantUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrAssistantUnavailable", err)
	}
}
