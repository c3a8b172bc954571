package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

func completionServer(t *testing.T, status int, content string, capture *chatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func TestCompleteRoundTrip(t *testing.T) {
	var captured chatCompletionRequest
	srv := completionServer(t, http.StatusOK,
		`{"response": "A booking site runs N280k-N680k.", "contextSummary": "booking pricing", "readyForHandoff": false}`,
		&captured)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	result, err := client.Complete(context.Background(), chat.CompletionRequest{
		Message: "how much is a booking site?",
		History: []chat.Message{
			{Role: chat.RoleAssistant, Content: chat.WelcomeMessage},
			{Role: chat.RoleUser, Content: "how much is a booking site?"},
		},
		ContextSummary: "greeting done",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Response != "A booking site runs N280k-N680k." {
		t.Errorf("unexpected response: %q", result.Response)
	}
	if result.ContextSummary != "booking pricing" {
		t.Errorf("unexpected summary: %q", result.ContextSummary)
	}

	if captured.Model != defaultModel {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if captured.MaxTokens != maxTokens || captured.Temperature != temperature {
		t.Errorf("unexpected sampling params: %d %v", captured.MaxTokens, captured.Temperature)
	}
	// system prompt + context note + 2 history turns
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 wire messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Error("expected system prompt first")
	}
	if captured.Messages[1].Content != "Previous conversation context: greeting done" {
		t.Errorf("unexpected context note: %q", captured.Messages[1].Content)
	}
	last := captured.Messages[len(captured.Messages)-1]
	if last.Role != "user" || last.Content != "how much is a booking site?" {
		t.Errorf("expected user turn last, got %+v", last)
	}
}

func TestCompleteKeepsSummaryWhenModelOmitsIt(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"response": "Noted."}`, nil)
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	result, err := client.Complete(context.Background(), chat.CompletionRequest{
		Message:        "ok",
		History:        []chat.Message{{Role: chat.RoleUser, Content: "ok"}},
		ContextSummary: "carried summary",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ContextSummary != "carried summary" {
		t.Errorf("expected prior summary kept, got %q", result.ContextSummary)
	}
}

func TestCompleteStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrUnavailable},
	}
	for _, tc := range cases {
		srv := completionServer(t, tc.status, "", nil)
		client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
		_, err := client.Complete(context.Background(), chat.CompletionRequest{
			History: []chat.Message{{Role: chat.RoleUser, Content: "hi"}},
		})
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		srv.Close()
	}
}

func TestWindowHistoryUnderCap(t *testing.T) {
	history := make([]chat.Message, 50)
	for i := range history {
		history[i] = chat.Message{Role: chat.RoleUser, Content: fmt.Sprintf("turn %d", i)}
	}
	wire := windowHistory(history)
	if len(wire) != 50 {
		t.Errorf("expected full history under cap, got %d", len(wire))
	}
}

func TestWindowHistoryElidesMiddle(t *testing.T) {
	history := make([]chat.Message, 80)
	for i := range history {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		history[i] = chat.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	wire := windowHistory(history)

	// first 5 + synthetic note + last 45
	if len(wire) != 51 {
		t.Fatalf("expected 51 wire messages, got %d", len(wire))
	}
	if wire[4].Content != "turn 4" {
		t.Errorf("unexpected leading window tail: %q", wire[4].Content)
	}
	note := wire[5]
	if note.Role != "system" || note.Content != "[30 earlier turns elided to fit the context window]" {
		t.Errorf("unexpected elision note: %+v", note)
	}
	if wire[6].Content != "turn 35" {
		t.Errorf("unexpected trailing window head: %q", wire[6].Content)
	}
	if wire[50].Content != "turn 79" {
		t.Errorf("expected newest turn last, got %q", wire[50].Content)
	}
}
