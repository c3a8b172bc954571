// Package completion wraps the Mistral chat-completions API behind the chat
// consultant contract: one request per user turn, structured JSON reply,
// tiered fallback parsing for malformed model output.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

const (
	defaultBaseURL = "https://api.mistral.ai"
	defaultModel   = "mistral-tiny"

	maxTokens         = 1500
	temperature       = 0.7
	maxErrorBodyBytes = 2048
)

var (
	ErrUnauthorized = errors.New("completion: invalid api key")
	ErrRateLimited  = errors.New("completion: rate limited")
	ErrUnavailable  = errors.New("completion: service unavailable")
)

// Config holds the completion endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is a minimal chat-completions wrapper implementing chat.Completer.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one consultant round trip: system instructions plus the
// windowed history, one POST, then the tiered parse of whatever the model
// returned.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (chat.CompletionResult, error) {
	payload := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    buildMessages(req),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return chat.CompletionResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return chat.CompletionResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return chat.CompletionResult{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return chat.CompletionResult{}, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return chat.CompletionResult{}, ErrRateLimited
	case resp.StatusCode >= 500:
		return chat.CompletionResult{}, ErrUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return chat.CompletionResult{}, fmt.Errorf("completion error: %s - %s", resp.Status, string(errorBody))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return chat.CompletionResult{}, err
	}
	if len(completion.Choices) == 0 {
		return chat.CompletionResult{}, errors.New("completion: empty response")
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return chat.CompletionResult{}, errors.New("completion: empty response")
	}

	result := ParseReply(content)
	if result.ContextSummary == "" {
		result.ContextSummary = req.ContextSummary
	}
	return result, nil
}

// buildMessages assembles the wire messages: system instructions, the
// running context summary, the windowed history, with the newest user turn
// last (it arrives as the tail of req.History).
func buildMessages(req chat.CompletionRequest) []chatMessage {
	out := []chatMessage{{Role: "system", Content: systemPrompt}}
	if req.ContextSummary != "" {
		out = append(out, chatMessage{
			Role:    "system",
			Content: "Previous conversation context: " + req.ContextSummary,
		})
	}
	for _, m := range windowHistory(req.History) {
		out = append(out, m)
	}
	return out
}
