// Package gateway is the widget-side HTTP client for the chat API: session
// saves, admin-reply polling, and the completion proxy, implementing the
// chat core's Gateway and Completer contracts.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/app"
	"github.com/KiWA001/kiwa-labs/internal/chat"
)

const maxErrorBodyBytes = 2048

// Client talks to the chat API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete proxies one consultant turn through POST /api/chat.
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (chat.CompletionResult, error) {
	body := app.ChatRequest{
		SessionID:      req.SessionID,
		Message:        req.Message,
		ContextSummary: req.ContextSummary,
		RecentMessages: req.History,
	}
	var result chat.CompletionResult
	if err := c.postJSON(ctx, "/api/chat", body, &result); err != nil {
		return chat.CompletionResult{}, err
	}
	return result, nil
}

// SaveSession upserts the snapshot via POST /api/chat/save.
func (c *Client) SaveSession(ctx context.Context, snap chat.Snapshot) error {
	return c.postJSON(ctx, "/api/chat/save", snap, nil)
}

// AdminMessages polls GET /api/chat/poll for admin replies after afterID.
func (c *Client) AdminMessages(ctx context.Context, sessionID, afterID string) ([]chat.Message, error) {
	query := url.Values{}
	query.Set("sessionId", sessionID)
	if afterID != "" {
		query.Set("after", afterID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/poll?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var payload struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode poll response: %w", err)
	}
	return payload.Messages, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if target == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func apiError(resp *http.Response) error {
	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var payload struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(errorBody, &payload); err == nil && payload.Code != "" {
		return fmt.Errorf("api error: %s %s: %s", resp.Status, payload.Code, payload.Error)
	}
	return fmt.Errorf("api error: %s - %s", resp.Status, string(errorBody))
}
