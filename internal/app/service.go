// Package app wires the marketing-site core together: the pricing grid
// endpoint, the chat completion proxy, session persistence, and the admin
// console's session/reply/search surface.
package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/KiWA001/kiwa-labs/internal/auth"
	"github.com/KiWA001/kiwa-labs/internal/chat"
	"github.com/KiWA001/kiwa-labs/internal/grid"
	"github.com/KiWA001/kiwa-labs/internal/search"
	"github.com/KiWA001/kiwa-labs/internal/store"
)

// SessionStore is the persistence surface the service needs.
type SessionStore interface {
	UpsertSession(ctx context.Context, snap chat.Snapshot) error
	GetSession(ctx context.Context, sessionID string) (store.SessionRecord, error)
	ListSessions(ctx context.Context) ([]store.SessionRecord, error)
	AppendAdminMessage(ctx context.Context, sessionID, content string) (chat.Message, error)
	AdminMessagesAfter(ctx context.Context, sessionID, afterID string) ([]chat.Message, error)
	Ping(ctx context.Context) error
}

// TranscriptSearch is the transcript index surface.
type TranscriptSearch interface {
	Search(q search.Query) search.Response
	IndexTranscript(rec search.TranscriptRecord)
}

// Notifier alerts the team about hand-offs.
type Notifier interface {
	SendHandoffAlert(sessionID string, info chat.ContactInfo, recent []chat.Message) error
}

// Service holds the application logic behind the HTTP surface.
type Service struct {
	store     SessionStore
	completer chat.Completer
	gate      *auth.Gate
	search    TranscriptSearch
	notifier  Notifier
	grid      *grid.Store
}

// Deps are the service's constructor dependencies. Search and Notifier are
// optional; without them search returns empty results and hand-off alerts
// are skipped.
type Deps struct {
	Store     SessionStore
	Completer chat.Completer
	Gate      *auth.Gate
	Search    TranscriptSearch
	Notifier  Notifier
}

func NewService(deps Deps) *Service {
	return &Service{
		store:     deps.Store,
		completer: deps.Completer,
		gate:      deps.Gate,
		search:    deps.Search,
		notifier:  deps.Notifier,
		grid:      grid.NewStore(),
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PricingPayload is the seeded pricing grid served to the landing page.
type PricingPayload struct {
	Columns      []string                 `json:"columns"`
	Rows         int                      `json:"rows"`
	Cells        map[string]grid.CellData `json:"cells"`
	ColumnWidths map[string]int           `json:"columnWidths"`
}

// PricingGrid returns the seeded pricing table plus grid geometry.
func (s *Service) PricingGrid() PricingPayload {
	return PricingPayload{
		Columns:      grid.Columns,
		Rows:         grid.Rows,
		Cells:        s.grid.Snapshot(),
		ColumnWidths: s.grid.ColumnWidths(),
	}
}

// ChatRequest is one consultant turn proxied to the completion service.
type ChatRequest struct {
	SessionID      string         `json:"sessionId"`
	Message        string         `json:"message"`
	ContextSummary string         `json:"contextSummary"`
	RecentMessages []chat.Message `json:"recentMessages"`
}

// Chat runs one completion round trip and applies the keyword hand-off
// override, so every client of this endpoint gets the same hard-override
// semantics.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (chat.CompletionResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return chat.CompletionResult{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "message is required", nil)
	}

	result, err := s.completer.Complete(ctx, chat.CompletionRequest{
		SessionID:      req.SessionID,
		Message:        message,
		History:        req.RecentMessages,
		ContextSummary: req.ContextSummary,
	})
	if err != nil {
		log.Printf("app: completion failed: %v", err)
		return chat.CompletionResult{}, domainError(http.StatusBadGateway, "COMPLETION_FAILED", "Failed to get response from AI", nil)
	}
	return chat.ApplyHandoffOverride(result, message), nil
}

// SaveSession upserts the full snapshot. A transition into
// handoff_requested fires the team alert; every save refreshes the search
// index. Both are fire-and-forget.
func (s *Service) SaveSession(ctx context.Context, snap chat.Snapshot) error {
	if strings.TrimSpace(snap.SessionID) == "" {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR", "sessionId is required", nil)
	}

	wasHandoff := false
	if prev, err := s.store.GetSession(ctx, snap.SessionID); err == nil {
		wasHandoff = prev.Status == chat.StatusHandoffRequested
	} else if !errors.Is(err, store.ErrSessionNotFound) {
		return err
	}

	if err := s.store.UpsertSession(ctx, snap); err != nil {
		return err
	}

	if snap.Status == chat.StatusHandoffRequested && !wasHandoff && snap.ContactInfo != nil && s.notifier != nil {
		info := *snap.ContactInfo
		messages := append([]chat.Message(nil), snap.Messages...)
		go func() {
			if err := s.notifier.SendHandoffAlert(snap.SessionID, info, messages); err != nil {
				log.Printf("app: handoff alert for %s: %v", snap.SessionID, err)
			}
		}()
	}

	if s.search != nil {
		s.search.IndexTranscript(transcriptRecord(snap))
	}
	return nil
}

// PollAdminMessages returns admin replies for one session after the given
// message id.
func (s *Service) PollAdminMessages(ctx context.Context, sessionID, afterID string) ([]chat.Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "sessionId is required", nil)
	}
	return s.store.AdminMessagesAfter(ctx, sessionID, afterID)
}

// AdminLogin checks the shared admin password and issues a bearer token.
func (s *Service) AdminLogin(password string) (string, error) {
	token, err := s.gate.Login(password)
	if err != nil {
		return "", domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password", nil)
	}
	return token, nil
}

// VerifyAdminToken validates an admin bearer token.
func (s *Service) VerifyAdminToken(token string) error {
	_, err := s.gate.Verify(token)
	return err
}

// AdminSessions lists every stored session, newest first, admin replies
// merged in.
func (s *Service) AdminSessions(ctx context.Context) ([]store.SessionRecord, error) {
	records, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []store.SessionRecord{}
	}
	return records, nil
}

// AdminSendMessage stores one admin reply for pickup by the widget.
func (s *Service) AdminSendMessage(ctx context.Context, sessionID, content string) (chat.Message, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(content) == "" {
		return chat.Message{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "sessionId and message are required", nil)
	}
	msg, err := s.store.AppendAdminMessage(ctx, sessionID, content)
	if errors.Is(err, store.ErrSessionNotFound) {
		return chat.Message{}, domainError(http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
	}
	if err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// SearchTranscripts runs a transcript search for the admin console.
func (s *Service) SearchTranscripts(q string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q}
	}
	return s.search.Search(search.Query{Text: q, Limit: limit, Offset: offset})
}

func transcriptRecord(snap chat.Snapshot) search.TranscriptRecord {
	var b strings.Builder
	for i, m := range snap.Messages {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.Content)
	}
	contact := ""
	if snap.ContactInfo != nil {
		if snap.ContactInfo.Email != "" {
			contact = snap.ContactInfo.Email
		} else if snap.ContactInfo.WhatsApp != "" {
			contact = snap.ContactInfo.WhatsApp
		}
	}
	status := snap.Status
	if status == "" {
		status = chat.StatusActive
	}
	return search.TranscriptRecord{
		ID:          snap.SessionID,
		Transcript:  b.String(),
		Status:      status,
		Contact:     contact,
		LastUpdated: snap.LastUpdated,
	}
}
