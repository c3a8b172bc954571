// Package chat implements the consultant chat core: the session message log,
// hand-off detection, and the polling synchronizer that pulls admin replies
// into a live session.
package chat

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// Session status values.
const (
	StatusActive           = "active"
	StatusHandoffRequested = "handoff_requested"
)

// Preferred contact methods for a hand-off.
const (
	ContactEmail        = "email"
	ContactWhatsApp     = "whatsapp"
	ContactContinueChat = "continue_chat"
)

// WelcomeMessage seeds every fresh session.
const WelcomeMessage = "What would you like to build?"

// Message is one entry in the session log. Messages are immutable once
// appended; admin messages arrive asynchronously and are merged by id.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ContactInfo is captured once per hand-off. The chosen method must have a
// matching field present.
type ContactInfo struct {
	Email            string `json:"email,omitempty"`
	WhatsApp         string `json:"whatsapp,omitempty"`
	PreferredContact string `json:"preferredContact,omitempty"`
}

// Snapshot is the wire/storage form of a session: the full message log plus
// metadata, upserted idempotently by session id.
type Snapshot struct {
	SessionID   string       `json:"sessionId"`
	Messages    []Message    `json:"messages"`
	LastUpdated string       `json:"lastUpdated"`
	Status      string       `json:"status,omitempty"`
	ContactInfo *ContactInfo `json:"contactInfo,omitempty"`
}

// CompletionRequest is one consultant round trip.
type CompletionRequest struct {
	SessionID      string
	Message        string
	History        []Message
	ContextSummary string
}

// CompletionResult is the structured reply from the completion service.
type CompletionResult struct {
	Response        string `json:"response"`
	ContextSummary  string `json:"contextSummary"`
	ReadyForHandoff bool   `json:"readyForHandoff"`
}

var messageSeq atomic.Int64

// NewMessageID generates a unique, timestamp-prefixed message id. The
// timestamp prefix keeps ids roughly ordered; the sequence suffix keeps two
// appends inside the same millisecond distinct.
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixMilli(), messageSeq.Add(1))
}

// ValidateContact checks that the chosen contact method has its field.
func ValidateContact(info ContactInfo) error {
	switch info.PreferredContact {
	case ContactEmail:
		if strings.TrimSpace(info.Email) == "" {
			return fmt.Errorf("email is required for email contact")
		}
	case ContactWhatsApp:
		if strings.TrimSpace(info.WhatsApp) == "" {
			return fmt.Errorf("whatsapp number is required for whatsapp contact")
		}
	case ContactContinueChat:
		// Nothing to validate; the conversation continues in place.
	default:
		return fmt.Errorf("unknown contact method %q", info.PreferredContact)
	}
	return nil
}
