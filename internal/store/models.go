package store

import (
	"time"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

// SessionRecord is one persisted chat session row with its admin replies
// merged into the message log.
type SessionRecord struct {
	SessionID   string            `json:"sessionId"`
	Messages    []chat.Message    `json:"messages"`
	Status      string            `json:"status"`
	ContactInfo *chat.ContactInfo `json:"contactInfo,omitempty"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// AdminMessage is one admin-console reply awaiting pickup by the widget's
// polling loop.
type AdminMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
