package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

// ErrSessionNotFound is returned when an admin reply targets a session id
// that was never saved.
var ErrSessionNotFound = errors.New("session not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertSession writes the full snapshot keyed by session id. Saves are
// idempotent: replaying the same snapshot leaves the row unchanged.
func (s *PostgresStore) UpsertSession(ctx context.Context, snap chat.Snapshot) error {
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	var contact []byte
	if snap.ContactInfo != nil {
		if contact, err = json.Marshal(snap.ContactInfo); err != nil {
			return fmt.Errorf("marshal contact info: %w", err)
		}
	}
	status := snap.Status
	if status == "" {
		status = chat.StatusActive
	}
	lastUpdated := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339Nano, snap.LastUpdated); err == nil {
		lastUpdated = t
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (session_id, messages, status, contact_info, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			messages=EXCLUDED.messages,
			status=EXCLUDED.status,
			contact_info=EXCLUDED.contact_info,
			last_updated=EXCLUDED.last_updated
	`, snap.SessionID, messages, status, nullableJSON(contact), lastUpdated)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession loads one session row with admin replies merged in.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, messages, status, contact_info, last_updated
		FROM chat_sessions WHERE session_id=$1
	`, sessionID)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionRecord{}, err
	}

	admin, err := s.adminMessagesFor(ctx, sessionID)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.Messages = mergeAdmin(rec.Messages, admin)
	return rec, nil
}

// ListSessions returns every session newest-first, each with its admin
// replies merged into the log the same way the widget merges them.
func (s *PostgresStore) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, messages, status, contact_info, last_updated
		FROM chat_sessions
		ORDER BY last_updated DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	adminBySession, err := s.allAdminMessages(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Messages = mergeAdmin(records[i].Messages, adminBySession[records[i].SessionID])
	}
	return records, nil
}

// AppendAdminMessage stores one admin reply for later pickup by the
// widget's polling loop.
func (s *PostgresStore) AppendAdminMessage(ctx context.Context, sessionID, content string) (chat.Message, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_sessions WHERE session_id=$1)`, sessionID).Scan(&exists); err != nil {
		return chat.Message{}, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return chat.Message{}, ErrSessionNotFound
	}

	now := time.Now().UTC()
	msg := chat.Message{
		ID:        chat.NewMessageID(now),
		Role:      chat.RoleAdmin,
		Content:   content,
		Timestamp: now.Format(time.RFC3339Nano),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_messages (id, session_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`, msg.ID, sessionID, content, now)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert admin message: %w", err)
	}
	return msg, nil
}

// AdminMessagesAfter returns admin replies for one session created after
// the message with afterID. An empty or unknown afterID returns the full
// backlog; the widget dedups by id on merge either way.
func (s *PostgresStore) AdminMessagesAfter(ctx context.Context, sessionID, afterID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, created_at
		FROM admin_messages
		WHERE session_id=$1
			AND created_at > COALESCE(
				(SELECT created_at FROM admin_messages WHERE id=$2),
				'epoch'::timestamptz)
		ORDER BY created_at ASC
	`, sessionID, afterID)
	if err != nil {
		return nil, fmt.Errorf("poll admin messages: %w", err)
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		var msg chat.Message
		var createdAt time.Time
		if err := rows.Scan(&msg.ID, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan admin message: %w", err)
		}
		msg.Role = chat.RoleAdmin
		msg.Timestamp = createdAt.UTC().Format(time.RFC3339Nano)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("poll admin messages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionRecord, error) {
	var rec SessionRecord
	var messages []byte
	var contact sql.NullString
	if err := row.Scan(&rec.SessionID, &messages, &rec.Status, &contact, &rec.LastUpdated); err != nil {
		return SessionRecord{}, err
	}
	if err := json.Unmarshal(messages, &rec.Messages); err != nil {
		return SessionRecord{}, fmt.Errorf("unmarshal messages for %s: %w", rec.SessionID, err)
	}
	if contact.Valid && contact.String != "" {
		var info chat.ContactInfo
		if err := json.Unmarshal([]byte(contact.String), &info); err != nil {
			return SessionRecord{}, fmt.Errorf("unmarshal contact for %s: %w", rec.SessionID, err)
		}
		rec.ContactInfo = &info
	}
	return rec, nil
}

func (s *PostgresStore) adminMessagesFor(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.AdminMessagesAfter(ctx, sessionID, "")
}

func (s *PostgresStore) allAdminMessages(ctx context.Context) (map[string][]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, content, created_at
		FROM admin_messages
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load admin messages: %w", err)
	}
	defer rows.Close()

	out := map[string][]chat.Message{}
	for rows.Next() {
		var msg chat.Message
		var sessionID string
		var createdAt time.Time
		if err := rows.Scan(&msg.ID, &sessionID, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan admin message: %w", err)
		}
		msg.Role = chat.RoleAdmin
		msg.Timestamp = createdAt.UTC().Format(time.RFC3339Nano)
		out[sessionID] = append(out[sessionID], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load admin messages: %w", err)
	}
	return out, nil
}

// mergeAdmin appends admin replies the stored log doesn't already contain,
// deduplicating by id. The widget persists merged logs back, so most rows
// already hold their admin messages.
func mergeAdmin(log []chat.Message, admin []chat.Message) []chat.Message {
	if len(admin) == 0 {
		return log
	}
	seen := make(map[string]struct{}, len(log))
	for _, m := range log {
		seen[m.ID] = struct{}{}
	}
	for _, m := range admin {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		log = append(log, m)
	}
	return log
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
