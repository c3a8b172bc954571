package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/util"
)

// ApologyMessage replaces the assistant reply when the completion service
// fails. Hand-off is never set on this path.
const ApologyMessage = "I'm sorry — something went wrong on my end. Please try again in a moment."

const saveTimeout = 10 * time.Second

// LocalStore is the durable client-local storage holding the session id and
// the last message log under well-known keys, so the same client resumes the
// same session across reloads. Implementations must treat corrupt stored
// state as absent rather than failing.
type LocalStore interface {
	SessionID(ctx context.Context) (string, error)
	SetSessionID(ctx context.Context, id string) error
	Snapshot(ctx context.Context, sessionID string) (Snapshot, bool, error)
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// Gateway is the session persistence service: idempotent upserts keyed by
// session id on the write path, admin-authored messages on the read path.
type Gateway interface {
	SaveSession(ctx context.Context, snap Snapshot) error
	AdminMessages(ctx context.Context, sessionID, afterID string) ([]Message, error)
}

// Completer performs one consultant round trip against the completion
// service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// SessionConfig carries every dependency of a Session explicitly; there is
// no package-level state. Construct once at application start and tear down
// with Close.
type SessionConfig struct {
	Local        LocalStore // optional; without it sessions don't survive reloads
	Gateway      Gateway    // optional; without it saves and polling are disabled
	Completer    Completer
	PollInterval time.Duration // default 3s
	Now          func() time.Time
	NewSessionID func() string
	Logf         func(format string, args ...any)
}

// SendResult is the outcome of one user turn.
type SendResult struct {
	Reply           *Message // nil while waiting for a human
	ReadyForHandoff bool
}

// Session owns the ordered message log and all hand-off state for one
// conversation. Every mutation goes through its methods under one mutex;
// the session is the sole synchronization point between the user turn flow
// and the poll merge flow.
type Session struct {
	cfg SessionConfig

	mu              sync.Mutex
	id              string
	messages        []Message
	status          string
	contact         *ContactInfo
	contextSummary  string
	waitingForHuman bool
	lastAdminID     string
	lastUpdated     time.Time

	poller *Poller
}

// NewSession builds a session from its injected dependencies.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewSessionID == nil {
		cfg.NewSessionID = func() string {
			return fmt.Sprintf("session_%d_%s", cfg.Now().UnixMilli(), util.NewID("")[:9])
		}
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	return &Session{cfg: cfg}
}

// Init reads or creates the durable session id, restores any stored message
// log, and seeds the welcome message when the log is empty. Corrupt or
// missing stored state falls back to a fresh seeded session.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Local != nil {
		id, err := s.cfg.Local.SessionID(ctx)
		if err != nil {
			s.cfg.Logf("chat: load session id: %v", err)
		}
		if id == "" {
			id = s.cfg.NewSessionID()
			if err := s.cfg.Local.SetSessionID(ctx, id); err != nil {
				s.cfg.Logf("chat: store session id: %v", err)
			}
		}
		s.id = id

		snap, ok, err := s.cfg.Local.Snapshot(ctx, id)
		if err != nil {
			s.cfg.Logf("chat: load snapshot: %v", err)
		}
		if ok {
			s.messages = append(s.messages[:0], snap.Messages...)
			s.status = snap.Status
			s.contact = snap.ContactInfo
			s.waitingForHuman = snap.Status == StatusHandoffRequested &&
				snap.ContactInfo != nil && snap.ContactInfo.PreferredContact == ContactContinueChat
			for _, m := range snap.Messages {
				if m.Role == RoleAdmin {
					s.lastAdminID = m.ID
				}
			}
		}
	} else {
		s.id = s.cfg.NewSessionID()
	}

	if len(s.messages) == 0 {
		s.appendLocked(RoleAssistant, WelcomeMessage)
	}
	return nil
}

// SessionID returns the durable session id.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Messages returns a copy of the ordered log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Status returns the session status ("" until a hand-off is recorded).
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastUpdated returns the time of the most recent mutation.
func (s *Session) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}

// WaitingForHuman reports whether completion calls are suppressed because
// the user chose to continue the conversation with the team in-chat.
func (s *Session) WaitingForHuman() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitingForHuman
}

// Send appends the user message optimistically, visible and persisted
// before the completion round trip begins, then runs the completion
// service, applies the keyword hand-off override, and appends the assistant
// reply. While waiting for a human the completion service is bypassed
// entirely. Completion failures degrade to the canned apology; Send never
// returns an error for them.
func (s *Session) Send(ctx context.Context, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResult{}, nil
	}

	s.mu.Lock()
	s.appendLocked(RoleUser, text)
	waiting := s.waitingForHuman
	req := CompletionRequest{
		SessionID:      s.id,
		Message:        text,
		History:        append([]Message(nil), s.messages...),
		ContextSummary: s.contextSummary,
	}
	s.mu.Unlock()
	s.persistAsync()

	if waiting {
		return SendResult{}, nil
	}

	result, err := s.cfg.Completer.Complete(ctx, req)
	if err != nil {
		s.cfg.Logf("chat: completion failed: %v", err)
		result = CompletionResult{Response: ApologyMessage}
	} else {
		result = ApplyHandoffOverride(result, text)
	}

	s.mu.Lock()
	reply := s.appendLocked(RoleAssistant, result.Response)
	if result.ContextSummary != "" {
		s.contextSummary = result.ContextSummary
	}
	s.mu.Unlock()
	s.persistAsync()

	return SendResult{Reply: &reply, ReadyForHandoff: result.ReadyForHandoff}, nil
}

// AppendAdminMessages merges a batch of admin-authored messages into the
// log, deduplicating by id and preserving arrival order. Used exclusively by
// the polling synchronizer; re-merging the same batch is a no-op.
func (s *Session) AppendAdminMessages(batch []Message) int {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.messages))
	for _, m := range s.messages {
		seen[m.ID] = struct{}{}
	}
	merged := 0
	for _, m := range batch {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		m.Role = RoleAdmin
		s.messages = append(s.messages, m)
		seen[m.ID] = struct{}{}
		s.lastAdminID = m.ID
		s.lastUpdated = s.cfg.Now()
		merged++
	}
	s.mu.Unlock()
	if merged > 0 {
		s.persistAsync()
	}
	return merged
}

// Clear resets the session to the single seeded welcome message, drops
// hand-off and contact state, and persists the reset.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.messages = s.messages[:0]
	s.status = ""
	s.contact = nil
	s.contextSummary = ""
	s.waitingForHuman = false
	s.lastAdminID = ""
	s.appendLocked(RoleAssistant, WelcomeMessage)
	s.mu.Unlock()
	s.persistAsync()
}

// RecordHandoff validates and stores the contact choice, marks the session
// handoff_requested, and appends the method-specific confirmation. Choosing
// continue_chat additionally suppresses all further completion calls for the
// rest of the session; later user messages are logged and persisted but
// never sent to the AI.
func (s *Session) RecordHandoff(ctx context.Context, info ContactInfo) error {
	if err := ValidateContact(info); err != nil {
		return err
	}

	s.mu.Lock()
	s.status = StatusHandoffRequested
	s.contact = &info
	var confirmation string
	switch info.PreferredContact {
	case ContactEmail:
		confirmation = fmt.Sprintf("Perfect. Our team will reach out to %s within 24 hours. Thank you!", info.Email)
	case ContactWhatsApp:
		confirmation = fmt.Sprintf("Great. Our team will message you on WhatsApp at %s shortly.", info.WhatsApp)
	case ContactContinueChat:
		s.waitingForHuman = true
		confirmation = "You're connected. A member of the KiWA Labs team will reply right here — feel free to add any details while you wait."
	}
	s.appendLocked(RoleAssistant, confirmation)
	s.mu.Unlock()
	s.persistAsync()
	return nil
}

// Snapshot builds the current wire/storage form of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		Messages:    append([]Message(nil), s.messages...),
		LastUpdated: s.lastUpdated.UTC().Format(time.RFC3339Nano),
		Status:      s.status,
		ContactInfo: s.contact,
	}
}

// Close stops the polling synchronizer if one is running.
func (s *Session) Close() {
	s.StopPolling()
}

// appendLocked appends a message and bumps lastUpdated. Caller holds mu.
func (s *Session) appendLocked(role Role, content string) Message {
	now := s.cfg.Now()
	msg := Message{
		ID:        NewMessageID(now),
		Role:      role,
		Content:   content,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
	s.messages = append(s.messages, msg)
	s.lastUpdated = now
	return msg
}

// persistAsync fires a best-effort save of the full log plus metadata to the
// gateway and the client-local store. Failures are logged and retried
// implicitly by the next append.
func (s *Session) persistAsync() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if s.cfg.Gateway != nil {
			if err := s.cfg.Gateway.SaveSession(ctx, snap); err != nil {
				s.cfg.Logf("chat: save session %s: %v", snap.SessionID, err)
			}
		}
		if s.cfg.Local != nil {
			if err := s.cfg.Local.SaveSnapshot(ctx, snap); err != nil {
				s.cfg.Logf("chat: save local snapshot %s: %v", snap.SessionID, err)
			}
		}
	}()
}
