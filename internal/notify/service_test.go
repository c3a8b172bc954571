package notify

import (
	"strings"
	"testing"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

func TestUnconfiguredSendIsNoop(t *testing.T) {
	s := NewService(Config{})
	if s.IsConfigured() {
		t.Fatal("empty config must not report configured")
	}
	err := s.SendHandoffAlert("session_1", chat.ContactInfo{PreferredContact: chat.ContactEmail}, nil)
	if err != nil {
		t.Errorf("unconfigured send must be a silent no-op, got %v", err)
	}
}

func TestIsConfigured(t *testing.T) {
	s := NewService(Config{
		Host:    "smtp.example.com",
		Port:    "587",
		From:    "alerts@kiwalabs.dev",
		AlertTo: []string{"team@kiwalabs.dev"},
	})
	if !s.IsConfigured() {
		t.Error("expected configured")
	}
}

func TestBuildHandoffBody(t *testing.T) {
	body := buildHandoffBody("session_42", chat.ContactInfo{
		PreferredContact: chat.ContactWhatsApp,
		WhatsApp:         "+2348000000000",
	}, []chat.Message{
		{Role: chat.RoleUser, Content: "I need a booking site"},
		{Role: chat.RoleAssistant, Content: "Happy to help."},
	})

	for _, want := range []string{"session_42", "whatsapp", "+2348000000000", "I need a booking site"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q:\n%s", want, body)
		}
	}
}

func TestBuildHandoffBodyTruncatesHistory(t *testing.T) {
	var history []chat.Message
	for i := 0; i < 20; i++ {
		history = append(history, chat.Message{Role: chat.RoleUser, Content: "turn"})
	}
	body := buildHandoffBody("s", chat.ContactInfo{PreferredContact: chat.ContactContinueChat}, history)
	if got := strings.Count(body, "[user] turn"); got != 6 {
		t.Errorf("expected last 6 turns, got %d", got)
	}
}
