// Package notify sends hand-off alert emails to the sales team via SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
	AlertTo  []string
}

// Service sends hand-off alerts. When SMTP is not configured every send is
// a silent no-op; hand-offs must never fail on a missing mail server.
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true when alerts can actually be sent.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != "" && len(s.config.AlertTo) > 0
}

// SendHandoffAlert emails the team that a visitor asked for a human,
// including how to reach them and the last few turns for context.
func (s *Service) SendHandoffAlert(sessionID string, info chat.ContactInfo, recent []chat.Message) error {
	if !s.IsConfigured() {
		return nil
	}

	subject := fmt.Sprintf("Chat hand-off requested: %s", sessionID)
	body := buildHandoffBody(sessionID, info, recent)
	return s.sendEmail(s.config.AlertTo, subject, body)
}

func buildHandoffBody(sessionID string, info chat.ContactInfo, recent []chat.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A visitor asked to continue with the team.\n\n")
	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Preferred contact: %s\n", info.PreferredContact)
	if info.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", info.Email)
	}
	if info.WhatsApp != "" {
		fmt.Fprintf(&b, "WhatsApp: %s\n", info.WhatsApp)
	}

	if len(recent) > 0 {
		fmt.Fprintf(&b, "\nRecent conversation:\n")
		start := len(recent) - 6
		if start < 0 {
			start = 0
		}
		for _, m := range recent[start:] {
			fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
		}
	}
	return b.String()
}

func (s *Service) sendEmail(to []string, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}
