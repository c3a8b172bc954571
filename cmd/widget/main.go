// Command widget is a terminal chat client for the KiWA Labs site widget:
// it talks to the API through the gateway client and resumes sessions from
// Redis, so the same terminal picks up its conversation across restarts.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/chat"
	"github.com/KiWA001/kiwa-labs/internal/config"
	"github.com/KiWA001/kiwa-labs/internal/gateway"
	"github.com/KiWA001/kiwa-labs/internal/session"
)

func main() {
	cfg := config.Load()

	apiURL := os.Getenv("KIWA_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost" + cfg.Addr
	}
	client := gateway.NewClient(apiURL)

	clientID := os.Getenv("KIWA_CLIENT_ID")
	if clientID == "" {
		clientID, _ = os.Hostname()
	}

	sessionCfg := chat.SessionConfig{
		Gateway:      client,
		Completer:    client,
		PollInterval: cfg.WidgetPollInterval,
		Logf:         func(format string, args ...any) {},
	}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		local, err := session.NewRedisStore(cfg.RedisURL, clientID)
		if err != nil {
			log.Printf("redis unavailable, session will not survive restarts: %v", err)
		} else {
			defer local.Close()
			sessionCfg.Local = local
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := chat.NewSession(sessionCfg)
	if err := sess.Init(ctx); err != nil {
		log.Fatalf("session init failed: %v", err)
	}
	defer sess.Close()
	sess.StartPolling(ctx)

	ui := &renderer{}
	ui.flush(sess)

	// Admin replies arrive through the poller; watch the log for them.
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ui.flush(sess)
			}
		}
	}()

	fmt.Printf("session %s (commands: /handoff email|whatsapp|chat, /clear, /quit)\n", sess.SessionID())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := handleLine(ctx, sess, ui, line); quit {
				return
			}
		}
	}
}

func handleLine(ctx context.Context, sess *chat.Session, ui *renderer, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "/quit":
		return true
	case line == "/clear":
		sess.Clear(ctx)
		ui.reset()
		ui.flush(sess)
		return false
	case strings.HasPrefix(line, "/handoff"):
		if err := recordHandoff(ctx, sess, strings.Fields(line)[1:]); err != nil {
			fmt.Printf("! %v\n", err)
			return false
		}
		ui.flush(sess)
		return false
	}

	if _, err := sess.Send(ctx, line); err != nil {
		fmt.Printf("! %v\n", err)
		return false
	}
	ui.flush(sess)
	return false
}

func recordHandoff(ctx context.Context, sess *chat.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: /handoff email <address> | /handoff whatsapp <number> | /handoff chat")
	}
	info := chat.ContactInfo{}
	switch args[0] {
	case "email":
		if len(args) < 2 {
			return fmt.Errorf("usage: /handoff email <address>")
		}
		info.PreferredContact = chat.ContactEmail
		info.Email = args[1]
	case "whatsapp":
		if len(args) < 2 {
			return fmt.Errorf("usage: /handoff whatsapp <number>")
		}
		info.PreferredContact = chat.ContactWhatsApp
		info.WhatsApp = args[1]
	case "chat":
		info.PreferredContact = chat.ContactContinueChat
	default:
		return fmt.Errorf("unknown contact method %q", args[0])
	}
	return sess.RecordHandoff(ctx, info)
}

// renderer prints each message once, keyed by id, regardless of whether it
// arrived from a user turn or the admin poll merge.
type renderer struct {
	mu      sync.Mutex
	printed map[string]struct{}
}

func (r *renderer) reset() {
	r.mu.Lock()
	r.printed = nil
	r.mu.Unlock()
}

func (r *renderer) flush(sess *chat.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.printed == nil {
		r.printed = make(map[string]struct{})
	}
	for _, msg := range sess.Messages() {
		if _, done := r.printed[msg.ID]; done {
			continue
		}
		r.printed[msg.ID] = struct{}{}
		switch msg.Role {
		case chat.RoleUser:
			fmt.Printf("you> %s\n", msg.Content)
		case chat.RoleAdmin:
			fmt.Printf("team> %s\n", msg.Content)
		default:
			fmt.Printf("k-ai> %s\n", msg.Content)
		}
	}
}
