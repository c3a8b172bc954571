package chat

import (
	"context"
	"time"
)

// Poller periodically pulls admin-authored messages for one session and
// merges them into the log. Each tick is best effort: a failed fetch is
// logged and retried on the next tick, never surfaced to the user.
type Poller struct {
	session  *Session
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// StartPolling launches the background synchronizer. Calling it again while
// a poller is running is a no-op.
func (s *Session) StartPolling(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller != nil || s.cfg.Gateway == nil {
		return
	}
	pctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		session:  s,
		interval: s.cfg.PollInterval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.poller = p
	go p.run(pctx)
}

// StopPolling stops the synchronizer and waits for the in-flight tick.
func (s *Session) StopPolling() {
	s.mu.Lock()
	p := s.poller
	s.poller = nil
	s.mu.Unlock()
	if p == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	s := p.session
	s.mu.Lock()
	sessionID := s.id
	afterID := s.lastAdminID
	s.mu.Unlock()

	batch, err := s.cfg.Gateway.AdminMessages(ctx, sessionID, afterID)
	if err != nil {
		if ctx.Err() == nil {
			s.cfg.Logf("chat: poll admin messages: %v", err)
		}
		return
	}
	if len(batch) > 0 {
		s.AppendAdminMessages(batch)
	}
}
