package mcp

import (
	"fmt"
	"strings"
	"sync"
)

// keyFor derives a pool key from a server argv by joining it with spaces,
// so identical argv always map to the same pooled session.
func keyFor(argv []string) string {
	return strings.Join(argv, " ")
}

// SessionPool keeps one long-lived Session per distinct capability-server
// argv, starting it lazily on first use and reusing it for every
// subsequent call.
type SessionPool struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionPool returns an empty pool.
func NewSessionPool() *SessionPool {
	return &SessionPool{sessions: make(map[string]*Session)}
}

// GetOrStart returns the pooled session for argv, starting and
// handshaking a new one if none exists yet.
func (p *SessionPool) GetOrStart(argv []string) (*Session, error) {
	key := keyFor(argv)

	p.mu.Lock()
	if s, ok := p.sessions[key]; ok {
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s := NewPoolSession(argv)
	if err := s.Start(); err != nil {
		return nil, fmt.Errorf("mcp: start server %q: %w", key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.sessions[key]; ok {
		// Lost the race to a concurrent starter; keep the winner, drop ours.
		_ = s.Close()
		return existing, nil
	}
	p.sessions[key] = s
	return s, nil
}

// Probe starts a throwaway session with the 8-second deadline and
// immediately lists its tools, without adding it to the pool. Used to
// validate a server configuration and discover its capabilities up front.
func (p *SessionPool) Probe(argv []string) ([]ToolSummary, error) {
	s := NewProbeSession(argv)
	if err := s.Start(); err != nil {
		return nil, fmt.Errorf("mcp: probe %q: %w", keyFor(argv), err)
	}
	defer func() { _ = s.Close() }()
	return s.ListTools(), nil
}

// CloseAll terminates every pooled session. Errors from individual
// sessions are ignored; this is best-effort shutdown cleanup.
func (p *SessionPool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, s := range p.sessions {
		_ = s.Close()
		delete(p.sessions, key)
	}
}
