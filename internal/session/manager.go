package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/pkg/logger"
)

// Manager owns live sessions and evicts idle ones.
type Manager struct {
	profiles *profile.Registry
	idleTTL  time.Duration
	opts     []Option
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates sessions with opts applied to each one.
func NewManager(profiles *profile.Registry, idleTTL time.Duration, opts ...Option) *Manager {
	return &Manager{
		profiles: profiles,
		idleTTL:  idleTTL,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Create(profileName string) (*Session, error) {
	p, err := m.profiles.Get(profileName)
	if err != nil {
		return nil, err
	}
	s := New(p, m.opts...)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	logger.Info("Session created", zap.String("session_id", s.ID()), zap.String("profile", p.Name))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Info("Idle sessions evicted", zap.Int("count", removed), zap.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
