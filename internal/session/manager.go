package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusClosed  Status = "closed"
	StatusErrored Status = "errored"
)

var ErrNotFound = errors.New("session not found")

// Session is the bounded-lifetime context for one client connection.
// The guard and transcript are owned by the connection's orchestrator
// for the session's lifetime; the manager only tracks liveness.
type Session struct {
	ID         string    `json:"session_id"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	Status     Status    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty"`

	Guard      *Guard  `json:"-"`
	Transcript *Memory `json:"-"`
}

// Manager is the registry of live sessions. Sessions have a fixed
// wall-clock window; there is no renewal or heartbeat, so the janitor
// expires by absolute lifetime, not by inactivity.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	timeout  time.Duration
	onExpire func(*Session)
}

func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &Manager{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

func (m *Manager) Timeout() time.Duration { return m.timeout }

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create registers a new active session with a fresh guard and transcript.
func (m *Manager) Create(remoteAddr string) *Session {
	guard := NewGuard(m.timeout)
	s := &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		Status:     StatusActive,
		StartedAt:  guard.StartedAt(),
		Guard:      guard,
		Transcript: NewMemory(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End moves a session to a terminal status and drops it from the registry.
func (m *Manager) End(sessionID string, status Status) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Status == StatusActive {
		s.Status = status
		s.EndedAt = time.Now().UTC()
	}
	delete(m.sessions, sessionID)
	return s, nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

// StartJanitor sweeps sessions whose fixed window elapsed. Each
// connection also polls its own guard; the janitor is a backstop that
// keeps the registry and the active-session gauge honest.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireElapsed()
			}
		}
	}()
}

func (m *Manager) expireElapsed() {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status != StatusActive || s.Guard.Valid() {
			continue
		}
		s.Status = StatusExpired
		s.EndedAt = time.Now().UTC()
		delete(m.sessions, id)
		expired = append(expired, s)
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}
