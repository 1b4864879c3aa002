package session

import (
	"sync"
	"time"
)

// Entry is one utterance in the session transcript.
type Entry struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Snapshot is a consistent point-in-time view of the transcript: the
// latest utterance per role plus the ordered log. Snapshots are copies;
// mutating one never affects the live memory.
type Snapshot struct {
	Latest  map[string]string
	History []Entry
}

// LastUser returns the most recent user utterance, or "" if the user has
// not spoken yet.
func (s Snapshot) LastUser() string {
	return s.Latest[RoleUser]
}

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Memory holds the conversational state for one session. The inbound loop
// writes the user role, the outbound loop writes the agent role, and the
// routing pipeline reads snapshots; all three may run concurrently.
// Memory lives and dies with its session, nothing is persisted.
type Memory struct {
	mu     sync.RWMutex
	latest map[string]string
	log    []Entry
}

func NewMemory() *Memory {
	return &Memory{latest: make(map[string]string)}
}

// Store overwrites the latest utterance for role and appends it to the
// ordered log. Last write wins per role.
func (m *Memory) Store(role, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[role] = text
	m.log = append(m.log, Entry{Role: role, Text: text, At: time.Now()})
}

// Snapshot copies the current state under the read lock so readers never
// observe a half-applied write.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	latest := make(map[string]string, len(m.latest))
	for k, v := range m.latest {
		latest[k] = v
	}
	history := make([]Entry, len(m.log))
	copy(history, m.log)
	return Snapshot{Latest: latest, History: history}
}

// Len returns the number of logged entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.log)
}
