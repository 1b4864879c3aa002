package session

import "time"

// Guard answers "is this session still inside its fixed lifetime window?".
// It is read-only after construction, so both connection loops may call it
// concurrently without synchronization. There is no reset: a new session
// gets a new guard.
type Guard struct {
	startedAt time.Time
	timeout   time.Duration
	now       func() time.Time
}

func NewGuard(timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &Guard{
		startedAt: time.Now(),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Valid reports whether the current time is strictly before the expiry
// deadline. A check at or after startedAt+timeout returns false.
func (g *Guard) Valid() bool {
	return g.now().Sub(g.startedAt) < g.timeout
}

// ExpiresAt returns the absolute deadline. The orchestrator derives a
// context deadline from it so in-flight capability calls are cancelled
// at expiry instead of waiting for the next loop iteration.
func (g *Guard) ExpiresAt() time.Time {
	return g.startedAt.Add(g.timeout)
}

func (g *Guard) StartedAt() time.Time {
	return g.startedAt
}

func (g *Guard) Remaining() time.Duration {
	d := g.timeout - g.now().Sub(g.startedAt)
	if d < 0 {
		return 0
	}
	return d
}
