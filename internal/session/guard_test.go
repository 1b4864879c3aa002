package session

import (
	"testing"
	"time"
)

func guardAt(started time.Time, timeout time.Duration, now *time.Time) *Guard {
	return &Guard{
		startedAt: started,
		timeout:   timeout,
		now:       func() time.Time { return *now },
	}
}

func TestGuardValidStrictlyBeforeDeadline(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := started
	g := guardAt(started, 15*time.Minute, &now)

	if !g.Valid() {
		t.Fatalf("Valid() at start = false, want true")
	}

	now = started.Add(15*time.Minute - time.Nanosecond)
	if !g.Valid() {
		t.Fatalf("Valid() just before deadline = false, want true")
	}

	now = started.Add(15 * time.Minute)
	if g.Valid() {
		t.Fatalf("Valid() at deadline = true, want false")
	}

	now = started.Add(15*time.Minute + time.Second)
	if g.Valid() {
		t.Fatalf("Valid() after deadline = true, want false")
	}
}

func TestGuardExpiresAtAndRemaining(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := started.Add(5 * time.Minute)
	g := guardAt(started, 15*time.Minute, &now)

	if got, want := g.ExpiresAt(), started.Add(15*time.Minute); !got.Equal(want) {
		t.Fatalf("ExpiresAt() = %v, want %v", got, want)
	}
	if got, want := g.Remaining(), 10*time.Minute; got != want {
		t.Fatalf("Remaining() = %v, want %v", got, want)
	}

	now = started.Add(20 * time.Minute)
	if got := g.Remaining(); got != 0 {
		t.Fatalf("Remaining() after expiry = %v, want 0", got)
	}
}

func TestNewGuardDefaultTimeout(t *testing.T) {
	g := NewGuard(0)
	if !g.Valid() {
		t.Fatalf("fresh guard should be valid")
	}
	if got, want := g.ExpiresAt().Sub(g.StartedAt()), 15*time.Minute; got != want {
		t.Fatalf("default window = %v, want %v", got, want)
	}
}
