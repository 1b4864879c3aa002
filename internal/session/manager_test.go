package session

import (
	"context"
	"testing"
	"time"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create("127.0.0.1:1234")
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}
	if s.Guard == nil || s.Transcript == nil {
		t.Fatalf("session missing guard or transcript")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusActive {
		t.Fatalf("status = %q, want %q", got.Status, StatusActive)
	}

	ended, err := m.End(s.ID, StatusClosed)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusClosed {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusClosed)
	}
	if _, err := m.Get(s.ID); err != ErrNotFound {
		t.Fatalf("Get() after End error = %v, want ErrNotFound", err)
	}
}

func TestManagerActiveCount(t *testing.T) {
	m := NewManager(time.Minute)
	a := m.Create("")
	m.Create("")
	if got := m.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount() = %d, want 2", got)
	}
	if _, err := m.End(a.ID, StatusErrored); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if got := m.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
}

func TestManagerJanitorExpiresElapsedWindow(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	s := m.Create("")

	expired := make(chan *Session, 1)
	m.SetExpireHook(func(es *Session) { expired <- es })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case es := <-expired:
		if es.ID != s.ID {
			t.Fatalf("expired session ID = %q, want %q", es.ID, s.ID)
		}
		if es.Status != StatusExpired {
			t.Fatalf("expired status = %q, want %q", es.Status, StatusExpired)
		}
	case <-time.After(time.Second):
		t.Fatalf("janitor did not expire the session")
	}

	if _, err := m.Get(s.ID); err != ErrNotFound {
		t.Fatalf("expired session still registered: err = %v", err)
	}
}
