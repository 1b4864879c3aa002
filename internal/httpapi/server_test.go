package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teomanelik/aiko/internal/config"
	"github.com/teomanelik/aiko/internal/observability"
	"github.com/teomanelik/aiko/internal/session"
	"github.com/teomanelik/aiko/internal/voice"
)

type echoEngine struct{}

func (echoEngine) Respond(_ context.Context, snap session.Snapshot) (string, error) {
	if snap.LastUser() == "" {
		return "hello from the agent", nil
	}
	return "you said: " + snap.LastUser(), nil
}

func newTestServer(t *testing.T, sessionTimeout time.Duration, namespace string) (*httptest.Server, *session.Manager) {
	t.Helper()
	cfg := config.Config{
		SessionTimeout: sessionTimeout,
		SampleRateHz:   16000,
		AllowAnyOrigin: true,
	}
	metrics := observability.NewMetrics(namespace)
	sessions := session.NewManager(sessionTimeout)
	orch := voice.NewOrchestrator(voice.NewMockProvider(), echoEngine{}, metrics)
	srv := httptest.NewServer(New(cfg, sessions, orch, metrics).Router())
	t.Cleanup(srv.Close)
	return srv, sessions
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/voice/ws"
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute, "test_http_health")

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestGetUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute, "test_http_session_404")

	resp, err := http.Get(srv.URL + "/v1/voice/sessions/nope")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestVoiceWebsocketRoundTrip(t *testing.T) {
	srv, sessions := newTestServer(t, time.Minute, "test_http_ws_roundtrip")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if got := sessions.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount = %d after connect, want 1", got)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("hello gateway")); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("reply message type = %d, want binary", msgType)
	}
	if string(data) != "you said: hello gateway" {
		t.Fatalf("reply audio = %q", data)
	}

	conn.Close()
	waitForActiveCount(t, sessions, 0)
}

func TestVoiceWebsocketIgnoresTextMessages(t *testing.T) {
	srv, _ := newTestServer(t, time.Minute, "test_http_ws_text")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not audio")); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("real audio")); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if string(data) != "you said: real audio" {
		t.Fatalf("reply audio = %q, text frames must not reach the pipeline", data)
	}
}

func TestVoiceWebsocketClosesOnSessionExpiry(t *testing.T) {
	srv, sessions := newTestServer(t, 80*time.Millisecond, "test_http_ws_expiry")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// No frames are sent; the fixed window alone must end the session
	// and therefore the connection.
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection outlived the session window")
	}
	waitForActiveCount(t, sessions, 0)
}

func waitForActiveCount(t *testing.T, sessions *session.Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sessions.ActiveCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ActiveCount = %d, want %d", sessions.ActiveCount(), want)
}
