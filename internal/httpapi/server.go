// Package httpapi exposes the gateway over HTTP: health probes,
// Prometheus metrics and the voice websocket. Audio is the only thing
// that crosses the websocket, as binary frames in both directions.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/teomanelik/aiko/internal/config"
	"github.com/teomanelik/aiko/internal/observability"
	"github.com/teomanelik/aiko/internal/protocol"
	"github.com/teomanelik/aiko/internal/session"
	"github.com/teomanelik/aiko/internal/voice"
)

// Orchestrator runs one connection's conversation loop end to end.
type Orchestrator interface {
	RunConnection(ctx context.Context, s *session.Session, inbound <-chan protocol.AudioFrame, outbound chan<- protocol.OutboundAudio) error
}

type Server struct {
	cfg          config.Config
	sessions     *session.Manager
	orchestrator Orchestrator
	metrics      *observability.Metrics
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, orchestrator Orchestrator, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		sessions:     sessions,
		orchestrator: orchestrator,
		metrics:      metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may open a mic session
				// unless the deployment explicitly opens it up.
				// Non-browser clients omit Origin and are allowed.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/voice/ws", s.handleVoiceWS)
	r.Get("/v1/voice/sessions/{id}", s.handleGetSession)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// handleVoiceWS accepts one voice connection. The connection is the
// session: it is created on upgrade, lives at most the fixed session
// window, and ends when either side hangs up.
func (s *Server) handleVoiceWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sess := s.sessions.Create(r.RemoteAddr)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan protocol.AudioFrame, 64)
	outbound := make(chan protocol.OutboundAudio, 64)

	runDone := make(chan error, 1)
	go func() {
		runDone <- s.orchestrator.RunConnection(ctx, sess, inbound, outbound)
		cancel()
		// Unblock the read loop below so an expired session does not
		// linger until the client happens to hang up.
		_ = conn.SetReadDeadline(time.Now())
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.BinaryMessage, out.Audio); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(protocol.MaxFrameBytes + 1)

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		frame, err := protocol.NewAudioFrame(data, s.cfg.SampleRateHz)
		if err != nil {
			// A malformed frame is the client's problem, not the
			// session's. Skip it and keep listening.
			continue
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- frame:
		}
	}

	close(inbound)
	runErr := <-runDone
	cancel()
	<-writerDone

	status := session.StatusClosed
	switch runErr {
	case nil:
	case voice.ErrSessionExpired:
		status = session.StatusExpired
		s.metrics.SessionEvents.WithLabelValues("expired").Inc()
	default:
		status = session.StatusErrored
	}
	_, _ = s.sessions.End(sess.ID, status)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
