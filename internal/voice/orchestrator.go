package voice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teomanelik/aiko/internal/audio"
	"github.com/teomanelik/aiko/internal/observability"
	"github.com/teomanelik/aiko/internal/protocol"
	"github.com/teomanelik/aiko/internal/session"
)

// ErrSessionExpired terminates a connection whose fixed session window
// has elapsed. The window is never renewed by activity.
var ErrSessionExpired = errors.New("session window expired")

// errConnectionClosed is the internal signal that the client hung up:
// the inbound frame channel closed. It cancels the outbound loop via
// the errgroup and is mapped back to a clean nil at the join point.
var errConnectionClosed = errors.New("connection closed")

// ConversationEngine produces the reply for one user turn given the
// session transcript so far.
type ConversationEngine interface {
	Respond(ctx context.Context, snap session.Snapshot) (string, error)
}

// Orchestrator runs the audio conversation loop for one connection:
// inbound PCM is transcribed and routed through the engine, replies
// are synthesized and pushed back out. The two directions run as
// concurrent loops joined on the first failure.
type Orchestrator struct {
	provider Provider
	engine   ConversationEngine
	metrics  *observability.Metrics

	replyBuffer   int
	audioDebugDir string
}

type Option func(*Orchestrator)

// WithAudioDebugDir makes the orchestrator dump every inbound
// utterance to a WAV file in dir, for diagnosing transcription quality.
func WithAudioDebugDir(dir string) Option {
	return func(o *Orchestrator) {
		o.audioDebugDir = dir
	}
}

func NewOrchestrator(provider Provider, engine ConversationEngine, metrics *observability.Metrics, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		engine:      engine,
		metrics:     metrics,
		replyBuffer: 8,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunConnection drives one session until the client disconnects, the
// session window expires, or the parent context is cancelled. It owns
// the lifetime of the reply queue between the two loops; the caller
// owns inbound and outbound.
func (o *Orchestrator) RunConnection(ctx context.Context, sess *session.Session, inbound <-chan protocol.AudioFrame, outbound chan<- protocol.OutboundAudio) error {
	// The guard's deadline bounds everything downstream, so a turn in
	// flight at expiry is cancelled rather than left to finish into a
	// dead session. The per-iteration Valid checks below keep the
	// expiry decision at the loop boundaries as well.
	ctx, cancel := context.WithDeadline(ctx, sess.Guard.ExpiresAt())
	defer cancel()

	replies := make(chan string, o.replyBuffer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(replies)
		return o.receiveLoop(gctx, sess, inbound, replies)
	})
	g.Go(func() error {
		return o.sendLoop(gctx, sess, replies, outbound)
	})

	err := g.Wait()
	switch {
	case err == nil || errors.Is(err, errConnectionClosed):
		return nil
	case errors.Is(err, ErrSessionExpired), errors.Is(err, context.DeadlineExceeded):
		return ErrSessionExpired
	default:
		return err
	}
}

// receiveLoop consumes inbound audio, transcribes it, stores the user
// turn and asks the engine for a reply. An empty transcription is not
// an error: the engine still runs so the agent can speak proactively.
func (o *Orchestrator) receiveLoop(ctx context.Context, sess *session.Session, inbound <-chan protocol.AudioFrame, replies chan<- string) error {
	utterances := 0
	for {
		if !sess.Guard.Valid() {
			return ErrSessionExpired
		}

		var frame protocol.AudioFrame
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-inbound:
			if !ok {
				return errConnectionClosed
			}
			frame = f
		}

		turnStarted := time.Now()
		utterances++
		o.metrics.AudioFrames.WithLabelValues("in").Inc()

		if o.audioDebugDir != "" {
			path := filepath.Join(o.audioDebugDir, fmt.Sprintf("%s-%04d.wav", sess.ID, utterances))
			if err := audio.WriteWAVFile(path, frame.PCM, frame.SampleRate); err != nil {
				log.Printf("session %s: audio debug capture failed: %v", sess.ID, err)
			}
		}

		sttStarted := time.Now()
		text, err := o.provider.Transcribe(ctx, frame.PCM, frame.SampleRate)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A failed transcription means no user input this cycle,
			// not a dead connection.
			log.Printf("session %s: transcription failed: %v", sess.ID, err)
			o.metrics.ProviderErrors.WithLabelValues("stt", "transcribe_failed").Inc()
			text = ""
		}
		o.metrics.ObserveStage("stt", time.Since(sttStarted))

		if text != "" {
			sess.Transcript.Store(session.RoleUser, text)
		}

		reply, err := o.engine.Respond(ctx, sess.Transcript.Snapshot())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		o.metrics.ObserveTurn(time.Since(turnStarted))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case replies <- reply:
		}
	}
}

// sendLoop stores each agent turn, synthesizes it and pushes the audio
// out. A synthesis failure drops that one reply; the text is already
// in the transcript, so the conversation stays coherent.
func (o *Orchestrator) sendLoop(ctx context.Context, sess *session.Session, replies <-chan string, outbound chan<- protocol.OutboundAudio) error {
	for {
		if !sess.Guard.Valid() {
			return ErrSessionExpired
		}

		var reply string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-replies:
			if !ok {
				return errConnectionClosed
			}
			reply = r
		}
		if reply == "" {
			continue
		}

		sess.Transcript.Store(session.RoleAgent, reply)

		ttsStarted := time.Now()
		audio, format, err := o.provider.Synthesize(ctx, reply)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("session %s: synthesis failed, dropping reply audio: %v", sess.ID, err)
			o.metrics.ProviderErrors.WithLabelValues("tts", "synthesize_failed").Inc()
			continue
		}
		o.metrics.ObserveStage("tts", time.Since(ttsStarted))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case outbound <- protocol.OutboundAudio{Audio: audio, Format: format}:
			o.metrics.AudioFrames.WithLabelValues("out").Inc()
		}
	}
}
