package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/teomanelik/aiko/internal/brain"
	"github.com/teomanelik/aiko/internal/session"
)

// FallbackReply is spoken when no stage could produce an answer. The
// user never sees a raw error.
const FallbackReply = "I'm having a little trouble gathering my thoughts right now, but I'm still here with you. Tell me again?"

const noFindingsReply = "I looked into that but honestly couldn't find anything solid. Want me to try a different angle?"

// Responder is the terminal stage before synthesis. It speaks every
// reply, whether the turn was small talk, a clarification request, or a
// finished task report.
type Responder struct {
	brain brain.Completer
}

func NewResponder(b brain.Completer) *Responder {
	return &Responder{brain: b}
}

// Reply answers a conversational turn using the full transcript. An
// empty or missing user utterance makes it open the conversation
// proactively instead of waiting.
func (r *Responder) Reply(ctx context.Context, snap session.Snapshot) (string, error) {
	input := snap.LastUser()
	if strings.TrimSpace(input) == "" {
		input = "(the user is silent; gently start the conversation yourself)"
	}
	out, err := r.brain.Complete(ctx, brain.Request{
		System:  responderPrompt,
		Input:   input,
		Context: transcriptLines(snap),
	})
	if err != nil {
		return "", fmt.Errorf("conversational reply: %w", err)
	}
	return out, nil
}

// PhraseReport retells a task report in spoken narrative style.
func (r *Responder) PhraseReport(ctx context.Context, report string) (string, error) {
	out, err := r.brain.Complete(ctx, brain.Request{
		System: responderPrompt,
		Input:  "Retell this task report to the user in your own voice:\n" + report,
	})
	if err != nil {
		return "", fmt.Errorf("phrase report: %w", err)
	}
	return out, nil
}
