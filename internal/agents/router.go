package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/teomanelik/aiko/internal/brain"
	"github.com/teomanelik/aiko/internal/session"
)

// Router classifies one user turn as conversational or task. It never
// answers the user itself; it only decides which branch handles the
// turn and what payload that branch receives.
type Router struct {
	brain brain.Completer
}

func NewRouter(b brain.Completer) *Router {
	return &Router{brain: b}
}

func (r *Router) Classify(ctx context.Context, snap session.Snapshot) (RoutingDecision, error) {
	out, err := r.brain.Complete(ctx, brain.Request{
		System:  routerPrompt,
		Input:   snap.LastUser(),
		Context: transcriptLines(snap),
	})
	if err != nil {
		return RoutingDecision{}, fmt.Errorf("route turn: %w", err)
	}

	switch decisionToken(out) {
	case "conversational":
		return RoutingDecision{Kind: RouteConversational, Transcript: snap}, nil
	case "task":
		return RoutingDecision{Kind: RouteTask, Task: snap.LastUser()}, nil
	default:
		return RoutingDecision{}, &ClassificationError{Stage: "router", Raw: out}
	}
}

// decisionToken extracts the first word of a stage answer, lowered and
// stripped of punctuation, for validation against the enumeration.
func decisionToken(out string) string {
	fields := strings.Fields(strings.ToLower(out))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,:;!\"'")
}

func transcriptLines(snap session.Snapshot) []string {
	lines := make([]string, 0, len(snap.History))
	for _, e := range snap.History {
		lines = append(lines, e.Role+": "+e.Text)
	}
	return lines
}
