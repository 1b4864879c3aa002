package agents

import (
	"context"
	"fmt"

	"github.com/teomanelik/aiko/internal/brain"
)

// Researcher is a single research stage definition. The parallel
// pipeline instantiates it N times as concurrent invocations that
// differ only by slot index; there is one definition, not N copies.
type Researcher struct {
	brain brain.Completer
}

func NewResearcher(b brain.Completer) *Researcher {
	return &Researcher{brain: b}
}

// Research produces a findings brief for the task. The returned finding
// may legitimately be empty; callers treat emptiness as "no data for
// this angle", never as a failure.
func (r *Researcher) Research(ctx context.Context, task string, slot int) (Finding, error) {
	out, err := r.brain.Complete(ctx, brain.Request{
		System:    researcherPrompt,
		Input:     task,
		UseSearch: true,
	})
	if err != nil {
		return Finding{Slot: slot}, fmt.Errorf("research slot %d: %w", slot, err)
	}
	return Finding{Slot: slot, Text: out}, nil
}
