package agents

import (
	"context"
	"fmt"

	"github.com/teomanelik/aiko/internal/brain"
)

// Writer turns research findings into a final report. It must not run
// before its findings exist and must not add unsourced facts; the
// grounding constraint lives in the prompt, the ordering constraint in
// the pipeline.
type Writer struct {
	brain brain.Completer
}

func NewWriter(b brain.Completer) *Writer {
	return &Writer{brain: b}
}

// Compose writes the report for a single sequential finding.
func (w *Writer) Compose(ctx context.Context, task string, finding Finding) (string, error) {
	out, err := w.brain.Complete(ctx, brain.Request{
		System:  writerPrompt,
		Input:   task,
		Context: []string{"research findings: " + finding.Text},
	})
	if err != nil {
		return "", fmt.Errorf("compose report: %w", err)
	}
	return out, nil
}

// ComposeAggregate merges all parallel slots into one report. Every
// slot appears positionally; empty slots are marked as having no data
// so the model treats them as absent angles rather than failures.
func (w *Writer) ComposeAggregate(ctx context.Context, task string, findings []Finding) (string, error) {
	populated := 0
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Empty() {
			lines = append(lines, fmt.Sprintf("source_%d: (no data)", f.Slot))
			continue
		}
		populated++
		lines = append(lines, fmt.Sprintf("source_%d: %s", f.Slot, f.Text))
	}
	if populated == 0 {
		// Nothing to ground a report in; let the responder be honest
		// instead of asking the writer to invent content.
		return "", nil
	}

	out, err := w.brain.Complete(ctx, brain.Request{
		System:  writerPrompt,
		Input:   task,
		Context: lines,
	})
	if err != nil {
		return "", fmt.Errorf("compose aggregate report: %w", err)
	}
	return out, nil
}
