package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/teomanelik/aiko/internal/brain"
)

const defaultClarification = "I want to get this right for you. Could you tell me a bit more about what exactly you need?"

// Planner validates a task and chooses between step-by-step and
// fan-out execution. An ambiguous task never reaches a pipeline; it
// comes back as a clarification request instead.
type Planner struct {
	brain brain.Completer
}

func NewPlanner(b brain.Completer) *Planner {
	return &Planner{brain: b}
}

func (p *Planner) Plan(ctx context.Context, task string) (PlanDecision, error) {
	out, err := p.brain.Complete(ctx, brain.Request{
		System: plannerPrompt,
		Input:  task,
	})
	if err != nil {
		return PlanDecision{}, fmt.Errorf("plan task: %w", err)
	}

	head, body := splitDecision(out)
	switch head {
	case "sequential":
		return PlanDecision{Kind: PlanSequential, Task: restatedOr(body, task)}, nil
	case "parallel":
		return PlanDecision{Kind: PlanParallel, Task: restatedOr(body, task)}, nil
	case "clarify":
		clarification := strings.TrimSpace(body)
		if clarification == "" {
			clarification = defaultClarification
		}
		return PlanDecision{Kind: PlanClarify, Clarification: clarification}, nil
	default:
		return PlanDecision{}, &ClassificationError{Stage: "planner", Raw: out}
	}
}

// splitDecision separates the first-line decision token from the body
// that restates the task or asks the clarifying question.
func splitDecision(out string) (string, string) {
	out = strings.TrimSpace(out)
	first, rest, _ := strings.Cut(out, "\n")
	return decisionToken(first), strings.TrimSpace(rest)
}

func restatedOr(restated, original string) string {
	if strings.TrimSpace(restated) == "" {
		return original
	}
	return restated
}
