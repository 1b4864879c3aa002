package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/teomanelik/aiko/internal/brain"
)

func TestPlannerSequential(t *testing.T) {
	p := NewPlanner(scriptedBrain("sequential\nsummarize the history of the telescope"))
	d, err := p.Plan(context.Background(), "tell me about telescopes")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if d.Kind != PlanSequential {
		t.Fatalf("Kind = %q, want %q", d.Kind, PlanSequential)
	}
	if d.Task != "summarize the history of the telescope" {
		t.Fatalf("Task = %q, want restated task", d.Task)
	}
}

func TestPlannerParallelKeepsOriginalTaskWhenBodyMissing(t *testing.T) {
	p := NewPlanner(scriptedBrain("Parallel"))
	d, err := p.Plan(context.Background(), "compare five battery chemistries")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if d.Kind != PlanParallel {
		t.Fatalf("Kind = %q, want %q", d.Kind, PlanParallel)
	}
	if d.Task != "compare five battery chemistries" {
		t.Fatalf("Task = %q, want original task preserved", d.Task)
	}
}

func TestPlannerClarifiesAmbiguousTask(t *testing.T) {
	p := NewPlanner(scriptedBrain("clarify\nWhat thing would you like me to do?"))
	d, err := p.Plan(context.Background(), "do the thing")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if d.Kind != PlanClarify {
		t.Fatalf("Kind = %q, want %q", d.Kind, PlanClarify)
	}
	if d.Clarification != "What thing would you like me to do?" {
		t.Fatalf("Clarification = %q", d.Clarification)
	}
}

func TestPlannerClarifyWithoutQuestionUsesDefault(t *testing.T) {
	p := NewPlanner(scriptedBrain("clarify"))
	d, err := p.Plan(context.Background(), "handle it")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if d.Clarification != defaultClarification {
		t.Fatalf("Clarification = %q, want default question", d.Clarification)
	}
}

func TestPlannerUnparseableDecision(t *testing.T) {
	p := NewPlanner(scriptedBrain("it depends on the weather"))
	_, err := p.Plan(context.Background(), "compare options")

	var ce *ClassificationError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ClassificationError", err)
	}
	if ce.Stage != "planner" {
		t.Fatalf("Stage = %q, want planner", ce.Stage)
	}
}

func TestPlannerPropagatesCapabilityFailure(t *testing.T) {
	failing := brain.CompleterFunc(func(_ context.Context, _ brain.Request) (string, error) {
		return "", errors.New("deadline exceeded upstream")
	})
	p := NewPlanner(failing)
	if _, err := p.Plan(context.Background(), "compare options"); err == nil {
		t.Fatalf("Plan() should surface capability failure")
	}
}
