// Package agents implements the turn-routing pipeline: intent routing,
// task planning, sequential and parallel research execution, and the
// conversational responder that phrases every final answer.
package agents

import (
	"fmt"
	"strings"

	"github.com/teomanelik/aiko/internal/session"
)

type RouteKind string

const (
	RouteConversational RouteKind = "conversational"
	RouteTask           RouteKind = "task"
)

// RoutingDecision is the typed outcome of intent classification.
// Exactly one branch is chosen per turn, and the payload shape differs
// by branch: the conversational branch carries the full transcript for
// relational context, the task branch only the last user utterance.
type RoutingDecision struct {
	Kind       RouteKind
	Transcript session.Snapshot
	Task       string
}

type PlanKind string

const (
	PlanSequential PlanKind = "sequential"
	PlanParallel   PlanKind = "parallel"
	PlanClarify    PlanKind = "clarify"
)

// PlanDecision is the planner's verdict on a validated task. Clarify
// means the task was too ambiguous to execute; Clarification then holds
// the question to surface back to the user.
type PlanDecision struct {
	Kind          PlanKind
	Task          string
	Clarification string
}

// Finding is one researcher's output, associated with its slot index
// (1..N for parallel runs, 0 for the sequential pipeline). An empty
// finding is a legitimate outcome, not an error.
type Finding struct {
	Slot int
	Text string
}

func (f Finding) Empty() bool {
	return strings.TrimSpace(f.Text) == ""
}

// ClassificationError reports that a routing stage produced output that
// does not validate against its decision enumeration. The pipeline
// never drops the turn on it; it falls back to the safe branch.
type ClassificationError struct {
	Stage string
	Raw   string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s produced unparseable decision %q", e.Stage, e.Raw)
}
