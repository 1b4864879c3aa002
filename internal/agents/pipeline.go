package agents

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teomanelik/aiko/internal/brain"
	"github.com/teomanelik/aiko/internal/observability"
	"github.com/teomanelik/aiko/internal/session"
)

const (
	defaultFanout          = 5
	defaultResearchTimeout = 45 * time.Second
)

// Pipeline wires the agent stages into one entry point. Respond takes a
// transcript snapshot and always produces speakable text: capability
// failures degrade to safe defaults instead of surfacing, and only a
// cancelled context aborts the turn.
type Pipeline struct {
	router     *Router
	planner    *Planner
	researcher *Researcher
	writer     *Writer
	responder  *Responder

	fanout          int
	researchTimeout time.Duration
	metrics         *observability.Metrics
}

type Option func(*Pipeline)

// WithFanout sets the number of parallel research slots.
func WithFanout(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.fanout = n
		}
	}
}

// WithResearchTimeout bounds each parallel research slot. A slot that
// exceeds it degrades to an empty finding so one stuck researcher
// cannot stall the barrier indefinitely.
func WithResearchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.researchTimeout = d
		}
	}
}

func NewPipeline(b brain.Completer, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		router:          NewRouter(b),
		planner:         NewPlanner(b),
		researcher:      NewResearcher(b),
		writer:          NewWriter(b),
		responder:       NewResponder(b),
		fanout:          defaultFanout,
		researchTimeout: defaultResearchTimeout,
		metrics:         metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Respond routes one user turn through the decision pipeline and
// returns the reply to synthesize.
func (p *Pipeline) Respond(ctx context.Context, snap session.Snapshot) (string, error) {
	started := time.Now()

	// Silence needs no routing decision: the responder opens the
	// conversation proactively.
	if strings.TrimSpace(snap.LastUser()) == "" {
		p.metrics.RoutingDecisions.WithLabelValues("silence").Inc()
		return p.converse(ctx, snap)
	}

	decision, err := p.router.Classify(ctx, snap)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// A failed classification must not drop the turn; the
		// conversational branch is the safe default.
		var ce *ClassificationError
		if errors.As(err, &ce) {
			log.Printf("router: %v, falling back to conversational", ce)
		} else {
			log.Printf("router capability failure: %v, falling back to conversational", err)
			p.metrics.ProviderErrors.WithLabelValues("brain", "route_failed").Inc()
		}
		decision = RoutingDecision{Kind: RouteConversational, Transcript: snap}
	}
	p.metrics.RoutingDecisions.WithLabelValues(string(decision.Kind)).Inc()

	var reply string
	switch decision.Kind {
	case RouteTask:
		reply, err = p.executeTask(ctx, decision.Task)
	default:
		reply, err = p.converse(ctx, decision.Transcript)
	}
	if err != nil {
		return "", err
	}
	p.metrics.ObserveStage("pipeline_total", time.Since(started))
	return reply, nil
}

func (p *Pipeline) executeTask(ctx context.Context, task string) (string, error) {
	plan, err := p.planner.Plan(ctx, task)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("planner: %v, asking for clarification", err)
		plan = PlanDecision{Kind: PlanClarify, Clarification: defaultClarification}
	}
	p.metrics.PlanDecisions.WithLabelValues(string(plan.Kind)).Inc()

	switch plan.Kind {
	case PlanClarify:
		return p.phrase(ctx, plan.Clarification)
	case PlanParallel:
		return p.runParallel(ctx, plan.Task)
	default:
		return p.runSequential(ctx, plan.Task)
	}
}

// runSequential is the two-stage chain: the writer must not run before
// the researcher's finding exists.
func (p *Pipeline) runSequential(ctx context.Context, task string) (string, error) {
	started := time.Now()
	finding, err := p.researcher.Research(ctx, task, 0)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("sequential research degraded to empty: %v", err)
		p.metrics.ProviderErrors.WithLabelValues("brain", "research_failed").Inc()
		finding = Finding{Slot: 0}
	}
	if finding.Empty() {
		p.metrics.EmptyFindings.Inc()
		return p.phrase(ctx, noFindingsReply)
	}
	p.metrics.ObserveStage("research", time.Since(started))

	report, err := p.writer.Compose(ctx, task, finding)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("writer failed, replying with raw findings: %v", err)
		p.metrics.ProviderErrors.WithLabelValues("brain", "write_failed").Inc()
		report = finding.Text
	}
	return p.phrase(ctx, report)
}

// runParallel fans the task out to fanout research slots and merges the
// results after the barrier. Empty slots are tolerated by design.
func (p *Pipeline) runParallel(ctx context.Context, task string) (string, error) {
	started := time.Now()
	findings := p.fanOut(ctx, task)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	p.metrics.ObserveStage("research_fanout", time.Since(started))

	report, err := p.writer.ComposeAggregate(ctx, task, findings)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("aggregate writer failed: %v", err)
		p.metrics.ProviderErrors.WithLabelValues("brain", "write_failed").Inc()
		report = ""
	}
	if strings.TrimSpace(report) == "" {
		return p.phrase(ctx, noFindingsReply)
	}
	return p.phrase(ctx, report)
}

// fanOut launches one researcher invocation per slot and waits for all
// of them. Failures and per-slot timeouts degrade to empty findings;
// the barrier itself never short-circuits.
func (p *Pipeline) fanOut(ctx context.Context, task string) []Finding {
	findings := make([]Finding, p.fanout)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.fanout; i++ {
		i := i
		slot := i + 1
		g.Go(func() error {
			slotCtx, cancel := context.WithTimeout(gctx, p.researchTimeout)
			defer cancel()

			f, err := p.researcher.Research(slotCtx, task, slot)
			if err != nil {
				if gctx.Err() == nil {
					log.Printf("parallel research slot %d degraded to empty: %v", slot, err)
					p.metrics.ProviderErrors.WithLabelValues("brain", "research_failed").Inc()
				}
				f = Finding{Slot: slot}
			}
			if f.Empty() {
				p.metrics.EmptyFindings.Inc()
			}
			findings[i] = f
			return nil
		})
	}
	_ = g.Wait()
	return findings
}

func (p *Pipeline) converse(ctx context.Context, snap session.Snapshot) (string, error) {
	reply, err := p.responder.Reply(ctx, snap)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("responder failed, using fallback reply: %v", err)
		p.metrics.ProviderErrors.WithLabelValues("brain", "respond_failed").Inc()
		return FallbackReply, nil
	}
	return reply, nil
}

func (p *Pipeline) phrase(ctx context.Context, report string) (string, error) {
	reply, err := p.responder.PhraseReport(ctx, report)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("responder failed to phrase report, speaking it directly: %v", err)
		p.metrics.ProviderErrors.WithLabelValues("brain", "respond_failed").Inc()
		return report, nil
	}
	return reply, nil
}
