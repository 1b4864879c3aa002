package brain

import (
	"context"
	"strings"
)

// MockCompleter is a keyless local fallback. It gives every stage a
// deterministic, parseable answer so the whole pipeline can run without
// a Gemini key.
type MockCompleter struct{}

func NewMockCompleter() *MockCompleter { return &MockCompleter{} }

func (c *MockCompleter) Complete(_ context.Context, req Request) (string, error) {
	system := strings.ToLower(req.System)
	switch {
	case strings.Contains(system, "conversational or task"):
		return "conversational", nil
	case strings.Contains(system, "sequential or parallel"):
		return "sequential\n" + req.Input, nil
	case strings.Contains(system, "research"):
		return "Simulated findings for: " + req.Input, nil
	case strings.Contains(system, "writer"):
		return "Simulated report for the requested task.", nil
	default:
		if strings.TrimSpace(req.Input) == "" {
			return "Hey, I'm here. What's on your mind?", nil
		}
		return "I hear you. Tell me more about that.", nil
	}
}

// CompleterFunc adapts a function to the Completer interface; tests use
// it to script stage-specific behavior.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
