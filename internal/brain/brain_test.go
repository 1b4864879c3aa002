package brain

import (
	"context"
	"strings"
	"testing"
)

func TestNewCompleterModes(t *testing.T) {
	ctx := context.Background()

	c, label, err := NewCompleter(ctx, Config{Mode: "mock"})
	if err != nil {
		t.Fatalf("mock mode error = %v", err)
	}
	if label != "mock" {
		t.Fatalf("label = %q, want mock", label)
	}
	if _, ok := c.(*MockCompleter); !ok {
		t.Fatalf("completer type = %T, want *MockCompleter", c)
	}

	// Auto without a key must stay local rather than fail.
	_, label, err = NewCompleter(ctx, Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("auto mode error = %v", err)
	}
	if label != "mock" {
		t.Fatalf("auto label = %q, want mock", label)
	}

	if _, _, err := NewCompleter(ctx, Config{Mode: "gemini"}); err == nil {
		t.Fatalf("gemini mode without key should fail")
	}
	if _, _, err := NewCompleter(ctx, Config{Mode: "llama"}); err == nil {
		t.Fatalf("unsupported mode should fail")
	}
}

func TestMockCompleterStageAnswers(t *testing.T) {
	c := NewMockCompleter()
	ctx := context.Background()

	out, err := c.Complete(ctx, Request{System: "decide: conversational or task", Input: "hello"})
	if err != nil || out != "conversational" {
		t.Fatalf("router answer = %q, %v", out, err)
	}

	out, err = c.Complete(ctx, Request{System: "choose sequential or parallel", Input: "explain tides"})
	if err != nil {
		t.Fatalf("planner answer error = %v", err)
	}
	if !strings.HasPrefix(out, "sequential\n") {
		t.Fatalf("planner answer = %q, want a sequential decision line", out)
	}

	out, err = c.Complete(ctx, Request{System: "you are a research stage", Input: "tides", UseSearch: true})
	if err != nil || !strings.Contains(out, "tides") {
		t.Fatalf("research answer = %q, %v", out, err)
	}

	out, err = c.Complete(ctx, Request{System: "you are a warm companion"})
	if err != nil || out == "" {
		t.Fatalf("responder opener = %q, %v", out, err)
	}
}
