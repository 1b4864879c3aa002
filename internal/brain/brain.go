// Package brain abstracts the text-completion capability every agent
// stage depends on. The gateway treats it as a remote call with no
// latency bound; completions are pure text generation, so retries are
// safe.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request is one completion call. Context lines precede Input in the
// prompt; UseSearch enables search grounding for researcher stages.
type Request struct {
	System    string
	Input     string
	Context   []string
	UseSearch bool
}

// Completer produces a text completion for a prompt-and-context request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config controls completer construction.
type Config struct {
	Mode   string
	APIKey string
	Model  string
}

// NewCompleter builds a completer for the configured mode. Mode "auto"
// prefers Gemini when a key is present and falls back to the mock.
func NewCompleter(ctx context.Context, cfg Config) (Completer, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			c, err := NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
			if err != nil {
				return nil, "", err
			}
			return c, "gemini", nil
		}
		return NewMockCompleter(), "mock", nil
	case "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, "", errors.New("gemini completer requires an API key")
		}
		c, err := NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, "", err
		}
		return c, "gemini", nil
	case "mock":
		return NewMockCompleter(), "mock", nil
	default:
		return nil, "", fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}
