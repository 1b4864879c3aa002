package brain

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiCompleter calls the Gemini API for text completion. Researcher
// requests additionally attach the Google Search grounding tool.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}
	if req.UseSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	parts := make([]*genai.Part, 0, len(req.Context)+1)
	for _, line := range req.Context {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts = append(parts, genai.NewPartFromText(line))
	}
	parts = append(parts, genai.NewPartFromText(req.Input))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{Role: "user", Parts: parts},
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
