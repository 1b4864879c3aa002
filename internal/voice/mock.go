package voice

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

// MockProvider is a local fallback provider used when Google Speech is
// not configured. It treats inbound PCM that happens to be valid UTF-8
// as the spoken words, and emits reply text bytes as the "audio", so a
// full conversation turn can run without any cloud credentials.
type MockProvider struct {
	mu          sync.Mutex
	transcribed int
	synthesized int
}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Transcribe(_ context.Context, pcm []byte, _ int) (string, error) {
	p.mu.Lock()
	p.transcribed++
	p.mu.Unlock()
	if utf8.Valid(pcm) {
		return strings.TrimSpace(string(pcm)), nil
	}
	return "simulated voice input", nil
}

func (p *MockProvider) Synthesize(_ context.Context, text string) ([]byte, string, error) {
	p.mu.Lock()
	p.synthesized++
	p.mu.Unlock()
	return []byte(text), "mock_text_bytes", nil
}

// Counts reports how many utterances went through each direction.
func (p *MockProvider) Counts() (transcribed, synthesized int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcribed, p.synthesized
}
