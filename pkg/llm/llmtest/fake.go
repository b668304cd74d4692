// Package llmtest provides a scriptable LLMProvider for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"legal-rag-be/pkg/llm"
)

// Provider answers every call with Respond. Calls are recorded.
type Provider struct {
	Respond func(ctx context.Context, prompt string) (string, error)

	mu    sync.Mutex
	calls []string
}

var _ llm.LLMProvider = &Provider{}

// Static returns a provider that always answers text.
func Static(text string) *Provider {
	return &Provider{Respond: func(context.Context, string) (string, error) { return text, nil }}
}

// Failing returns a provider that always fails with err.
func Failing(err error) *Provider {
	return &Provider{Respond: func(context.Context, string) (string, error) { return "", err }}
}

func (p *Provider) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, prompt)
	p.mu.Unlock()
	return p.Respond(ctx, prompt)
}

// Chat flattens history into one prompt, one "role: content" line each.
func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return p.Generate(ctx, strings.Join(lines, "\n"), options...)
}

func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
