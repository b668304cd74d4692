package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/prompt"
)

const (
	module = "RAG-GENERATION"

	DefaultTimeout = 15 * time.Second
	maxTitleRunes  = 60
)

// Generator produces grounded answers, follow-up answers and conversation
// titles from the generation model.
type Generator struct {
	llmProvider  llm.LLMProvider
	timeout      time.Duration
	titleTimeout time.Duration
	logger       logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, timeout time.Duration, logger logger.ILogger) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{
		llmProvider:  llmProvider,
		timeout:      timeout,
		titleTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Summarize answers question strictly from blocks. Errors are
// rag.ErrBlockedGeneration or wrap rag.ErrGenerationFailed.
func (g *Generator) Summarize(ctx context.Context, question string, blocks []rag.ContextBlock) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.llmProvider.Generate(callCtx, prompt.SummaryPrompt(question, blocks), llm.WithTemperature(0.2))
	return g.finish("summary", text, err)
}

// Discuss answers a follow-up from the conversation history alone.
func (g *Generator) Discuss(ctx context.Context, question string, history []rag.Turn) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.llmProvider.Chat(callCtx, prompt.DiscussionMessages(question, history), llm.WithTemperature(0.3))
	return g.finish("discussion", text, err)
}

// NameConversation derives a short title from the first question. It never
// fails: on any model problem the trimmed question itself is used.
func (g *Generator) NameConversation(ctx context.Context, question string) string {
	callCtx, cancel := context.WithTimeout(ctx, g.titleTimeout)
	defer cancel()

	title, err := g.llmProvider.Generate(callCtx, prompt.TitlePrompt(question), llm.WithTemperature(0.0), llm.WithMaxTokens(20))
	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if err != nil || title == "" {
		if err != nil {
			g.logger.Warn(module, "Title generation failed, using question", map[string]interface{}{"error": err.Error()})
		}
		title = strings.TrimSpace(question)
	}
	// keep the first line only
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return truncate(title, maxTitleRunes)
}

func (g *Generator) finish(kind, text string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, llm.ErrBlocked) {
			g.logger.Warn(module, "Generation blocked by safety policy", map[string]interface{}{"kind": kind})
			return "", rag.ErrBlockedGeneration
		}
		g.logger.Error(module, "Generation failed", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %s: %w", rag.ErrGenerationFailed, kind, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Error(module, "Generation returned empty text", map[string]interface{}{"kind": kind})
		return "", fmt.Errorf("%w: %s: empty response", rag.ErrGenerationFailed, kind)
	}
	return text, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
