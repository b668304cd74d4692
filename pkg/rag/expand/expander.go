package expand

import (
	"context"
	"regexp"
	"strings"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/rag/prompt"
)

const (
	module = "RAG-EXPAND"

	DefaultMaxQueries = 5
)

// bulletPrefix matches list markers models add despite instructions:
// "-", "*", "•", "1.", "2)".
var bulletPrefix = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// Expander turns one question into a handful of short search phrases.
type Expander struct {
	llmProvider llm.LLMProvider
	maxQueries  int
	timeout     time.Duration
	logger      logger.ILogger
}

func NewExpander(llmProvider llm.LLMProvider, maxQueries int, timeout time.Duration, logger logger.ILogger) *Expander {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	return &Expander{
		llmProvider: llmProvider,
		maxQueries:  maxQueries,
		timeout:     timeout,
		logger:      logger,
	}
}

// Expand always returns at least one query. When the model fails or yields
// nothing usable the result is exactly [question].
func (e *Expander) Expand(ctx context.Context, question string) []string {
	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.llmProvider.Generate(callCtx, prompt.ExpansionPrompt(question, e.maxQueries), llm.WithTemperature(0.2))
	if err != nil {
		e.logger.Warn(module, "Query expansion failed, searching with the question", map[string]interface{}{
			"error": err.Error(),
		})
		return []string{question}
	}

	queries := ParseLines(raw, e.maxQueries)
	if len(queries) == 0 {
		e.logger.Warn(module, "Query expansion returned nothing", map[string]interface{}{"raw": raw})
		return []string{question}
	}

	e.logger.Debug(module, "Query expanded", map[string]interface{}{
		"original": question,
		"expanded": queries,
	})
	return queries
}

// ParseLines splits a model response into at most max trimmed, non-empty
// lines with list markers removed.
func ParseLines(raw string, max int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}
