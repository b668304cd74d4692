package intent

import (
	"context"
	"strings"
	"time"

	"legal-rag-be/internal/pkg/logger"
	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/rag"
	"legal-rag-be/pkg/rag/prompt"
)

const module = "RAG-INTENT"

// Classifier labels a question with exactly one rag.Intent.
type Classifier struct {
	llmProvider llm.LLMProvider
	timeout     time.Duration
	logger      logger.ILogger
}

func NewClassifier(llmProvider llm.LLMProvider, timeout time.Duration, logger logger.ILogger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		timeout:     timeout,
		logger:      logger,
	}
}

// Classify never fails. An upstream error, a timeout or a label outside the
// closed set all resolve to rag.DefaultIntent.
func (c *Classifier) Classify(ctx context.Context, question string) rag.Intent {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// Temperature 0 for deterministic output
	raw, err := c.llmProvider.Generate(callCtx, prompt.IntentPrompt(question), llm.WithTemperature(0.0), llm.WithMaxTokens(10))
	if err != nil {
		c.logger.Warn(module, "Intent classification failed, using default", map[string]interface{}{
			"error":   err.Error(),
			"default": rag.DefaultIntent,
		})
		return rag.DefaultIntent
	}

	label := strings.TrimSpace(raw)
	intent, ok := rag.ParseIntent(label)
	if !ok {
		c.logger.Warn(module, "Unrecognised intent label, using default", map[string]interface{}{
			"raw":     label,
			"default": rag.DefaultIntent,
		})
		return rag.DefaultIntent
	}

	c.logger.Debug(module, "Intent classified", map[string]interface{}{"intent": intent})
	return intent
}
