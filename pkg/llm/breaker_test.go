package llm_test

import (
	"context"
	"errors"
	"testing"

	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBreaker_PassesThrough(t *testing.T) {
	fake := llmtest.Static("answer")
	p := llm.WithBreaker("test", fake)

	got, err := p.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	got, err = p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 2, fake.CallCount())
}

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("connection refused")
	fake := llmtest.Failing(boom)
	p := llm.WithBreaker("test", fake)

	for i := 0; i < 5; i++ {
		_, err := p.Generate(context.Background(), "q")
		assert.ErrorIs(t, err, boom)
	}

	_, err := p.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, llm.ErrUnavailable)
	assert.Equal(t, 5, fake.CallCount(), "open breaker must not reach the backend")
}

func TestWithBreaker_RefusalsDoNotTrip(t *testing.T) {
	fake := llmtest.Failing(llm.ErrBlocked)
	p := llm.WithBreaker("test", fake)

	for i := 0; i < 8; i++ {
		_, err := p.Generate(context.Background(), "q")
		assert.ErrorIs(t, err, llm.ErrBlocked)
	}
	assert.Equal(t, 8, fake.CallCount())
}
