package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendsOptionsAndMapsRoles(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"GREETING"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	got, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "classify"},
		{Role: "model", Content: "earlier"},
		{Role: "user", Content: "hello"},
	}, llm.WithTemperature(0), llm.WithMaxTokens(16))
	require.NoError(t, err)

	assert.Equal(t, "GREETING", got)
	assert.Equal(t, "llama3", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.0, captured.Options.Temperature)
	assert.Equal(t, 16, captured.Options.NumPredict)
	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
}

func TestChat_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model 'x' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "x").Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "not found")
}
