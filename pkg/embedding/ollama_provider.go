package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"legal-rag-be/pkg/httpclient"
)

// OllamaProvider embeds text with a local Ollama model such as
// nomic-embed-text.
type OllamaProvider struct {
	BaseURL string
	Model   string
	client  *httpclient.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  httpclient.New("ollama embedding", 30*time.Second, 2),
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate ignores taskType.
func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	var res ollamaResponse
	if err := p.client.PostJSON(ctx, p.BaseURL+"/api/embeddings", nil, ollamaRequest{Model: p.Model, Prompt: text}, &res); err != nil {
		return nil, err
	}
	if len(res.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}

	values := make([]float32, len(res.Embedding))
	for i, v := range res.Embedding {
		values[i] = float32(v)
	}

	// pgvector cosine distance expects unit-length vectors
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: NormalizeVector(values)},
	}, nil
}

// NormalizeVector scales vec to unit length. A zero vector is returned as is.
func NormalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / magnitude)
	}
	return out
}
