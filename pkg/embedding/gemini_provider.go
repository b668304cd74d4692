package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-rag-be/pkg/httpclient"
)

const geminiEmbeddingModel = "text-embedding-004"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

type GeminiProvider struct {
	ApiKey  string
	BaseURL string
	client  *httpclient.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:  apiKey,
		BaseURL: "https://generativelanguage.googleapis.com/v1",
		client:  httpclient.New("gemini embedding", 30*time.Second, 3),
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, geminiEmbeddingModel)

	var res EmbeddingResponse
	err := p.client.PostJSON(ctx, endpoint, map[string]string{"x-goog-api-key": p.ApiKey}, geminiRequest{
		Model:    geminiEmbeddingModel,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskType,
	}, &res)
	if err != nil {
		return nil, err
	}
	if len(res.Embedding.Values) == 0 {
		return nil, errors.New("gemini returned an empty embedding")
	}
	return &res, nil
}
