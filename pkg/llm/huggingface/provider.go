package huggingface

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-rag-be/pkg/httpclient"
	"legal-rag-be/pkg/llm"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

// HuggingFaceProvider talks to any OpenAI-compatible chat completions router.
type HuggingFaceProvider struct {
	apiKey  string
	BaseURL string
	model   string
	client  *httpclient.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		BaseURL: baseURL,
		model:   model,
		client:  httpclient.New("huggingface", 120*time.Second, 3),
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(llm.Options{
		Model:       p.model,
		MaxTokens:   500,
		Temperature: 0.7,
	}, options...)

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var res chatResponse
	err := p.client.PostJSON(ctx, p.BaseURL+"/chat/completions", headers, chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}, &res)
	if err != nil {
		return "", err
	}

	if res.Error != nil {
		return "", fmt.Errorf("huggingface api returned error: %s", res.Error.Message)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("empty choices from huggingface api")
	}

	// OpenAI-compatible routers report moderation refusals this way
	if res.Choices[0].FinishReason == "content_filter" {
		return "", llm.ErrBlocked
	}
	return res.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
