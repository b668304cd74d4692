package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"legal-rag-be/pkg/httpclient"
	"legal-rag-be/pkg/llm"
)

const defaultModel = "gemini-1.5-flash"

type GeminiProvider struct {
	ApiKey    string
	ModelName string
	BaseURL   string
	client    *httpclient.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &GeminiProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		BaseURL:   "https://generativelanguage.googleapis.com/v1",
		client:    httpclient.New("gemini", 120*time.Second, 3),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// finish reasons that mean the model withheld content on policy grounds
var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.7, Model: g.ModelName}, opts...)

	payload := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		},
	}
	for _, msg := range history {
		switch msg.Role {
		case "system":
			payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
		case "assistant", "model":
			payload.Contents = append(payload.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.BaseURL, options.Model)
	var geminiRes geminiResponse
	if err := g.client.PostJSON(ctx, endpoint, map[string]string{"x-goog-api-key": g.ApiKey}, payload, &geminiRes); err != nil {
		return "", err
	}

	return extractText(&geminiRes)
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func extractText(res *geminiResponse) (string, error) {
	if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", llm.ErrBlocked, res.PromptFeedback.BlockReason)
	}
	if len(res.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	candidate := res.Candidates[0]
	if blockedFinishReasons[candidate.FinishReason] {
		return "", fmt.Errorf("%w: finish reason %s", llm.ErrBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini candidate has no content (finish reason %q)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, p := range candidate.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
