package factory

import (
	"fmt"

	"legal-rag-be/pkg/llm"
	"legal-rag-be/pkg/llm/gemini"
	"legal-rag-be/pkg/llm/huggingface"
	"legal-rag-be/pkg/llm/ollama"
)

// NewLLMProvider builds the backend named by providerType. Every backend is
// wrapped in a circuit breaker so a dead model fails fast.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	var provider llm.LLMProvider
	switch providerType {
	case "ollama":
		provider = ollama.NewOllamaProvider(baseURL, modelName)
	case "gemini":
		if apiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		p := gemini.NewGeminiProvider(apiKey, modelName)
		if baseURL != "" {
			p.BaseURL = baseURL
		}
		provider = p
	case "huggingface":
		provider = huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	return llm.WithBreaker(providerType, provider), nil
}
