package factory

import (
	"fmt"

	"bpmn-interview-be/pkg/llm"
	"bpmn-interview-be/pkg/llm/huggingface"
	"bpmn-interview-be/pkg/llm/ollama"
	"bpmn-interview-be/pkg/llm/openai"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider string // "openai", "ollama" or "huggingface"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "openai", "":
		provider, err := openai.NewOpenAIProvider(s.APIKey, s.Model)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
