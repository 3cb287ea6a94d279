package llm

import (
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

const (
	chatMaxTokens   = 1024
	chatTemperature = 0.9
)

// NewGenerator creates a text generator based on the provider name. An empty
// model selects the provider default. Returns an error if the provider is
// unknown or the API key is empty (except for mock).
func NewGenerator(provider, apiKey, model string) (domain.TextGenerator, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIGenerator(apiKey, model), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicGenerator(apiKey, model), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Gemini provider")
		}
		return NewGeminiGenerator(apiKey, model), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasGenerator(apiKey, model), nil

	case ProviderMock:
		return NewMockGenerator(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, cerebras, mock)", provider)
	}
}

func orDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}
