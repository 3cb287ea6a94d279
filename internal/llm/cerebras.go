package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

const (
	cerebrasBaseURL      = "https://api.cerebras.ai/v1"
	cerebrasDefaultModel = "llama3.1-8b"
)

// NewCerebrasGenerator uses the OpenAI-compatible Cerebras endpoint.
func NewCerebrasGenerator(apiKey, model string) *ChatGenerator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = cerebrasBaseURL
	return newChatGenerator(ProviderCerebras, cfg, orDefault(model, cerebrasDefaultModel))
}
