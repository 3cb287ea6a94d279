package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "gpt-4o-mini"

// ChatGenerator talks to any OpenAI-compatible chat completions endpoint.
type ChatGenerator struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAIGenerator(apiKey, model string) *ChatGenerator {
	return newChatGenerator(ProviderOpenAI, openai.DefaultConfig(apiKey), orDefault(model, openAIDefaultModel))
}

func newChatGenerator(name string, cfg openai.ClientConfig, model string) *ChatGenerator {
	return &ChatGenerator{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (g *ChatGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s API returned status %d: %s", g.name, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%s request failed: %w", g.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s API returned no choices", g.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
