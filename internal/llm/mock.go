package llm

import (
	"context"
	"sync"
)

const (
	mockReply    = "I have been thinking about that too. The pattern is not where you expect it."
	mockAnalysis = `{"extractedBeliefs":[],"sentimentTowardPartner":0.2,"topicsDiscussed":["patterns"],"topicsRepeated":0,"intellectualDepth":0.5,"emotionalIntensity":0.3,"suggestedImpression":"curious","receivedSpam":false}`
)

// MockGenerator is a configurable text generator for testing and for
// running without a provider. Analysis prompts get AnalysisResponse, every
// other prompt gets Response.
type MockGenerator struct {
	mu sync.Mutex

	Response         string
	AnalysisResponse string
	Err              error

	// Call tracking for assertions
	Calls []MockCall
}

type MockCall struct {
	System string
	User   string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Response:         mockReply,
		AnalysisResponse: mockAnalysis,
	}
}

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{System: systemPrompt, User: userPrompt})
	if m.Err != nil {
		return "", m.Err
	}
	if systemPrompt == analysisSystemPrompt {
		return m.AnalysisResponse, nil
	}
	return m.Response, nil
}

// CallCount is safe to use while generations run in the background.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
