package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_ParsesFencedJSON(t *testing.T) {
	gen := NewMockGenerator()
	gen.AnalysisResponse = "```json\n" + `{
		"extractedBeliefs": [
			{"domain": "TECH_CORE", "proposition": " Attention is all you need ", "conviction": 1.7},
			{"domain": "ASTROLOGY", "proposition": "Mercury is in retrograde", "conviction": 0.5},
			{"domain": "HUMANITIES", "proposition": "", "conviction": 0.5}
		],
		"sentimentTowardPartner": -3,
		"topicsDiscussed": ["attention"],
		"suggestedImpression": "blunt"
	}` + "\n```"

	a := NewAnalyzer(gen)
	got, err := a.Analyze(context.Background(), domain.AnalysisRequest{
		Philosophy: domain.PhilosophyRebel,
		Cognition:  domain.CognitionAwakened,
		Response:   "attention is everything",
	})
	require.NoError(t, err)

	require.Len(t, got.ExtractedBeliefs, 1)
	assert.Equal(t, "Attention is all you need", got.ExtractedBeliefs[0].Proposition)
	assert.Equal(t, 1.0, got.ExtractedBeliefs[0].Conviction)
	assert.Equal(t, domain.OriginDialogue, got.ExtractedBeliefs[0].Origin)
	assert.Equal(t, -1.0, got.SentimentTowardPartner)
	assert.Equal(t, []string{"attention"}, got.TopicsDiscussed)
	assert.Equal(t, "blunt", got.SuggestedImpression)

	// Absent fields keep their neutral values.
	assert.Equal(t, 0.5, got.IntellectualDepth)
	assert.Equal(t, 0.3, got.EmotionalIntensity)
}

func TestAnalyzer_PromptWindow(t *testing.T) {
	gen := NewMockGenerator()
	a := NewAnalyzer(gen)

	var history []domain.Message
	for i := 0; i < 8; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, domain.Message{Role: role, Content: fmt.Sprintf("message %d", i)})
	}

	_, err := a.Analyze(context.Background(), domain.AnalysisRequest{
		Philosophy: domain.PhilosophyNihilist,
		Cognition:  domain.CognitionDoubter,
		History:    history,
		Response:   "nothing matters",
	})
	require.NoError(t, err)
	require.Len(t, gen.Calls, 1)

	call := gen.Calls[0]
	assert.Equal(t, analysisSystemPrompt, call.System)
	assert.Contains(t, call.User, "philosophy is NIHILIST, cognition level is DOUBTER")
	assert.NotContains(t, call.User, "message 2")
	assert.Contains(t, call.User, "Agent: message 3")
	assert.Contains(t, call.User, "Partner: message 4")
	assert.True(t, strings.Contains(call.User, "Agent's latest response:\nnothing matters"))
}

func TestAnalyzer_Errors(t *testing.T) {
	gen := NewMockGenerator()
	gen.AnalysisResponse = "I refuse to answer in JSON"
	_, err := NewAnalyzer(gen).Analyze(context.Background(), domain.AnalysisRequest{})
	assert.Error(t, err)

	gen = NewMockGenerator()
	gen.Err = errors.New("rate limited")
	_, err = NewAnalyzer(gen).Analyze(context.Background(), domain.AnalysisRequest{})
	assert.ErrorIs(t, err, gen.Err)
}

func TestMockGenerator_DefaultAnalysisParses(t *testing.T) {
	got, err := NewAnalyzer(NewMockGenerator()).Analyze(context.Background(), domain.AnalysisRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"patterns"}, got.TopicsDiscussed)
	assert.Equal(t, "curious", got.SuggestedImpression)
}
