package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
)

const analysisHistoryWindow = 5

// Analyzer reads a generated turn through a text generator and parses the
// structured signals out of its JSON answer.
type Analyzer struct {
	gen domain.TextGenerator
}

func NewAnalyzer(gen domain.TextGenerator) *Analyzer {
	return &Analyzer{gen: gen}
}

func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.ConversationAnalysis, error) {
	history := req.History
	if len(history) > analysisHistoryWindow {
		history = history[len(history)-analysisHistoryWindow:]
	}

	var sb strings.Builder
	for _, m := range history {
		speaker := "Agent"
		if m.Role == "user" {
			speaker = "Partner"
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(analysisPrompt, req.Philosophy, req.Cognition, sb.String(), req.Response)
	result, err := a.gen.Generate(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze conversation: %w", err)
	}

	return parseAnalysis(result)
}

// parseAnalysis decodes onto the neutral analysis so absent fields keep
// their neutral values.
func parseAnalysis(raw string) (*domain.ConversationAnalysis, error) {
	raw = stripFences(raw)

	analysis := domain.NeutralAnalysis()
	if err := json.Unmarshal([]byte(raw), analysis); err != nil {
		return nil, fmt.Errorf("parse analysis result: %w (raw: %s)", err, raw)
	}

	beliefs := analysis.ExtractedBeliefs[:0]
	for _, b := range analysis.ExtractedBeliefs {
		b.Proposition = strings.TrimSpace(b.Proposition)
		if !b.Domain.IsValid() || b.Proposition == "" {
			continue
		}
		if !b.Origin.IsValid() {
			b.Origin = domain.OriginDialogue
		}
		beliefs = append(beliefs, b)
	}
	analysis.ExtractedBeliefs = beliefs
	analysis.Normalize()
	return analysis, nil
}

// Strip markdown fences if present
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
