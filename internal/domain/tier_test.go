package domain

import (
	"math"
	"testing"
)

func TestComputeTier(t *testing.T) {
	tests := []struct {
		name       string
		conviction float64
		want       ConvictionTier
	}{
		{"strong - 1.0", 1.0, TierStrong},
		{"strong boundary - 0.701", 0.701, TierStrong},
		{"leaning - 0.70", 0.70, TierLeaning},
		{"leaning - 0.55", 0.55, TierLeaning},
		{"leaning boundary - 0.401", 0.401, TierLeaning},
		{"tentative - 0.40", 0.40, TierTentative},
		{"tentative - 0.0", 0.0, TierTentative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTier(tt.conviction)
			if got != tt.want {
				t.Errorf("ComputeTier(%v) = %v, want %v", tt.conviction, got, tt.want)
			}
		})
	}
}

func TestTierPhrases(t *testing.T) {
	seen := map[string]bool{}
	for _, tier := range AllTiers() {
		p := tier.Phrase()
		if p == "" {
			t.Errorf("tier %s has no phrase", tier)
		}
		if seen[p] {
			t.Errorf("phrase %q used twice", p)
		}
		seen[p] = true
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp01(1.7); got != 1 {
		t.Errorf("Clamp01(1.7) = %v", got)
	}
	if got := Clamp01(-0.2); got != 0 {
		t.Errorf("Clamp01(-0.2) = %v", got)
	}
	if got := ClampSigned(-3); got != -1 {
		t.Errorf("ClampSigned(-3) = %v", got)
	}
	if got := Clamp(math.NaN(), 0.2, 0.9); got != 0.2 {
		t.Errorf("Clamp(NaN) = %v, want lower bound", got)
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	a := &ConversationAnalysis{
		ExtractedBeliefs:       []BeliefInput{{Domain: DomainTechCore, Proposition: "x", Conviction: 4}},
		SentimentTowardPartner: 2,
		TopicsRepeated:         -1,
		IntellectualDepth:      -0.5,
		EmotionalIntensity:     1.5,
	}
	a.Normalize()

	if a.SentimentTowardPartner != 1 || a.IntellectualDepth != 0 || a.EmotionalIntensity != 1 {
		t.Errorf("scores not clamped: %+v", a)
	}
	if a.TopicsRepeated != 0 || a.TopicsDiscussed == nil {
		t.Errorf("topics not normalized: %+v", a)
	}
	if b := a.ExtractedBeliefs[0]; b.Conviction != 1 || b.Origin != OriginDialogue {
		t.Errorf("belief not normalized: %+v", b)
	}
}
