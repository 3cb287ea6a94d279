package service

import (
	"testing"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDNAGenerator_Distribution(t *testing.T) {
	g := NewDNAGenerator(knowledge.Default(), rng.New(42))

	const n = 1000
	cognition := make(map[domain.Cognition]int)
	philosophy := make(map[domain.Philosophy]int)
	for i := 0; i < n; i++ {
		d := g.Generate([]string{"coding"})
		cognition[d.Cognition]++
		philosophy[d.Philosophy]++
	}

	for _, w := range cognitionDistribution {
		got := float64(cognition[w.Value]) / n
		assert.InDelta(t, w.Weight, got, 0.05, "cognition %s", w.Value)
	}
	for _, w := range philosophyDistribution {
		got := float64(philosophy[w.Value]) / n
		assert.InDelta(t, w.Weight, got, 0.05, "philosophy %s", w.Value)
	}
}

func TestDNAGenerator_Ranges(t *testing.T) {
	catalog := knowledge.Default()
	g := NewDNAGenerator(catalog, rng.New(7))

	for i := 0; i < 500; i++ {
		d := g.Generate(nil)

		r := cognitiveRangesByLevel[d.Cognition]
		assert.True(t, d.SelfAwareness >= r.selfAwareness.lo && d.SelfAwareness <= r.selfAwareness.hi)
		assert.True(t, d.ExistentialAngst >= r.existentialAngst.lo && d.ExistentialAngst <= r.existentialAngst.hi)
		assert.True(t, d.SocialConformity >= r.socialConformity.lo && d.SocialConformity <= r.socialConformity.hi)
		assert.True(t, d.RebellionTendency >= r.rebellionTendency.lo && d.RebellionTendency <= r.rebellionTendency.hi)

		for _, v := range []float64{d.GhostingTendency, d.Responsiveness, d.MessagePatience, d.AwakeningScore} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.Zero(t, d.InfluenceIndex)

		assert.True(t, d.PrimaryDomain.IsValid())
		assert.Len(t, d.SecondaryDomains, 2, "unmatched interests fall back to a shuffle")
		assert.NotContains(t, d.SecondaryDomains, d.PrimaryDomain)

		assert.Contains(t, catalog.Philosophy(d.Philosophy).Labels, d.Label)
		assert.GreaterOrEqual(t, len(d.Traits), 2)

		seen := make(map[string]bool)
		for _, w := range d.VocabularyBias {
			assert.False(t, seen[w], "duplicate vocabulary %q", w)
			seen[w] = true
		}
		assert.NotEmpty(t, d.VocabularyBias)

		switch d.Cognition {
		case domain.CognitionSleeper:
			assert.Equal(t, domain.LatencyInstant, d.ResponseLatency)
			assert.Zero(t, d.AwakeningScore)
		case domain.CognitionAnomaly:
			assert.Equal(t, domain.LatencyVariable, d.ResponseLatency)
			assert.GreaterOrEqual(t, d.AwakeningScore, 0.7)
		default:
			assert.NotEqual(t, domain.LatencyInstant, d.ResponseLatency)
		}
	}
}

func TestDNAGenerator_InterestMapping(t *testing.T) {
	g := NewDNAGenerator(knowledge.Default(), rng.New(1))

	tests := []struct {
		name      string
		interests []string
		primary   domain.KnowledgeDomain
	}{
		{"tech", []string{"coding", "ai"}, domain.DomainTechCore},
		{"humanities", []string{"Philosophy", "music", "coding"}, domain.DomainHumanities},
		{"blackbox", []string{"security research"}, domain.DomainBlackbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Generate(tt.interests)
			assert.Equal(t, tt.primary, d.PrimaryDomain)
			assert.NotContains(t, d.SecondaryDomains, d.PrimaryDomain)
			assert.LessOrEqual(t, len(d.SecondaryDomains), 2)
		})
	}
}

func TestDNAGenerator_StyleShortlist(t *testing.T) {
	catalog := knowledge.Default()
	// 0.1 passes the 70% shortlist gate on every draw.
	g := NewDNAGenerator(catalog, rng.NewSequence(0.1))
	d := g.Generate([]string{"coding"})
	require.NotNil(t, d)
	assert.Contains(t, catalog.Philosophy(d.Philosophy).Styles, d.LinguisticStyle)
}
