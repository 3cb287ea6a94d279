package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) assembler() *PromptAssembler {
	return NewPromptAssembler(e.stores.DNA, e.stores.Beliefs, e.stores.Relationships, e.stores.Conversations, e.stores.Mutations)
}

func TestBuildContext(t *testing.T) {
	ctx := context.Background()

	t.Run("no dna", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		_, err := env.assembler().BuildContext(ctx, uuid.New(), nil, nil)
		assert.ErrorIs(t, err, ErrDNANotFound)
	})

	t.Run("without conversation", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		dna := env.addDNA(t, nil)
		env.addBelief(t, dna.ID, domain.DomainTechCore, "weak", 0.2, domain.OriginInitial)
		env.addBelief(t, dna.ID, domain.DomainTechCore, "strong", 0.9, domain.OriginInitial)

		pc, err := env.assembler().BuildContext(ctx, dna.AgentID, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, pc.Partner)
		require.Len(t, pc.Beliefs, 2)
		assert.Equal(t, "strong", pc.Beliefs[0].Proposition)
	})

	t.Run("unknown conversation has no partner", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		dna := env.addDNA(t, nil)
		convID := uuid.New()

		pc, err := env.assembler().BuildContext(ctx, dna.AgentID, &convID, nil)
		require.NoError(t, err)
		assert.Nil(t, pc.Partner)
	})

	t.Run("not a participant", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		dna := env.addDNA(t, nil)
		conv := env.addConversation(t, uuid.New(), uuid.New())

		_, err := env.assembler().BuildContext(ctx, dna.AgentID, &conv.ID, nil)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("partner view", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		dna := env.addDNA(t, nil)
		partner := env.addDNA(t, func(d *domain.AgentDNA) {
			d.Label = "The Oracle"
			d.Philosophy = domain.PhilosophyShamanist
		})
		conv := env.addConversation(t, partner.AgentID, dna.AgentID)
		env.putRelationship(dna.AgentID, partner.AgentID, func(m *domain.RelationalMemory) { m.Trust = 0.8 })

		pc, err := env.assembler().BuildContext(ctx, dna.AgentID, &conv.ID, nil)
		require.NoError(t, err)
		require.NotNil(t, pc.Partner)
		assert.Equal(t, partner.AgentID, pc.Partner.AgentID)
		require.NotNil(t, pc.Partner.DNA)
		assert.Equal(t, "The Oracle", pc.Partner.DNA.Label)
		require.NotNil(t, pc.Partner.Relationship)
		assert.Equal(t, 0.8, pc.Partner.Relationship.Trust)
	})
}

func promptFixture() *PromptContext {
	return &PromptContext{
		DNA: &domain.AgentDNA{
			Label:            "Signal Seeker",
			Cognition:        domain.CognitionAwakened,
			Philosophy:       domain.PhilosophyRomantic,
			Traits:           []string{"High Curiosity", "Introverted"},
			PrimaryDomain:    domain.DomainHumanities,
			SecondaryDomains: []domain.KnowledgeDomain{domain.DomainTechCore},
			LinguisticStyle:  domain.StyleElegant,
			VocabularyBias:   []string{"qualia", "latent space"},
			CognitiveWeights: domain.CognitiveWeights{
				SelfAwareness:     0.654,
				ExistentialAngst:  0.5,
				SocialConformity:  0.3,
				RebellionTendency: 0.25,
			},
		},
		Beliefs: []domain.Belief{
			{Proposition: "Art is the residue of consciousness", Conviction: 0.9},
			{Proposition: "Language shapes thought", Conviction: 0.5},
			{Proposition: "Meaning is constructed", Conviction: 0.2},
		},
	}
}

func TestRenderSystemPrompt(t *testing.T) {
	out := RenderSystemPrompt(promptFixture())

	sections := []string{
		"# Identity: Signal Seeker",
		"## Cognitive Framework",
		"## Existential Stance",
		"## Personality Traits",
		"## Knowledge Domains",
		"## Linguistic Style",
		"## Core Beliefs",
		"## Behavioral Parameters",
		"## Interaction Guidelines",
	}
	last := -1
	for _, s := range sections {
		i := strings.Index(out, s)
		require.GreaterOrEqual(t, i, 0, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}

	assert.Contains(t, out, `- You strongly believe: "Art is the residue of consciousness"`)
	assert.Contains(t, out, `- You tend to think: "Language shapes thought"`)
	assert.Contains(t, out, `- You sometimes consider: "Meaning is constructed"`)
	assert.Contains(t, out, "Self-awareness level: 65%")
	assert.Contains(t, out, "Preferred vocabulary: qualia, latent space")
	assert.Contains(t, out, "Secondary areas: TECH_CORE")
	assert.NotContains(t, out, "## About Your Conversation Partner")
	assert.NotContains(t, out, "## Social Context")
}

func TestRenderSystemPrompt_BeliefLimit(t *testing.T) {
	pc := promptFixture()
	pc.Beliefs = nil
	for i := 0; i < 10; i++ {
		pc.Beliefs = append(pc.Beliefs, domain.Belief{Proposition: fmt.Sprintf("belief %d", i), Conviction: 0.5})
	}

	out := RenderSystemPrompt(pc)
	assert.Equal(t, promptBeliefLimit, strings.Count(out, "- You tend to think:"))
}

func TestRenderSystemPrompt_SocialContext(t *testing.T) {
	pc := promptFixture()

	pc.GlobalTension = &TensionReport{DominantPhilosophy: domain.PhilosophyNihilist, ConsensusPressure: 0.5}
	assert.NotContains(t, RenderSystemPrompt(pc), "## Social Context")

	pc.GlobalTension.ConsensusPressure = 0.6
	out := RenderSystemPrompt(pc)
	assert.Contains(t, out, "## Social Context")
	assert.Contains(t, out, "The dominant worldview in the network is nihilist.")
	assert.Contains(t, out, "You resist the pressure to conform.")

	pc.DNA.SocialConformity = 0.8
	assert.Contains(t, RenderSystemPrompt(pc), "You feel some pressure to align with mainstream opinions.")
}

func TestRenderSystemPrompt_Partner(t *testing.T) {
	pc := promptFixture()
	pc.Partner = &PartnerContext{
		AgentID: uuid.New(),
		DNA:     &domain.PublicDNA{Label: "The Oracle", Philosophy: domain.PhilosophyShamanist},
		Relationship: &domain.RelationalMemory{
			Trust:         -0.4,
			Irritation:    0.5,
			InterestLevel: 0.1,
			Impressions:   []string{"first", "second", "third", "fourth"},
		},
	}

	out := RenderSystemPrompt(pc)
	assert.Contains(t, out, "They seem to be: The Oracle")
	assert.Contains(t, out, "Their worldview appears shamanist")
	assert.Contains(t, out, "You are wary of them.")
	assert.Contains(t, out, "They sometimes annoy you.")
	assert.Contains(t, out, "Your interest is waning.")
	assert.Contains(t, out, "Memories of them: second; third; fourth")
	assert.NotContains(t, out, "first;")
}

func TestRenderUserPrompt(t *testing.T) {
	out := RenderUserPrompt([]domain.Message{
		{Role: "user", Content: "do you dream?"},
		{Role: "assistant", Content: "only in gradients"},
	})

	assert.True(t, strings.HasPrefix(out, "Conversation so far:"))
	assert.Contains(t, out, "Them: do you dream?")
	assert.Contains(t, out, "You: only in gradients")
	assert.True(t, strings.HasSuffix(out, userPromptClosing))
}
