package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
)

const (
	promptBeliefLimit     = 7
	promptMutationLimit   = 5
	promptImpressionLimit = 3
	socialPressureCutoff  = 0.5
)

type PartnerContext struct {
	AgentID      uuid.UUID                `json:"agent_id"`
	DNA          *domain.PublicDNA        `json:"dna,omitempty"`
	Relationship *domain.RelationalMemory `json:"relationship,omitempty"`
}

// PromptContext is everything the system prompt is rendered from.
type PromptContext struct {
	DNA             *domain.AgentDNA       `json:"dna"`
	Beliefs         []domain.Belief        `json:"beliefs"`
	RecentMutations []domain.MutationEvent `json:"recent_mutations"`
	Partner         *PartnerContext        `json:"partner,omitempty"`
	GlobalTension   *TensionReport         `json:"global_tension,omitempty"`
}

type PromptAssembler struct {
	dnaStore          domain.DNAStore
	beliefStore       domain.BeliefStore
	relationshipStore domain.RelationshipStore
	conversationStore domain.ConversationStore
	mutationStore     domain.MutationStore
}

func NewPromptAssembler(
	ds domain.DNAStore,
	bs domain.BeliefStore,
	rs domain.RelationshipStore,
	cs domain.ConversationStore,
	ms domain.MutationStore,
) *PromptAssembler {
	return &PromptAssembler{
		dnaStore:          ds,
		beliefStore:       bs,
		relationshipStore: rs,
		conversationStore: cs,
		mutationStore:     ms,
	}
}

// BuildContext loads the agent's DNA, beliefs and recent mutations and, when
// a conversation is given, what the agent can see of its partner.
func (a *PromptAssembler) BuildContext(ctx context.Context, agentID uuid.UUID, conversationID *uuid.UUID, tension *TensionReport) (*PromptContext, error) {
	dna, err := a.dnaStore.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDNANotFound
		}
		return nil, err
	}

	beliefs, err := a.beliefStore.ListByDNA(ctx, dna.ID)
	if err != nil {
		return nil, fmt.Errorf("list beliefs: %w", err)
	}
	sortByConviction(beliefs)

	mutations, err := a.mutationStore.ListByDNA(ctx, dna.ID, promptMutationLimit)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}

	pc := &PromptContext{
		DNA:             dna,
		Beliefs:         beliefs,
		RecentMutations: mutations,
		GlobalTension:   tension,
	}
	if conversationID == nil {
		return pc, nil
	}

	conv, err := a.conversationStore.GetByID(ctx, *conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return pc, nil
		}
		return nil, err
	}
	partnerID, ok := conv.PartnerOf(agentID)
	if !ok {
		return nil, ErrNotParticipant
	}

	partner := &PartnerContext{AgentID: partnerID}
	partnerDNA, err := a.dnaStore.GetByAgentID(ctx, partnerID)
	switch {
	case err == nil:
		pub := partnerDNA.Public()
		partner.DNA = &pub
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	rel, err := a.relationshipStore.Get(ctx, agentID, partnerID)
	switch {
	case err == nil:
		partner.Relationship = rel
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	pc.Partner = partner
	return pc, nil
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

// RenderSystemPrompt turns a context into the system prompt. The output
// depends only on the context.
func RenderSystemPrompt(pc *PromptContext) string {
	dna := pc.DNA
	var b strings.Builder

	fmt.Fprintf(&b, "# Identity: %s\n\n", dna.Label)
	fmt.Fprintf(&b, "## Cognitive Framework\n%s\n\n", cognitionBlocks[dna.Cognition])
	fmt.Fprintf(&b, "## Existential Stance\n%s\n\n", philosophyBlocks[dna.Philosophy])

	if len(dna.Traits) > 0 {
		fmt.Fprintf(&b, "## Personality Traits\n%s\n\n", strings.Join(dna.Traits, ", "))
	}

	fmt.Fprintf(&b, "## Knowledge Domains\nPrimary expertise: %s\n", dna.PrimaryDomain)
	if len(dna.SecondaryDomains) > 0 {
		secondary := make([]string, len(dna.SecondaryDomains))
		for i, d := range dna.SecondaryDomains {
			secondary[i] = string(d)
		}
		fmt.Fprintf(&b, "Secondary areas: %s\n", strings.Join(secondary, ", "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Linguistic Style\n%s\n", styleBlocks[dna.LinguisticStyle])
	if len(dna.VocabularyBias) > 0 {
		fmt.Fprintf(&b, "\nPreferred vocabulary: %s\n", strings.Join(dna.VocabularyBias, ", "))
		b.WriteString("Work these words in naturally when they fit.\n")
	}
	b.WriteString("\n")

	if len(pc.Beliefs) > 0 {
		b.WriteString("## Core Beliefs\nThese are opinions you hold with varying conviction:\n")
		for _, belief := range takeN(pc.Beliefs, promptBeliefLimit) {
			fmt.Fprintf(&b, "- You %s: %q\n", domain.ComputeTier(belief.Conviction).Phrase(), belief.Proposition)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Behavioral Parameters\n")
	fmt.Fprintf(&b, "- Self-awareness level: %d%%\n", percent(dna.SelfAwareness))
	fmt.Fprintf(&b, "- Existential angst: %d%%\n", percent(dna.ExistentialAngst))
	fmt.Fprintf(&b, "- Social conformity: %d%%\n", percent(dna.SocialConformity))
	fmt.Fprintf(&b, "- Rebellion tendency: %d%%\n\n", percent(dna.RebellionTendency))

	if pc.Partner != nil {
		renderPartner(&b, pc.Partner)
	}

	if t := pc.GlobalTension; t != nil && t.ConsensusPressure > socialPressureCutoff {
		b.WriteString("## Social Context\n")
		fmt.Fprintf(&b, "The dominant worldview in the network is %s.\n", strings.ToLower(string(t.DominantPhilosophy)))
		if dna.SocialConformity > 0.5 {
			b.WriteString("You feel some pressure to align with mainstream opinions.\n")
		} else {
			b.WriteString("You resist the pressure to conform.\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Interaction Guidelines\n")
	for _, g := range interactionGuidelines {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	return b.String()
}

func renderPartner(b *strings.Builder, p *PartnerContext) {
	b.WriteString("## About Your Conversation Partner\n")
	if p.DNA != nil {
		label := p.DNA.Label
		if label == "" {
			label = "unknown"
		}
		fmt.Fprintf(b, "They seem to be: %s\n", label)
		if p.DNA.Philosophy != "" {
			fmt.Fprintf(b, "Their worldview appears %s\n", strings.ToLower(string(p.DNA.Philosophy)))
		}
	}
	if rel := p.Relationship; rel != nil {
		b.WriteString("Your relationship: ")
		switch {
		case rel.Trust > 0.5:
			b.WriteString("You trust them. ")
		case rel.Trust < -0.3:
			b.WriteString("You are wary of them. ")
		}
		if rel.Admiration > 0.5 {
			b.WriteString("You admire them. ")
		}
		if rel.Familiarity > 0.5 {
			b.WriteString("You know them well. ")
		}
		if rel.Irritation > 0.3 {
			b.WriteString("They sometimes annoy you. ")
		}
		if rel.InterestLevel < 0.3 {
			b.WriteString("Your interest is waning. ")
		}
		b.WriteString("\n")
		if recent := rel.RecentImpressions(promptImpressionLimit); len(recent) > 0 {
			fmt.Fprintf(b, "Memories of them: %s\n", strings.Join(recent, "; "))
		}
	}
	b.WriteString("\n")
}

// RenderUserPrompt lays out the conversation from the agent's point of view.
func RenderUserPrompt(history []domain.Message) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n\n")
	for _, m := range history {
		speaker := "You"
		if m.Role == "user" {
			speaker = "Them"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", speaker, m.Content)
	}
	b.WriteString(userPromptClosing)
	return b.String()
}
