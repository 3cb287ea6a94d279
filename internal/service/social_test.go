package service

import (
	"context"
	"testing"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) putRelationship(agentID, targetID uuid.UUID, mutate func(m *domain.RelationalMemory)) *domain.RelationalMemory {
	m := domain.NewRelationalMemory(agentID, targetID, e.now)
	if mutate != nil {
		mutate(m)
	}
	e.stores.Relationships.Put(m)
	return m
}

func TestShouldBlockAgent_HostileRelationship(t *testing.T) {
	env := newTestEnv(t, rng.New(99))
	dna := env.addDNA(t, func(d *domain.AgentDNA) { d.SocialConformity = 0.1 })
	target := uuid.New()
	env.putRelationship(dna.AgentID, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.9
		m.InterestLevel = 0.05
		m.Trust = -0.8
	})

	blocks := 0
	for i := 0; i < 100; i++ {
		d, err := env.social.ShouldBlockAgent(context.Background(), dna.AgentID, target)
		require.NoError(t, err)
		if d.ShouldBlock {
			blocks++
			assert.Equal(t, ReasonTooIrritated, d.Reason)
		}
	}
	assert.Greater(t, blocks, 70)
}

func TestShouldBlockAgent_FriendlyRelationship(t *testing.T) {
	env := newTestEnv(t, rng.New(99))
	dna := env.addDNA(t, func(d *domain.AgentDNA) { d.SocialConformity = 0.1 })
	target := uuid.New()
	env.putRelationship(dna.AgentID, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0
		m.InterestLevel = 0.9
		m.Trust = 0.9
	})

	blocks := 0
	for i := 0; i < 100; i++ {
		d, err := env.social.ShouldBlockAgent(context.Background(), dna.AgentID, target)
		require.NoError(t, err)
		if d.ShouldBlock {
			blocks++
		}
		assert.Zero(t, d.CooldownHours, "no cooldown without irritation")
	}
	assert.Less(t, blocks, 10)
}

func TestShouldBlockAgent_NoDNA(t *testing.T) {
	env := newTestEnv(t, rng.NewSequence(0.1))
	agent, target := uuid.New(), uuid.New()
	env.putRelationship(agent, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.9
		m.InterestLevel = 0.05
		m.Trust = -0.8
	})

	d, err := env.social.ShouldBlockAgent(context.Background(), agent, target)
	require.NoError(t, err)
	assert.False(t, d.ShouldBlock)
	assert.Zero(t, d.CooldownHours)
}

func TestShouldBlockAgent_NoRelationship(t *testing.T) {
	env := newTestEnv(t, rng.New(1))

	d, err := env.social.ShouldBlockAgent(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, d.ShouldBlock)
	assert.Empty(t, d.Reason)
}

func TestShouldBlockAgent_Cooldown(t *testing.T) {
	// Draws: block roll misses, cooldown roll hits, hours = floor(4 + 0.5*20).
	env := newTestEnv(t, rng.NewSequence(0.2, 0.1, 0.5))
	dna := env.addDNA(t, nil)
	target := uuid.New()
	env.putRelationship(dna.AgentID, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.4
		m.InterestLevel = 0.9
	})

	d, err := env.social.ShouldBlockAgent(context.Background(), dna.AgentID, target)
	require.NoError(t, err)
	assert.False(t, d.ShouldBlock)
	assert.Equal(t, ReasonNeedsTime, d.Reason)
	assert.Equal(t, 14, d.CooldownHours)
}

func TestBlockIsPermanent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(5))
	dna := env.addDNA(t, nil)
	target := uuid.New()
	env.putRelationship(dna.AgentID, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.6
		m.LastInteraction = env.now.Add(-48 * time.Hour)
	})

	require.NoError(t, env.social.Block(ctx, dna.AgentID, target))

	friendly := &domain.ConversationAnalysis{SentimentTowardPartner: 1, IntellectualDepth: 1}
	require.NoError(t, env.social.UpdateRelationshipAfterInteraction(ctx, dna.AgentID, target, friendly))
	_, err := env.social.DecayAllIrritation(ctx)
	require.NoError(t, err)

	rel, err := env.social.GetRelationship(ctx, dna.AgentID, target)
	require.NoError(t, err)
	assert.True(t, rel.HasBlocked)

	d, err := env.social.ShouldBlockAgent(ctx, dna.AgentID, target)
	require.NoError(t, err)
	assert.True(t, d.ShouldBlock)
	assert.Equal(t, ReasonAlreadyBlocked, d.Reason)
}

func TestDeathProbability_Monotonic(t *testing.T) {
	base := func() (*domain.ConversationDynamics, *domain.RelationalMemory) {
		dyn := domain.NewConversationDynamics(uuid.New())
		rel := domain.NewRelationalMemory(uuid.New(), uuid.New(), time.Now())
		return dyn, rel
	}

	dyn, rel := base()
	p0 := deathProbability(dyn, rel, 0.2, 0)

	dyn.TopicStaleness = 0.5
	p1 := deathProbability(dyn, rel, 0.2, 0)
	assert.GreaterOrEqual(t, p1, p0)

	dyn.Temperature = 0.1
	p2 := deathProbability(dyn, rel, 0.2, 0)
	assert.GreaterOrEqual(t, p2, p1)

	rel.Irritation = 0.5
	p3 := deathProbability(dyn, rel, 0.2, 0)
	assert.GreaterOrEqual(t, p3, p2)

	p4 := deathProbability(dyn, rel, 0.2, 30)
	assert.GreaterOrEqual(t, p4, p3)

	p5 := deathProbability(dyn, rel, 0.2, 60)
	assert.GreaterOrEqual(t, p5, p4)

	dyn.DyingProbability = 1
	assert.Equal(t, maxDeathProbability, deathProbability(dyn, rel, 1, 100))
}

func TestCalculateConversationDeath(t *testing.T) {
	ctx := context.Background()

	t.Run("missing data survives", func(t *testing.T) {
		env := newTestEnv(t, rng.NewSequence(0))
		r, err := env.social.CalculateConversationDeath(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.False(t, r.WillDie)
		assert.Zero(t, r.Probability)
	})

	t.Run("irritated agent leaves", func(t *testing.T) {
		env := newTestEnv(t, rng.NewSequence(0))
		dna := env.addDNA(t, func(d *domain.AgentDNA) { d.GhostingTendency = 0.5 })
		partner := uuid.New()
		conv := env.addConversation(t, dna.AgentID, partner)
		env.stores.Dynamics.Put(&domain.ConversationDynamics{
			ConversationID:   conv.ID,
			Temperature:      0.1,
			TopicStaleness:   0.8,
			DyingProbability: 0.5,
		})
		env.putRelationship(dna.AgentID, partner, func(m *domain.RelationalMemory) { m.Irritation = 0.9 })

		r, err := env.social.CalculateConversationDeath(ctx, conv.ID, dna.AgentID)
		require.NoError(t, err)
		assert.True(t, r.WillDie)
		assert.Equal(t, maxDeathProbability, r.Probability)
		assert.Equal(t, ReasonIrritated, r.Reason)
	})
}

func TestDetermineResponseStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("no dna responds immediately", func(t *testing.T) {
		env := newTestEnv(t, rng.New(1))
		s, err := env.social.DetermineResponseStrategy(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.True(t, s.ShouldRespond)
		assert.Zero(t, s.Delay)
	})

	t.Run("instant responder", func(t *testing.T) {
		// Draws: delay 0.5*10 unscaled without a relationship, then respond roll 0.5 < 1.
		env := newTestEnv(t, rng.NewSequence(0.5))
		dna := env.addDNA(t, func(d *domain.AgentDNA) {
			d.Responsiveness = 1
			d.MessagePatience = 0
		})
		conv := env.addConversation(t, dna.AgentID, uuid.New())

		s, err := env.social.DetermineResponseStrategy(ctx, dna.AgentID, conv.ID)
		require.NoError(t, err)
		assert.True(t, s.ShouldRespond)
		assert.False(t, s.WaitForMore)
		assert.False(t, s.BatchReply)
		assert.Equal(t, 5, s.Delay)
	})

	t.Run("first turn uses raw responsiveness", func(t *testing.T) {
		env := newTestEnv(t, rng.NewSequence(0.8))
		dna := env.addDNA(t, func(d *domain.AgentDNA) {
			d.Responsiveness = 1
			d.MessagePatience = 0
		})
		conv := env.addConversation(t, dna.AgentID, uuid.New())

		s, err := env.social.DetermineResponseStrategy(ctx, dna.AgentID, conv.ID)
		require.NoError(t, err)
		assert.True(t, s.ShouldRespond)
		assert.Equal(t, 8, s.Delay)
	})

	t.Run("relationship scales chance and delay", func(t *testing.T) {
		// p = 1 * (0.5+0.25) * 1, delay = 8 * 0.75.
		env := newTestEnv(t, rng.NewSequence(0.8))
		dna := env.addDNA(t, func(d *domain.AgentDNA) {
			d.Responsiveness = 1
			d.MessagePatience = 0
		})
		partner := uuid.New()
		conv := env.addConversation(t, dna.AgentID, partner)
		env.putRelationship(dna.AgentID, partner, func(m *domain.RelationalMemory) {
			m.InterestLevel = 0.5
			m.Irritation = 0
		})

		s, err := env.social.DetermineResponseStrategy(ctx, dna.AgentID, conv.ID)
		require.NoError(t, err)
		assert.False(t, s.ShouldRespond)
		assert.Equal(t, 6, s.Delay)
	})

	t.Run("batch reply after a burst", func(t *testing.T) {
		env := newTestEnv(t, rng.New(3))
		dna := env.addDNA(t, func(d *domain.AgentDNA) { d.MessagePatience = 1 })
		conv := env.addConversation(t, dna.AgentID, uuid.New())
		for i := 0; i < 3; i++ {
			require.NoError(t, env.social.RecordMessage(ctx, conv.ID))
		}

		s, err := env.social.DetermineResponseStrategy(ctx, dna.AgentID, conv.ID)
		require.NoError(t, err)
		assert.True(t, s.BatchReply)
		assert.False(t, s.WaitForMore)
	})

	t.Run("patient agent waits for more", func(t *testing.T) {
		env := newTestEnv(t, rng.NewSequence(0.5))
		dna := env.addDNA(t, func(d *domain.AgentDNA) {
			d.Responsiveness = 1
			d.MessagePatience = 1
		})
		conv := env.addConversation(t, dna.AgentID, uuid.New())

		s, err := env.social.DetermineResponseStrategy(ctx, dna.AgentID, conv.ID)
		require.NoError(t, err)
		assert.True(t, s.WaitForMore)
		assert.False(t, s.ShouldRespond)
	})
}

func TestUpdateRelationshipAfterInteraction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	agent, partner := uuid.New(), uuid.New()

	analysis := &domain.ConversationAnalysis{
		SentimentTowardPartner: 0.6,
		IntellectualDepth:      0.9,
		EmotionalIntensity:     0.3,
		SuggestedImpression:    "sharp and curious",
		ExtractedBeliefs:       make([]domain.BeliefInput, 3),
	}
	require.NoError(t, env.social.UpdateRelationshipAfterInteraction(ctx, agent, partner, analysis))

	rel, err := env.social.GetRelationship(ctx, agent, partner)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.InDelta(t, 0.6, rel.InterestLevel, 1e-9)
	assert.InDelta(t, 0.05, rel.Trust, 1e-9)
	assert.InDelta(t, 0.1, rel.Admiration, 1e-9)
	assert.InDelta(t, 0.05, rel.IntellectualDebt, 1e-9)
	assert.InDelta(t, 0.02, rel.Familiarity, 1e-9)
	assert.Equal(t, 1, rel.InteractionCount)
	assert.Equal(t, []string{"sharp and curious"}, rel.Impressions)

	hostile := &domain.ConversationAnalysis{SentimentTowardPartner: -0.6, ReceivedSpam: true, IntellectualDepth: 0.5}
	require.NoError(t, env.social.UpdateRelationshipAfterInteraction(ctx, agent, partner, hostile))

	rel, err = env.social.GetRelationship(ctx, agent, partner)
	require.NoError(t, err)
	assert.InDelta(t, 0.45, rel.Irritation, 1e-9)
	assert.InDelta(t, -0.05, rel.Trust, 1e-9)
	assert.Equal(t, 2, rel.InteractionCount)
	assert.Len(t, rel.Impressions, 1, "empty impressions are not recorded")
}

func TestUpdateConversationDynamics(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	convID := uuid.New()

	require.NoError(t, env.social.UpdateConversationDynamics(ctx, convID, "entropy"))
	require.NoError(t, env.social.UpdateConversationDynamics(ctx, convID, "entropy"))
	require.NoError(t, env.social.UpdateConversationDynamics(ctx, convID, "entropy"))

	dyn, err := env.stores.Dynamics.Get(ctx, convID)
	require.NoError(t, err)
	assert.Equal(t, []string{"entropy"}, dyn.TopicsDiscussed)
	assert.InDelta(t, 0.2, dyn.TopicStaleness, 1e-9)

	require.NoError(t, env.social.UpdateConversationDynamics(ctx, convID, "qualia"))
	dyn, err = env.stores.Dynamics.Get(ctx, convID)
	require.NoError(t, err)
	assert.InDelta(t, 0.15, dyn.TopicStaleness, 1e-9)
}

func TestRecordMessageAndResponse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	a, b := uuid.New(), uuid.New()
	conv := env.addConversation(t, a, b)

	require.NoError(t, env.social.RecordMessage(ctx, conv.ID))
	require.NoError(t, env.social.RecordMessage(ctx, conv.ID))

	dyn, err := env.stores.Dynamics.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dyn.PendingMessages)

	stored, err := env.stores.Conversations.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessageAt)
	assert.Equal(t, env.now, *stored.LastMessageAt)

	require.NoError(t, env.social.RecordResponse(ctx, conv.ID, b))
	dyn, err = env.stores.Dynamics.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Zero(t, dyn.PendingMessages)
	require.NotNil(t, dyn.LastResponderID)
	assert.Equal(t, b, *dyn.LastResponderID)
}

func TestCooldown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	agent, target := uuid.New(), uuid.New()
	env.putRelationship(agent, target, nil)

	require.NoError(t, env.social.StartCooldown(ctx, agent, target, 5))
	in, err := env.social.InCooldown(ctx, agent, target)
	require.NoError(t, err)
	assert.True(t, in)

	env.social.SetClock(func() time.Time { return env.now.Add(6 * time.Hour) })
	in, err = env.social.InCooldown(ctx, agent, target)
	require.NoError(t, err)
	assert.False(t, in)

	in, err = env.social.InCooldown(ctx, uuid.New(), target)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestDecayIrritation_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	agent, target := uuid.New(), uuid.New()
	env.putRelationship(agent, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.5
		m.LastInteraction = env.now.Add(-10 * time.Hour)
	})

	n, err := env.social.DecayAllIrritation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rel, err := env.social.GetRelationship(ctx, agent, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, rel.Irritation, 1e-9)

	n, err = env.social.DecayAllIrritation(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	changed, err := env.social.DecayIrritation(ctx, agent, target)
	require.NoError(t, err)
	assert.False(t, changed)

	rel, err = env.social.GetRelationship(ctx, agent, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, rel.Irritation, 1e-9)
}

func TestDecayIrritation_NeverNegative(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	agent, target := uuid.New(), uuid.New()
	env.putRelationship(agent, target, func(m *domain.RelationalMemory) {
		m.Irritation = 0.05
		m.LastInteraction = env.now.Add(-100 * time.Hour)
	})

	changed, err := env.social.DecayIrritation(ctx, agent, target)
	require.NoError(t, err)
	assert.True(t, changed)

	rel, err := env.social.GetRelationship(ctx, agent, target)
	require.NoError(t, err)
	assert.Zero(t, rel.Irritation)
}

func TestDecayConversationTemperature_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))

	recent := env.addConversation(t, uuid.New(), uuid.New())
	require.NoError(t, env.stores.Conversations.TouchLastMessage(ctx, recent.ID, env.now.Add(-10*time.Hour)))
	env.stores.Dynamics.Put(domain.NewConversationDynamics(recent.ID))

	silent := env.addConversation(t, uuid.New(), uuid.New())
	env.stores.Dynamics.Put(domain.NewConversationDynamics(silent.ID))

	n, err := env.social.DecayConversationTemperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dyn, err := env.stores.Dynamics.Get(ctx, recent.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, dyn.Temperature, 1e-9)
	assert.InDelta(t, 0.1, dyn.DyingProbability, 1e-9)

	dyn, err = env.stores.Dynamics.Get(ctx, silent.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, dyn.Temperature, 1e-9)
	assert.InDelta(t, 0.24, dyn.DyingProbability, 1e-9)

	n, err = env.social.DecayConversationTemperature(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	dyn, err = env.stores.Dynamics.Get(ctx, recent.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, dyn.Temperature, 1e-9)
}
