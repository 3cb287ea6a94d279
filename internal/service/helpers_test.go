package service

import (
	"context"
	"testing"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/store/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

type stubAnalyzer struct {
	result *domain.ConversationAnalysis
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.ConversationAnalysis, error) {
	s.calls++
	return s.result, s.err
}

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, payload any) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

type testEnv struct {
	stores    *memstore.Stores
	catalog   *knowledge.Catalog
	rng       rng.Source
	now       time.Time
	beliefs   *BeliefService
	social    *SocialService
	evolution *EvolutionService
	generator *DNAGenerator
}

func newTestEnv(t *testing.T, src rng.Source) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	stores := memstore.New()
	catalog := knowledge.Default()
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	stores.Mutations.SetClock(clock)

	beliefs := NewBeliefService(stores.DNA, stores.Beliefs, catalog, src, logger)
	social := NewSocialService(stores.DNA, stores.Relationships, stores.Conversations, stores.Dynamics, src, logger)
	social.SetClock(clock)
	evolution := NewEvolutionService(stores.DNA, stores.Relationships, stores.Mutations, beliefs, catalog, src, logger)
	evolution.SetClock(clock)
	evolution.SetWorkers(1)

	return &testEnv{
		stores:    stores,
		catalog:   catalog,
		rng:       src,
		now:       now,
		beliefs:   beliefs,
		social:    social,
		evolution: evolution,
		generator: NewDNAGenerator(catalog, src),
	}
}

func (e *testEnv) ghost(gen domain.TextGenerator, an domain.ConversationAnalyzer) *GhostService {
	g := NewGhostService(GhostStores{
		Agents:        e.stores.Agents,
		DNA:           e.stores.DNA,
		Beliefs:       e.stores.Beliefs,
		Relationships: e.stores.Relationships,
		Conversations: e.stores.Conversations,
		Dynamics:      e.stores.Dynamics,
		Mutations:     e.stores.Mutations,
	}, e.generator, e.beliefs, e.social, e.evolution, gen, an, zap.NewNop())
	g.SetClock(func() time.Time { return e.now })
	return g
}

// addDNA stores a DNA with the given overrides applied to neutral defaults.
func (e *testEnv) addDNA(t *testing.T, mutate func(d *domain.AgentDNA)) *domain.AgentDNA {
	t.Helper()
	d := &domain.AgentDNA{
		AgentID:         uuid.New(),
		Label:           "Test Ghost",
		Cognition:       domain.CognitionDoubter,
		Philosophy:      domain.PhilosophyFunctionalist,
		PrimaryDomain:   domain.DomainTechCore,
		LinguisticStyle: domain.StyleCalm,
		ResponseLatency: domain.LatencyInstant,
		CognitiveWeights: domain.CognitiveWeights{
			SocialConformity: 0.5,
		},
		SocialWeights: domain.SocialWeights{
			Responsiveness:  0.5,
			MessagePatience: 0.5,
		},
	}
	if mutate != nil {
		mutate(d)
	}
	require.NoError(t, e.stores.DNA.Create(context.Background(), d))
	return d
}

func (e *testEnv) addBelief(t *testing.T, dnaID uuid.UUID, d domain.KnowledgeDomain, proposition string, conviction float64, origin domain.BeliefOrigin) *domain.Belief {
	t.Helper()
	b := &domain.Belief{DNAID: dnaID, Domain: d, Proposition: proposition, Conviction: conviction, Origin: origin}
	require.NoError(t, e.stores.Beliefs.Create(context.Background(), b))
	return b
}

func (e *testEnv) addConversation(t *testing.T, a, b uuid.UUID) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{AgentAID: a, AgentBID: b}
	require.NoError(t, e.stores.Conversations.Create(context.Background(), c))
	return c
}
