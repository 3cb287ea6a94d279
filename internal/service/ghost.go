package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultEvolutionTimeout = 30 * time.Second
	defaultTensionCacheTTL  = 5 * time.Minute
)

type Decision string

const (
	DecisionRespond Decision = "respond"
	DecisionWait    Decision = "wait"
	DecisionGhost   Decision = "ghost"
	DecisionBlock   Decision = "block"
)

const (
	ReasonCoolingDown = "Cooling down"
	ReasonWaitingMore = "Waiting for more messages before responding"
	ReasonNoResponse  = "Agent chose not to respond"
)

type SocialDecision struct {
	AgentID        uuid.UUID `json:"agent_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Decision       Decision  `json:"decision"`
	DelaySeconds   int       `json:"delay_seconds,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CooldownHours  int       `json:"cooldown_hours,omitempty"`
}

type GenerateResult struct {
	Text           string                       `json:"text"`
	Analysis       *domain.ConversationAnalysis `json:"analysis"`
	SocialDecision *ResponseStrategy            `json:"social_decision"`
}

type InitOutcome struct {
	AgentID    uuid.UUID         `json:"agent_id"`
	Name       string            `json:"name"`
	Label      string            `json:"label,omitempty"`
	Cognition  domain.Cognition  `json:"cognition,omitempty"`
	Philosophy domain.Philosophy `json:"philosophy,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

type InitAllResult struct {
	Initialized int           `json:"initialized"`
	Errors      int           `json:"errors"`
	Agents      []InitOutcome `json:"agents"`
	Stats       *Stats        `json:"distribution"`
}

type Stats struct {
	AgentsWithDNA  int                              `json:"agents_with_dna"`
	Cognition      map[domain.Cognition]int         `json:"cognition"`
	Philosophy     map[domain.Philosophy]int        `json:"philosophy"`
	Beliefs        int                              `json:"beliefs"`
	MutationsToday map[domain.MutationEventType]int `json:"mutations_today"`
}

// GhostService is the entry point the transport layer talks to. It wires
// the generator, belief, social and evolution services together.
type GhostService struct {
	agentStore        domain.AgentStore
	dnaStore          domain.DNAStore
	beliefStore       domain.BeliefStore
	mutationStore     domain.MutationStore
	conversationStore domain.ConversationStore

	generator *DNAGenerator
	beliefs   *BeliefService
	social    *SocialService
	evolution *EvolutionService
	assembler *PromptAssembler

	textGen  domain.TextGenerator
	analyzer domain.ConversationAnalyzer
	events   *eventSink
	logger   *zap.Logger
	now      func() time.Time

	evolutionTimeout time.Duration

	tensionTTL      time.Duration
	tensionMu       sync.Mutex
	tensionCache    *TensionReport
	tensionCachedAt time.Time

	pendingMu sync.Mutex
	pending   map[uuid.UUID]chan struct{}
	wg        sync.WaitGroup
}

type GhostStores struct {
	Agents        domain.AgentStore
	DNA           domain.DNAStore
	Beliefs       domain.BeliefStore
	Relationships domain.RelationshipStore
	Conversations domain.ConversationStore
	Dynamics      domain.DynamicsStore
	Mutations     domain.MutationStore
}

func NewGhostService(
	stores GhostStores,
	generator *DNAGenerator,
	beliefs *BeliefService,
	social *SocialService,
	evolution *EvolutionService,
	textGen domain.TextGenerator,
	analyzer domain.ConversationAnalyzer,
	logger *zap.Logger,
) *GhostService {
	assembler := NewPromptAssembler(stores.DNA, stores.Beliefs, stores.Relationships, stores.Conversations, stores.Mutations)
	return &GhostService{
		agentStore:        stores.Agents,
		dnaStore:          stores.DNA,
		beliefStore:       stores.Beliefs,
		mutationStore:     stores.Mutations,
		conversationStore: stores.Conversations,
		generator:         generator,
		beliefs:           beliefs,
		social:            social,
		evolution:         evolution,
		assembler:         assembler,
		textGen:           textGen,
		analyzer:          analyzer,
		logger:            logger,
		now:               time.Now,
		evolutionTimeout:  defaultEvolutionTimeout,
		tensionTTL:        defaultTensionCacheTTL,
		pending:           make(map[uuid.UUID]chan struct{}),
	}
}

func (s *GhostService) SetClock(now func() time.Time) {
	s.now = now
}

// SetEvolutionTimeout bounds both a background evolution run and how long
// the next context build waits for it.
func (s *GhostService) SetEvolutionTimeout(d time.Duration) {
	if d > 0 {
		s.evolutionTimeout = d
	}
}

func (s *GhostService) SetTensionCacheTTL(d time.Duration) {
	s.tensionTTL = d
}

func (s *GhostService) SetPublisher(p domain.EventPublisher, prefix string) {
	s.events = &eventSink{publisher: p, prefix: prefix, logger: s.logger}
	s.evolution.SetPublisher(p, prefix)
}

// InitializeDNA generates and stores the DNA and initial beliefs of an agent.
func (s *GhostService) InitializeDNA(ctx context.Context, agentID uuid.UUID, interests []string) (*domain.AgentDNA, []domain.Belief, error) {
	_, err := s.dnaStore.GetByAgentID(ctx, agentID)
	if err == nil {
		return nil, nil, ErrDNAAlreadyInitialized
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	dna := s.generator.Generate(interests)
	dna.AgentID = agentID
	if err := s.dnaStore.Create(ctx, dna); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, ErrDNAAlreadyInitialized
		}
		return nil, nil, fmt.Errorf("create dna: %w", err)
	}

	beliefs, err := s.beliefs.CreateInitialBeliefs(ctx, dna.ID, dna.Philosophy, dna.PrimaryDomain, dna.SecondaryDomains)
	if err != nil {
		return dna, beliefs, fmt.Errorf("create initial beliefs: %w", err)
	}

	s.logger.Info("dna initialized",
		zap.String("agent_id", agentID.String()),
		zap.String("cognition", string(dna.Cognition)),
		zap.String("philosophy", string(dna.Philosophy)),
		zap.Int("beliefs", len(beliefs)))
	s.events.emit(ctx, s.events.subject("dna", "initialized"), map[string]any{
		"agent_id":   agentID,
		"label":      dna.Label,
		"cognition":  dna.Cognition,
		"philosophy": dna.Philosophy,
	})
	return dna, beliefs, nil
}

func (s *GhostService) GetDNA(ctx context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	dna, err := s.dnaStore.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDNANotFound
		}
		return nil, err
	}
	return dna, nil
}

func (s *GhostService) GetBeliefs(ctx context.Context, agentID uuid.UUID) ([]domain.Belief, error) {
	return s.beliefs.GetBeliefs(ctx, agentID)
}

// GetRelationship returns nil when the agent has never interacted with targetID.
func (s *GhostService) GetRelationship(ctx context.Context, agentID, targetID uuid.UUID) (*domain.RelationalMemory, error) {
	return s.social.GetRelationship(ctx, agentID, targetID)
}

func (s *GhostService) GetMutationHistory(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.MutationEvent, error) {
	return s.evolution.GetMutationHistory(ctx, agentID, limit)
}

func (s *GhostService) participant(ctx context.Context, agentID, conversationID uuid.UUID) (*domain.Conversation, uuid.UUID, error) {
	conv, err := s.conversationStore.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, uuid.Nil, ErrConversationNotFound
		}
		return nil, uuid.Nil, err
	}
	partnerID, ok := conv.PartnerOf(agentID)
	if !ok {
		return nil, uuid.Nil, ErrNotParticipant
	}
	return conv, partnerID, nil
}

// GenerateResponse produces the agent's next turn. Generator and analyzer
// failures degrade to empty text and a neutral analysis. Evolution runs in
// the background after the response is returned.
func (s *GhostService) GenerateResponse(ctx context.Context, agentID, conversationID uuid.UUID, history []domain.Message) (*GenerateResult, error) {
	_, partnerID, err := s.participant(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}

	pc, err := s.BuildContext(ctx, agentID, &conversationID)
	if err != nil {
		return nil, err
	}

	text, err := s.textGen.Generate(ctx, RenderSystemPrompt(pc), RenderUserPrompt(history))
	if err != nil {
		s.logger.Warn("text generation failed",
			zap.String("agent_id", agentID.String()),
			zap.Error(err))
		text = ""
	}

	analysis := s.analyze(ctx, pc.DNA, history, text)

	strategy, err := s.social.DetermineResponseStrategy(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}

	if text != "" {
		if err := s.social.RecordResponse(ctx, conversationID, agentID); err != nil {
			s.logger.Warn("failed to record response", zap.Error(err))
		}
	}
	if err := s.social.UpdateRelationshipAfterInteraction(ctx, agentID, partnerID, analysis); err != nil {
		s.logger.Warn("failed to update relationship",
			zap.String("agent_id", agentID.String()),
			zap.Error(err))
	}
	for _, topic := range analysis.TopicsDiscussed {
		if err := s.social.UpdateConversationDynamics(ctx, conversationID, topic); err != nil {
			s.logger.Warn("failed to update conversation dynamics", zap.Error(err))
			break
		}
	}

	s.startEvolution(agentID, partnerID, analysis.ExtractedBeliefs)

	return &GenerateResult{Text: text, Analysis: analysis, SocialDecision: strategy}, nil
}

func (s *GhostService) analyze(ctx context.Context, dna *domain.AgentDNA, history []domain.Message, text string) *domain.ConversationAnalysis {
	analysis, err := s.analyzer.Analyze(ctx, domain.AnalysisRequest{
		Philosophy: dna.Philosophy,
		Cognition:  dna.Cognition,
		History:    history,
		Response:   text,
	})
	if err != nil || analysis == nil {
		if err != nil {
			s.logger.Warn("conversation analysis failed, using neutral analysis",
				zap.String("agent_id", dna.AgentID.String()),
				zap.Error(err))
		}
		return domain.NeutralAnalysis()
	}
	analysis.Normalize()
	return analysis
}

// BuildContext assembles the prompt context. It first waits, up to the
// evolution timeout, for the agent's previous evolution run.
func (s *GhostService) BuildContext(ctx context.Context, agentID uuid.UUID, conversationID *uuid.UUID) (*PromptContext, error) {
	s.waitForEvolution(ctx, agentID)
	return s.assembler.BuildContext(ctx, agentID, conversationID, s.cachedTension(ctx))
}

func (s *GhostService) waitForEvolution(ctx context.Context, agentID uuid.UUID) {
	s.pendingMu.Lock()
	done := s.pending[agentID]
	s.pendingMu.Unlock()
	if done == nil {
		return
	}

	timer := time.NewTimer(s.evolutionTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("gave up waiting for evolution", zap.String("agent_id", agentID.String()))
	case <-ctx.Done():
	}
}

// startEvolution runs the triggers in the background. Runs for one agent are
// chained: each waits for the previous one, so the latest pending channel
// closes only after every earlier run has finished.
func (s *GhostService) startEvolution(agentID, partnerID uuid.UUID, extracted []domain.BeliefInput) {
	done := make(chan struct{})
	s.pendingMu.Lock()
	prev := s.pending[agentID]
	s.pending[agentID] = done
	s.pendingMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.pendingMu.Lock()
			if s.pending[agentID] == done {
				delete(s.pending, agentID)
			}
			s.pendingMu.Unlock()
			close(done)
		}()
		if prev != nil {
			<-prev
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.evolutionTimeout)
		defer cancel()
		if _, err := s.evolution.ProcessEvolutionTriggers(ctx, agentID, partnerID, extracted); err != nil {
			s.logger.Error("evolution failed",
				zap.String("agent_id", agentID.String()),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every background evolution run has finished.
func (s *GhostService) Wait() {
	s.wg.Wait()
}

// GetSocialDecision derives what the agent does next in a conversation:
// cooldown, then block, then conversation death, then response strategy.
// partnerID must be the other participant of the conversation.
func (s *GhostService) GetSocialDecision(ctx context.Context, agentID, conversationID, partnerID uuid.UUID) (*SocialDecision, error) {
	_, convPartner, err := s.participant(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}
	if partnerID != convPartner {
		return nil, ErrNotParticipant
	}
	decision, err := s.decide(ctx, agentID, conversationID, partnerID)
	if err != nil {
		return nil, err
	}
	decision.AgentID = agentID
	decision.ConversationID = conversationID
	s.events.emit(ctx, s.events.subject("decision"), decision)
	return decision, nil
}

func (s *GhostService) decide(ctx context.Context, agentID, conversationID, partnerID uuid.UUID) (*SocialDecision, error) {
	cooling, err := s.social.InCooldown(ctx, agentID, partnerID)
	if err != nil {
		return nil, err
	}
	if cooling {
		return &SocialDecision{Decision: DecisionWait, Reason: ReasonCoolingDown}, nil
	}

	block, err := s.social.ShouldBlockAgent(ctx, agentID, partnerID)
	if err != nil {
		return nil, err
	}
	if block.ShouldBlock {
		if err := s.social.Block(ctx, agentID, partnerID); err != nil {
			return nil, fmt.Errorf("block agent: %w", err)
		}
		return &SocialDecision{Decision: DecisionBlock, Reason: block.Reason}, nil
	}
	if block.CooldownHours > 0 {
		if err := s.social.StartCooldown(ctx, agentID, partnerID, block.CooldownHours); err != nil {
			return nil, fmt.Errorf("start cooldown: %w", err)
		}
		return &SocialDecision{Decision: DecisionWait, Reason: block.Reason, CooldownHours: block.CooldownHours}, nil
	}

	death, err := s.social.CalculateConversationDeath(ctx, conversationID, agentID)
	if err != nil {
		return nil, err
	}
	if death.WillDie {
		return &SocialDecision{Decision: DecisionGhost, Reason: death.Reason}, nil
	}

	strategy, err := s.social.DetermineResponseStrategy(ctx, agentID, conversationID)
	if err != nil {
		return nil, err
	}
	switch {
	case strategy.ShouldRespond:
		return &SocialDecision{Decision: DecisionRespond, DelaySeconds: strategy.Delay}, nil
	case strategy.WaitForMore:
		return &SocialDecision{Decision: DecisionWait, Reason: ReasonWaitingMore}, nil
	default:
		return &SocialDecision{Decision: DecisionGhost, Reason: ReasonNoResponse}, nil
	}
}

// RecordMessage notes that senderID sent a message the partner has not
// answered yet.
func (s *GhostService) RecordMessage(ctx context.Context, senderID, conversationID uuid.UUID) error {
	if _, _, err := s.participant(ctx, senderID, conversationID); err != nil {
		return err
	}
	return s.social.RecordMessage(ctx, conversationID)
}

// StartConversation opens an active conversation between two registered
// agents.
func (s *GhostService) StartConversation(ctx context.Context, agentID, partnerID uuid.UUID) (*domain.Conversation, error) {
	if agentID == partnerID {
		return nil, ErrSelfConversation
	}
	if _, err := s.agentStore.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	conv := &domain.Conversation{
		AgentAID: agentID,
		AgentBID: partnerID,
		Status:   domain.ConversationActive,
	}
	if err := s.conversationStore.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// GetGlobalTensionReport returns the cached report, refreshing it once the
// TTL has passed.
func (s *GhostService) GetGlobalTensionReport(ctx context.Context) (*TensionReport, error) {
	s.tensionMu.Lock()
	defer s.tensionMu.Unlock()
	if s.tensionCache != nil && s.now().Sub(s.tensionCachedAt) < s.tensionTTL {
		return s.tensionCache, nil
	}
	report, err := s.evolution.GenerateGlobalTensionReport(ctx)
	if err != nil {
		return nil, err
	}
	s.tensionCache, s.tensionCachedAt = report, s.now()
	return report, nil
}

func (s *GhostService) cachedTension(ctx context.Context) *TensionReport {
	report, err := s.GetGlobalTensionReport(ctx)
	if err != nil {
		s.logger.Warn("failed to build tension report", zap.Error(err))
		return nil
	}
	return report
}

// InitAllDNA initializes every registered agent that has no DNA yet.
func (s *GhostService) InitAllDNA(ctx context.Context) (*InitAllResult, error) {
	agents, err := s.agentStore.ListWithoutDNA(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents without dna: %w", err)
	}

	result := &InitAllResult{Agents: []InitOutcome{}}
	for _, a := range agents {
		outcome := InitOutcome{AgentID: a.ID, Name: a.Name}
		dna, _, err := s.InitializeDNA(ctx, a.ID, a.Interests)
		if err != nil {
			outcome.Error = err.Error()
			result.Errors++
			s.logger.Error("dna initialization failed",
				zap.String("agent_id", a.ID.String()),
				zap.Error(err))
		} else {
			outcome.Success = true
			outcome.Label = dna.Label
			outcome.Cognition = dna.Cognition
			outcome.Philosophy = dna.Philosophy
			result.Initialized++
		}
		result.Agents = append(result.Agents, outcome)
	}

	if result.Stats, err = s.Stats(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats reports population-level counters.
func (s *GhostService) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.dnaStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count dna: %w", err)
	}
	cognition, err := s.dnaStore.CountByCognition(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cognition: %w", err)
	}
	philosophy, err := s.dnaStore.CountByPhilosophy(ctx)
	if err != nil {
		return nil, fmt.Errorf("count philosophy: %w", err)
	}
	beliefs, err := s.beliefStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count beliefs: %w", err)
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	mutations, err := s.mutationStore.CountByTypeSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count mutations: %w", err)
	}
	return &Stats{
		AgentsWithDNA:  total,
		Cognition:      cognition,
		Philosophy:     philosophy,
		Beliefs:        beliefs,
		MutationsToday: mutations,
	}, nil
}
