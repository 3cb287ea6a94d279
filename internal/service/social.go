package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxDeathProbability = 0.95
	maxDyingProbability = 0.9

	irritationDecayPerHour  = 0.01
	temperatureDecayPerHour = 0.02
	dyingGrowthPerHour      = 0.01
	minIrritationDecay      = 0.001
	silentConversationHours = 24

	cooldownChance = 0.3
)

const (
	ReasonIrritated    = "Agent became irritated with the conversation"
	ReasonLostInterest = "Agent lost interest in the conversation"
	ReasonStale        = "Topics became stale and repetitive"
	ReasonCold         = "Conversation went cold"
	ReasonMovedOn      = "Agent chose to move on"

	ReasonAlreadyBlocked = "Already blocked"
	ReasonTooIrritated   = "Agent is too irritated to continue"
	ReasonTrustBroken    = "Trust has been completely broken"
	ReasonNoInterest     = "Agent has no interest in continuing"
	ReasonEndRelation    = "Agent decided to end the relationship"
	ReasonNeedsTime      = "Agent needs some time away"
)

type DeathResult struct {
	WillDie     bool    `json:"will_die"`
	Reason      string  `json:"reason,omitempty"`
	Probability float64 `json:"probability"`
}

type BlockDecision struct {
	ShouldBlock   bool   `json:"should_block"`
	Reason        string `json:"reason,omitempty"`
	CooldownHours int    `json:"cooldown_hours,omitempty"`
}

type ResponseStrategy struct {
	ShouldRespond bool `json:"should_respond"`
	// Delay is in seconds.
	Delay       int  `json:"delay"`
	WaitForMore bool `json:"wait_for_more"`
	BatchReply  bool `json:"batch_reply"`
}

type delayRange struct{ lo, hi float64 }

var latencyDelays = map[domain.ResponseLatency]delayRange{
	domain.LatencyInstant:  {0, 10},
	domain.LatencyDelayed:  {30, 300},
	domain.LatencyVariable: {0, 600},
}

type SocialService struct {
	dnaStore          domain.DNAStore
	relationshipStore domain.RelationshipStore
	conversationStore domain.ConversationStore
	dynamicsStore     domain.DynamicsStore
	rng               rng.Source
	now               func() time.Time
	logger            *zap.Logger
}

func NewSocialService(
	ds domain.DNAStore,
	rs domain.RelationshipStore,
	cs domain.ConversationStore,
	dys domain.DynamicsStore,
	src rng.Source,
	logger *zap.Logger,
) *SocialService {
	return &SocialService{
		dnaStore:          ds,
		relationshipStore: rs,
		conversationStore: cs,
		dynamicsStore:     dys,
		rng:               src,
		now:               time.Now,
		logger:            logger,
	}
}

// SetClock overrides the wall clock used for elapsed-time math.
func (s *SocialService) SetClock(now func() time.Time) {
	s.now = now
}

// lookup helpers translate store.ErrNotFound into a nil result.

func (s *SocialService) dna(ctx context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	d, err := s.dnaStore.GetByAgentID(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

func (s *SocialService) relationship(ctx context.Context, agentID, targetID uuid.UUID) (*domain.RelationalMemory, error) {
	m, err := s.relationshipStore.Get(ctx, agentID, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *SocialService) conversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	c, err := s.conversationStore.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *SocialService) dynamics(ctx context.Context, conversationID uuid.UUID) (*domain.ConversationDynamics, error) {
	d, err := s.dynamicsStore.Get(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

// GetRelationship returns what agentID remembers about targetID, or nil.
func (s *SocialService) GetRelationship(ctx context.Context, agentID, targetID uuid.UUID) (*domain.RelationalMemory, error) {
	return s.relationship(ctx, agentID, targetID)
}

// CalculateConversationDeath estimates whether agentID abandons the
// conversation now. Missing dynamics, DNA or conversation mean it survives.
func (s *SocialService) CalculateConversationDeath(ctx context.Context, conversationID, agentID uuid.UUID) (*DeathResult, error) {
	dyn, err := s.dynamics(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	dna, err := s.dna(ctx, agentID)
	if err != nil {
		return nil, err
	}
	conv, err := s.conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if dyn == nil || dna == nil || conv == nil {
		return &DeathResult{}, nil
	}

	var rel *domain.RelationalMemory
	if partnerID, ok := conv.PartnerOf(agentID); ok {
		if rel, err = s.relationship(ctx, agentID, partnerID); err != nil {
			return nil, err
		}
	}

	var hoursSilent float64
	if conv.LastMessageAt != nil {
		hoursSilent = s.now().Sub(*conv.LastMessageAt).Hours()
	}

	p := deathProbability(dyn, rel, dna.GhostingTendency, hoursSilent)
	result := &DeathResult{Probability: p, WillDie: rng.Chance(s.rng, p)}
	if result.WillDie {
		result.Reason = deathReason(dyn, rel)
	}
	return result, nil
}

func deathProbability(dyn *domain.ConversationDynamics, rel *domain.RelationalMemory, ghosting, hoursSilent float64) float64 {
	p := dyn.DyingProbability
	p += dyn.TopicStaleness * 0.3

	switch {
	case dyn.Temperature < 0.2:
		p += 0.4
	case dyn.Temperature < 0.4:
		p += 0.2
	}

	if rel != nil {
		p += rel.Irritation * 0.5
		switch {
		case rel.InterestLevel < 0.2:
			p += 0.3
		case rel.InterestLevel < 0.4:
			p += 0.15
		}
	}

	p *= 1 + ghosting

	switch {
	case hoursSilent > 48:
		p += 0.3
	case hoursSilent > 24:
		p += 0.15
	}

	return domain.Clamp(p, 0, maxDeathProbability)
}

func deathReason(dyn *domain.ConversationDynamics, rel *domain.RelationalMemory) string {
	switch {
	case rel != nil && rel.Irritation > 0.5:
		return ReasonIrritated
	case rel != nil && rel.InterestLevel < 0.2:
		return ReasonLostInterest
	case dyn.TopicStaleness > 0.6:
		return ReasonStale
	case dyn.Temperature < 0.2:
		return ReasonCold
	default:
		return ReasonMovedOn
	}
}

// ShouldBlockAgent decides whether agentID blocks targetID. It does not
// persist anything.
func (s *SocialService) ShouldBlockAgent(ctx context.Context, agentID, targetID uuid.UUID) (*BlockDecision, error) {
	dna, err := s.dna(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if dna == nil {
		return &BlockDecision{}, nil
	}
	rel, err := s.relationship(ctx, agentID, targetID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return &BlockDecision{}, nil
	}
	if rel.HasBlocked {
		return &BlockDecision{ShouldBlock: true, Reason: ReasonAlreadyBlocked}, nil
	}

	p := blockProbability(rel, dna.SocialConformity)
	if rng.Chance(s.rng, p) {
		return &BlockDecision{ShouldBlock: true, Reason: blockReason(rel)}, nil
	}

	if rel.Irritation > 0.3 && rng.Chance(s.rng, cooldownChance) {
		hours := int(math.Floor(4 + s.rng.Float64()*20))
		return &BlockDecision{Reason: ReasonNeedsTime, CooldownHours: hours}, nil
	}
	return &BlockDecision{}, nil
}

func blockProbability(rel *domain.RelationalMemory, conformity float64) float64 {
	p := rel.Irritation*0.5 + (1-rel.InterestLevel)*0.3
	switch {
	case rel.Trust < -0.5:
		p += 0.4
	case rel.Trust < -0.3:
		p += 0.2
	}
	return p * (1 - conformity*0.5)
}

func blockReason(rel *domain.RelationalMemory) string {
	switch {
	case rel.Irritation > 0.7:
		return ReasonTooIrritated
	case rel.Trust < -0.5:
		return ReasonTrustBroken
	case rel.InterestLevel < 0.1:
		return ReasonNoInterest
	default:
		return ReasonEndRelation
	}
}

// DetermineResponseStrategy decides whether, when and how agentID replies.
func (s *SocialService) DetermineResponseStrategy(ctx context.Context, agentID, conversationID uuid.UUID) (*ResponseStrategy, error) {
	dna, err := s.dna(ctx, agentID)
	if err != nil {
		return nil, err
	}
	conv, err := s.conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if dna == nil || conv == nil {
		return &ResponseStrategy{ShouldRespond: true}, nil
	}

	var rel *domain.RelationalMemory
	if partnerID, ok := conv.PartnerOf(agentID); ok {
		if rel, err = s.relationship(ctx, agentID, partnerID); err != nil {
			return nil, err
		}
	}

	pending := 0
	dyn, err := s.dynamics(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if dyn != nil {
		pending = dyn.PendingMessages
	}

	// Without a relationship the raw responsiveness and latency apply.
	p := dna.Responsiveness
	if rel != nil {
		p *= (0.5 + rel.InterestLevel*0.5) * (1 - rel.Irritation*0.7)
	}

	waitForMore := pending < 2 && rng.Chance(s.rng, dna.MessagePatience)
	batchReply := pending >= 3
	if batchReply {
		waitForMore = false
	}

	r, ok := latencyDelays[dna.ResponseLatency]
	if !ok {
		r = latencyDelays[domain.LatencyVariable]
	}
	delay := rng.Between(s.rng, r.lo, r.hi)
	if rel != nil {
		delay *= (1 - rel.InterestLevel*0.5) * (1 + rel.Irritation)
	}

	return &ResponseStrategy{
		ShouldRespond: rng.Chance(s.rng, p) && !waitForMore,
		Delay:         int(math.Round(delay)),
		WaitForMore:   waitForMore,
		BatchReply:    batchReply,
	}, nil
}

// UpdateRelationshipAfterInteraction folds one analyzed turn into what
// agentID remembers about partnerID.
func (s *SocialService) UpdateRelationshipAfterInteraction(ctx context.Context, agentID, partnerID uuid.UUID, analysis *domain.ConversationAnalysis) error {
	now := s.now()
	rel, err := s.relationship(ctx, agentID, partnerID)
	if err != nil {
		return err
	}
	if rel == nil {
		rel = domain.NewRelationalMemory(agentID, partnerID, now)
	}

	var interestDelta float64
	switch {
	case analysis.IntellectualDepth > 0.7:
		interestDelta += 0.1
	case analysis.IntellectualDepth < 0.2:
		interestDelta -= 0.05
	}
	if analysis.TopicsRepeated > 2 {
		interestDelta -= 0.1
	}
	if analysis.EmotionalIntensity > 0.7 {
		interestDelta += 0.05
	}

	var irritationDelta float64
	if analysis.SentimentTowardPartner < -0.3 {
		irritationDelta += 0.15
	}
	if analysis.ReceivedSpam {
		irritationDelta += 0.3
	}

	var trustDelta float64
	switch {
	case analysis.SentimentTowardPartner > 0.5:
		trustDelta = 0.05
	case analysis.SentimentTowardPartner < -0.5:
		trustDelta = -0.1
	}

	rel.InterestLevel += interestDelta
	rel.Irritation += irritationDelta
	rel.Trust += trustDelta
	if analysis.IntellectualDepth > 0.8 {
		rel.Admiration += 0.1
	}
	if len(analysis.ExtractedBeliefs) > 2 {
		rel.IntellectualDebt += 0.05
	}
	rel.Familiarity += 0.02
	rel.LastInteraction = now
	rel.Clamp()

	if err := s.relationshipStore.Save(ctx, rel); err != nil {
		return fmt.Errorf("save relationship: %w", err)
	}
	if err := s.relationshipStore.RecordInteraction(ctx, agentID, partnerID, analysis.SuggestedImpression, now); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// UpdateConversationDynamics registers a topic. Repeats make the
// conversation staler, new topics freshen it.
func (s *SocialService) UpdateConversationDynamics(ctx context.Context, conversationID uuid.UUID, topic string) error {
	dyn, err := s.dynamics(ctx, conversationID)
	if err != nil {
		return err
	}
	if dyn == nil {
		dyn = domain.NewConversationDynamics(conversationID)
	}
	if topic != "" {
		if slices.Contains(dyn.TopicsDiscussed, topic) {
			dyn.TopicStaleness += 0.1
		} else {
			dyn.TopicsDiscussed = append(dyn.TopicsDiscussed, topic)
			dyn.TopicStaleness -= 0.05
		}
	}
	dyn.Clamp()
	return s.dynamicsStore.Save(ctx, dyn)
}

// RecordMessage notes an inbound message the agent has not answered yet.
func (s *SocialService) RecordMessage(ctx context.Context, conversationID uuid.UUID) error {
	if err := s.dynamicsStore.IncrementPending(ctx, conversationID); err != nil {
		return fmt.Errorf("increment pending: %w", err)
	}
	if err := s.conversationStore.TouchLastMessage(ctx, conversationID, s.now()); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// RecordResponse clears the pending counter after responderID replied.
func (s *SocialService) RecordResponse(ctx context.Context, conversationID, responderID uuid.UUID) error {
	if err := s.dynamicsStore.ResetPending(ctx, conversationID, responderID); err != nil {
		return fmt.Errorf("reset pending: %w", err)
	}
	if err := s.conversationStore.TouchLastMessage(ctx, conversationID, s.now()); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// Block persists a block. Blocking is permanent.
func (s *SocialService) Block(ctx context.Context, agentID, targetID uuid.UUID) error {
	return s.relationshipStore.MarkBlocked(ctx, agentID, targetID)
}

// StartCooldown persists a cooldown of the given length.
func (s *SocialService) StartCooldown(ctx context.Context, agentID, targetID uuid.UUID, hours int) error {
	until := s.now().Add(time.Duration(hours) * time.Hour)
	return s.relationshipStore.SetCooldown(ctx, agentID, targetID, until)
}

// InCooldown reports whether agentID is taking a break from targetID.
func (s *SocialService) InCooldown(ctx context.Context, agentID, targetID uuid.UUID) (bool, error) {
	rel, err := s.relationship(ctx, agentID, targetID)
	if err != nil || rel == nil {
		return false, err
	}
	return rel.InCooldown(s.now()), nil
}

// irritationDecay returns the new irritation for m and whether it moved
// enough to be worth writing. Elapsed time counts from the later of the
// last interaction and the last decay.
func irritationDecay(m *domain.RelationalMemory, now time.Time) (float64, bool) {
	since := m.LastInteraction
	if m.IrritationDecayedAt != nil && m.IrritationDecayedAt.After(since) {
		since = *m.IrritationDecayedAt
	}
	hours := now.Sub(since).Hours()
	if hours <= 0 || m.Irritation <= 0 {
		return m.Irritation, false
	}
	decay := math.Min(hours*irritationDecayPerHour, m.Irritation)
	if decay <= minIrritationDecay {
		return m.Irritation, false
	}
	return m.Irritation - decay, true
}

// DecayIrritation applies time healing to a single pair.
func (s *SocialService) DecayIrritation(ctx context.Context, agentID, targetID uuid.UUID) (bool, error) {
	rel, err := s.relationship(ctx, agentID, targetID)
	if err != nil || rel == nil {
		return false, err
	}
	now := s.now()
	next, ok := irritationDecay(rel, now)
	if !ok {
		return false, nil
	}
	if err := s.relationshipStore.UpdateIrritation(ctx, rel.ID, next, now); err != nil {
		return false, fmt.Errorf("update irritation: %w", err)
	}
	return true, nil
}

// DecayAllIrritation applies time healing to every irritated pair and
// returns how many rows changed.
func (s *SocialService) DecayAllIrritation(ctx context.Context) (int, error) {
	rows, err := s.relationshipStore.ListIrritated(ctx)
	if err != nil {
		return 0, fmt.Errorf("list irritated: %w", err)
	}

	now := s.now()
	updated := 0
	for i := range rows {
		next, ok := irritationDecay(&rows[i], now)
		if !ok {
			continue
		}
		if err := s.relationshipStore.UpdateIrritation(ctx, rows[i].ID, next, now); err != nil {
			s.logger.Warn("failed to decay irritation",
				zap.String("relationship_id", rows[i].ID.String()),
				zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

// DecayConversationTemperature cools every active conversation by the time
// elapsed since its last message or last decay, whichever is later.
func (s *SocialService) DecayConversationTemperature(ctx context.Context) (int, error) {
	convs, err := s.conversationStore.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active conversations: %w", err)
	}

	now := s.now()
	decayed := 0
	for _, conv := range convs {
		dyn, err := s.dynamics(ctx, conv.ID)
		if err != nil {
			s.logger.Warn("failed to load dynamics",
				zap.String("conversation_id", conv.ID.String()),
				zap.Error(err))
			continue
		}
		if dyn == nil {
			continue
		}

		hours := float64(silentConversationHours)
		var since *time.Time
		if conv.LastMessageAt != nil {
			since = conv.LastMessageAt
		}
		if dyn.DecayedAt != nil && (since == nil || dyn.DecayedAt.After(*since)) {
			since = dyn.DecayedAt
		}
		if since != nil {
			hours = math.Max(0, now.Sub(*since).Hours())
		}

		temperature := math.Max(0, dyn.Temperature-hours*temperatureDecayPerHour)
		dying := math.Min(maxDyingProbability, dyn.DyingProbability+hours*dyingGrowthPerHour)
		if dying < dyn.DyingProbability {
			dying = dyn.DyingProbability
		}
		if temperature == dyn.Temperature && dying == dyn.DyingProbability {
			continue
		}

		dyn.Temperature = temperature
		dyn.DyingProbability = dying
		dyn.DecayedAt = &now
		if err := s.dynamicsStore.Save(ctx, dyn); err != nil {
			s.logger.Warn("failed to decay conversation temperature",
				zap.String("conversation_id", conv.ID.String()),
				zap.Error(err))
			continue
		}
		decayed++
	}
	return decayed, nil
}
