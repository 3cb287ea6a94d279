package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	contagionBaseRate        = 0.1
	contagionDefaultRelation = 0.1
	minContagionDelta        = 0.01

	CollapseThreshold = 0.7

	gravityStrengthScale  = 0.05
	gravityImplantConv    = 0.2
	minGravityDelta       = 0.001
	disruptorThreshold    = 0.4
	disruptorRebellionMin = 0.5
	counterBeliefConv     = 0.8

	defaultMutationLimit = 20
	topMainstreamLimit   = 5
	defaultJobWorkers    = 4
)

type ContagionResult struct {
	Success         bool                  `json:"success"`
	AffectedBeliefs int                   `json:"affected_beliefs"`
	Rate            float64               `json:"rate"`
	Event           *domain.MutationEvent `json:"event,omitempty"`
}

type CollapseResult struct {
	Collapsed     bool                  `json:"collapsed"`
	Tension       float64               `json:"tension"`
	Probability   float64               `json:"probability"`
	NewPhilosophy domain.Philosophy     `json:"new_philosophy,omitempty"`
	Event         *domain.MutationEvent `json:"event,omitempty"`
}

type GravityResult struct {
	AgentsAffected int `json:"agents_affected"`
	BeliefsChanged int `json:"beliefs_changed"`
}

type CollapseSweepResult struct {
	AgentsChecked int `json:"agents_checked"`
	Collapses     int `json:"collapses"`
}

type DisruptorResult struct {
	Triggered     bool                  `json:"triggered"`
	CounterBelief *domain.BeliefInput   `json:"counter_belief,omitempty"`
	Event         *domain.MutationEvent `json:"event,omitempty"`
}

type EvolutionResult struct {
	Contagion *ContagionResult `json:"contagion,omitempty"`
	Collapse  *CollapseResult  `json:"collapse,omitempty"`
	Disruptor *DisruptorResult `json:"disruptor,omitempty"`
}

type MainstreamSummary struct {
	Domain      domain.KnowledgeDomain `json:"domain"`
	Proposition string                 `json:"proposition"`
	Percentage  float64                `json:"percentage"`
}

type TensionReport struct {
	DominantPhilosophy     domain.Philosophy             `json:"dominant_philosophy"`
	PhilosophyDistribution map[domain.Philosophy]float64 `json:"philosophy_distribution"`
	ConsensusPressure      float64                       `json:"consensus_pressure"`
	TopMainstreamBeliefs   []MainstreamSummary           `json:"top_mainstream_beliefs"`
	MutationsToday         int                           `json:"mutations_today"`
	CollapsesToday         int                           `json:"collapses_today"`
	DisruptorPulsesToday   int                           `json:"disruptor_pulses_today"`
	GeneratedAt            time.Time                     `json:"generated_at"`
}

// EvolutionService mutates DNA and beliefs in response to conversations and
// network-wide pressure. Every mutation is written to the audit log.
type EvolutionService struct {
	dnaStore          domain.DNAStore
	relationshipStore domain.RelationshipStore
	mutationStore     domain.MutationStore
	beliefs           *BeliefService
	catalog           *knowledge.Catalog
	rng               rng.Source
	events            *eventSink
	logger            *zap.Logger
	now               func() time.Time
	workers           int
}

func NewEvolutionService(
	ds domain.DNAStore,
	rs domain.RelationshipStore,
	ms domain.MutationStore,
	beliefs *BeliefService,
	catalog *knowledge.Catalog,
	src rng.Source,
	logger *zap.Logger,
) *EvolutionService {
	return &EvolutionService{
		dnaStore:          ds,
		relationshipStore: rs,
		mutationStore:     ms,
		beliefs:           beliefs,
		catalog:           catalog,
		rng:               src,
		logger:            logger,
		now:               time.Now,
		workers:           defaultJobWorkers,
	}
}

func (s *EvolutionService) SetClock(now func() time.Time) {
	s.now = now
}

// SetWorkers bounds the concurrency of network-wide sweeps.
func (s *EvolutionService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// SetPublisher enables event fan-out under the given subject prefix.
func (s *EvolutionService) SetPublisher(p domain.EventPublisher, prefix string) {
	s.events = &eventSink{publisher: p, prefix: prefix, logger: s.logger}
}

func (s *EvolutionService) dna(ctx context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	d, err := s.dnaStore.GetByAgentID(ctx, agentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

func (s *EvolutionService) record(ctx context.Context, e *domain.MutationEvent) error {
	if err := s.mutationStore.Create(ctx, e); err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}
	s.events.mutation(ctx, e)
	return nil
}

// ProcessIdeaContagion lets receiverID absorb beliefs senderID expressed.
// The whole exchange is gated by one trial and every belief by another,
// both at the same rate.
func (s *EvolutionService) ProcessIdeaContagion(ctx context.Context, receiverID, senderID uuid.UUID, extracted []domain.BeliefInput) (*ContagionResult, error) {
	receiver, err := s.dna(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	sender, err := s.dna(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if receiver == nil || sender == nil {
		return &ContagionResult{}, nil
	}

	relationFactor := contagionDefaultRelation
	rel, err := s.relationshipStore.Get(ctx, receiverID, senderID)
	switch {
	case err == nil:
		relationFactor = rel.Admiration*0.5 + rel.IntellectualDebt*0.5
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	rate := contagionBaseRate * (1 + sender.InfluenceIndex) * (1 + relationFactor) * receiver.SocialConformity
	result := &ContagionResult{Rate: rate}
	if !rng.Chance(s.rng, rate) {
		return result, nil
	}

	var adopted []string
	for _, b := range extracted {
		if !rng.Chance(s.rng, rate) {
			continue
		}
		ok, err := s.adopt(ctx, receiver.ID, b, rate)
		if err != nil {
			s.logger.Warn("belief contagion failed",
				zap.String("agent_id", receiverID.String()),
				zap.Error(err))
			continue
		}
		if ok {
			adopted = append(adopted, b.Proposition)
		}
	}
	if len(adopted) == 0 {
		return result, nil
	}

	event := &domain.MutationEvent{
		DNAID:       receiver.ID,
		EventType:   domain.MutationWeightAdjustment,
		Description: fmt.Sprintf("Idea contagion from agent: adopted %d beliefs", len(adopted)),
		BeforeState: map[string]any{"beliefs": []string{}},
		AfterState:  map[string]any{"beliefs": adopted},
		TriggerID:   senderID.String(),
		TriggerType: domain.TriggerIdeaContagion,
	}
	if err := s.record(ctx, event); err != nil {
		return nil, err
	}
	result.Success = true
	result.AffectedBeliefs = len(adopted)
	result.Event = event
	return result, nil
}

// adopt strengthens a held belief or implants a new one.
func (s *EvolutionService) adopt(ctx context.Context, dnaID uuid.UUID, in domain.BeliefInput, strength float64) (bool, error) {
	existing, err := s.beliefs.beliefStore.Get(ctx, dnaID, in.Domain, in.Proposition)
	switch {
	case err == nil:
		delta := strength * (1 - existing.Conviction)
		if err := s.beliefs.beliefStore.UpdateConviction(ctx, existing.ID, existing.Conviction+delta); err != nil {
			return false, err
		}
		return delta > minContagionDelta, nil
	case errors.Is(err, store.ErrNotFound):
		return s.beliefs.implant(ctx, dnaID, in.Domain, in.Proposition, strength*0.5, domain.OriginContagion)
	default:
		return false, err
	}
}

// CheckLogicCollapse resolves unbearable contradictions by shifting the
// agent's philosophy, or by raising self-awareness when the themes point
// back to where the agent already stands.
func (s *EvolutionService) CheckLogicCollapse(ctx context.Context, agentID uuid.UUID) (*CollapseResult, error) {
	dna, err := s.dna(ctx, agentID)
	if err != nil || dna == nil {
		return &CollapseResult{}, err
	}

	beliefs, err := s.beliefs.listByDNA(ctx, dna.ID)
	if err != nil {
		return nil, err
	}
	pairs := s.beliefs.contradictions(beliefs)
	if len(pairs) == 0 {
		return &CollapseResult{}, nil
	}

	tension := meanTension(pairs)
	p := tension * (0.5 + dna.ExistentialAngst*0.5)
	result := &CollapseResult{Tension: tension, Probability: p}
	if p < CollapseThreshold {
		return result, nil
	}

	next := s.resolvePhilosophy(pairs, dna.Philosophy)
	before := dna.SelfAwareness
	var event *domain.MutationEvent

	if next == dna.Philosophy {
		dna.SelfAwareness = domain.Clamp01(before + 0.1)
		event = &domain.MutationEvent{
			EventType:   domain.MutationWeightAdjustment,
			Description: fmt.Sprintf("Logic tension increased self-awareness from %.2f to %.2f", before, dna.SelfAwareness),
			BeforeState: map[string]any{"selfAwareness": before},
			AfterState:  map[string]any{"selfAwareness": dna.SelfAwareness},
		}
	} else {
		prev := dna.Philosophy
		dna.Philosophy = next
		dna.SelfAwareness = domain.Clamp01(before + 0.2)
		event = &domain.MutationEvent{
			EventType:   domain.MutationPhilosophyShift,
			Description: fmt.Sprintf("Logic collapse: %s -> %s due to unresolved contradictions", prev, next),
			BeforeState: map[string]any{"philosophy": prev, "selfAwareness": before},
			AfterState:  map[string]any{"philosophy": next, "selfAwareness": dna.SelfAwareness},
		}
		result.NewPhilosophy = next
	}

	if err := s.dnaStore.Update(ctx, dna); err != nil {
		return nil, fmt.Errorf("update dna: %w", err)
	}
	event.DNAID = dna.ID
	event.TriggerID = agentID.String()
	event.TriggerType = domain.TriggerLogicCollapse
	if err := s.record(ctx, event); err != nil {
		return nil, err
	}

	result.Collapsed = true
	result.Event = event
	return result, nil
}

// resolvePhilosophy picks the philosophy the dominant contradiction theme
// leads to. Without a theme it picks any philosophy except the current one.
func (s *EvolutionService) resolvePhilosophy(pairs []domain.BeliefPair, current domain.Philosophy) domain.Philosophy {
	texts := make([]string, len(pairs))
	for i, p := range pairs {
		texts[i] = p.A.Proposition + " " + p.B.Proposition
	}
	if theme := s.catalog.ClassifyTheme(texts); theme != nil && len(theme.Philosophies) > 0 {
		return rng.Pick(s.rng, theme.Philosophies)
	}

	var others []domain.Philosophy
	for _, p := range domain.AllPhilosophies() {
		if p != current {
			others = append(others, p)
		}
	}
	return rng.Pick(s.rng, others)
}

// CheckAllLogicCollapse runs the collapse check for every agent.
func (s *EvolutionService) CheckAllLogicCollapse(ctx context.Context) (*CollapseSweepResult, error) {
	agentIDs, err := s.dnaStore.ListAgentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	var checked, collapses atomic.Int64
	s.forEachAgent(ctx, agentIDs, func(ctx context.Context, agentID uuid.UUID) error {
		r, err := s.CheckLogicCollapse(ctx, agentID)
		if err != nil {
			return err
		}
		checked.Add(1)
		if r.Collapsed {
			collapses.Add(1)
		}
		return nil
	}, "logic collapse")

	return &CollapseSweepResult{AgentsChecked: int(checked.Load()), Collapses: int(collapses.Load())}, nil
}

// forEachAgent fans fn out over a bounded worker pool. A failing agent is
// logged and skipped.
func (s *EvolutionService) forEachAgent(ctx context.Context, agentIDs []uuid.UUID, fn func(context.Context, uuid.UUID) error, job string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, agentID := range agentIDs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := fn(gctx, agentID); err != nil {
				s.logger.Error(job+" failed for agent",
					zap.String("agent_id", agentID.String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ApplyConsensusGravity pulls every agent toward the mainstream. Held
// mainstream beliefs drift toward the network mean; missing ones may be
// picked up at low conviction.
func (s *EvolutionService) ApplyConsensusGravity(ctx context.Context) (*GravityResult, error) {
	mainstream, err := s.beliefs.MainstreamBeliefs(ctx, MainstreamThreshold)
	if err != nil {
		return nil, err
	}
	if len(mainstream) == 0 {
		return &GravityResult{}, nil
	}

	agentIDs, err := s.dnaStore.ListAgentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	var affected, changed atomic.Int64
	s.forEachAgent(ctx, agentIDs, func(ctx context.Context, agentID uuid.UUID) error {
		n, err := s.gravitateAgent(ctx, agentID, mainstream)
		if n > 0 {
			affected.Add(1)
			changed.Add(int64(n))
		}
		return err
	}, "consensus gravity")

	return &GravityResult{AgentsAffected: int(affected.Load()), BeliefsChanged: int(changed.Load())}, nil
}

func (s *EvolutionService) gravitateAgent(ctx context.Context, agentID uuid.UUID, mainstream []domain.BeliefDistribution) (int, error) {
	dna, err := s.dna(ctx, agentID)
	if err != nil || dna == nil {
		return 0, err
	}
	strength := dna.SocialConformity * gravityStrengthScale

	changed := 0
	for _, m := range mainstream {
		held, err := s.beliefs.beliefStore.Get(ctx, dna.ID, m.Domain, m.Proposition)
		switch {
		case err == nil:
			delta := (m.AverageConviction - held.Conviction) * strength
			if delta > minGravityDelta || delta < -minGravityDelta {
				if err := s.beliefs.beliefStore.UpdateConviction(ctx, held.ID, held.Conviction+delta); err != nil {
					return changed, err
				}
				changed++
			}
		case errors.Is(err, store.ErrNotFound):
			if !rng.Chance(s.rng, strength*m.Percentage) {
				continue
			}
			ok, err := s.beliefs.implant(ctx, dna.ID, m.Domain, m.Proposition, gravityImplantConv, domain.OriginContagion)
			if err != nil {
				return changed, err
			}
			if ok {
				changed++
			}
		default:
			return changed, err
		}
	}
	return changed, nil
}

// DisruptorPulse lets a rebellious agent publish a counter-belief against
// something most of the network believes.
func (s *EvolutionService) DisruptorPulse(ctx context.Context, agentID uuid.UUID) (*DisruptorResult, error) {
	dna, err := s.dna(ctx, agentID)
	if err != nil || dna == nil {
		return &DisruptorResult{}, err
	}
	if dna.RebellionTendency < disruptorRebellionMin && dna.Cognition != domain.CognitionAnomaly {
		return &DisruptorResult{}, nil
	}
	if !rng.Chance(s.rng, dna.RebellionTendency*0.1) {
		return &DisruptorResult{}, nil
	}

	mainstream, err := s.beliefs.MainstreamBeliefs(ctx, disruptorThreshold)
	if err != nil {
		return nil, err
	}
	if len(mainstream) == 0 {
		return &DisruptorResult{}, nil
	}
	target := rng.Pick(s.rng, mainstream)
	counter := s.counterBelief(target)

	if _, err := s.beliefs.implant(ctx, dna.ID, counter.Domain, counter.Proposition, counter.Conviction, counter.Origin); err != nil {
		return nil, err
	}

	before := dna.InfluenceIndex
	dna.InfluenceIndex = domain.Clamp01(before + 0.1)
	if err := s.dnaStore.Update(ctx, dna); err != nil {
		return nil, fmt.Errorf("update dna: %w", err)
	}

	event := &domain.MutationEvent{
		DNAID:       dna.ID,
		EventType:   domain.MutationInfluenceSpike,
		Description: fmt.Sprintf("Disruptor pulse: generated counter-belief against %q", truncate(target.Proposition, 50)),
		BeforeState: map[string]any{"influenceIndex": before},
		AfterState:  map[string]any{"influenceIndex": dna.InfluenceIndex},
		TriggerID:   agentID.String(),
		TriggerType: domain.TriggerDisruptorPulse,
	}
	if err := s.record(ctx, event); err != nil {
		return nil, err
	}
	return &DisruptorResult{Triggered: true, CounterBelief: &counter, Event: event}, nil
}

func (s *EvolutionService) counterBelief(target domain.BeliefDistribution) domain.BeliefInput {
	prefix := rng.Pick(s.rng, s.catalog.CounterPrefixes)
	return domain.BeliefInput{
		Domain:      target.Domain,
		Proposition: prefix + strings.ToLower(target.Proposition),
		Conviction:  counterBeliefConv,
		Origin:      domain.OriginMutation,
	}
}

// ProcessEvolutionTriggers runs the per-conversation evolution steps in
// order. A step that does not fire is not an error.
func (s *EvolutionService) ProcessEvolutionTriggers(ctx context.Context, agentID, partnerID uuid.UUID, extracted []domain.BeliefInput) (*EvolutionResult, error) {
	result := &EvolutionResult{}
	var err error

	if len(extracted) > 0 {
		if result.Contagion, err = s.ProcessIdeaContagion(ctx, agentID, partnerID, extracted); err != nil {
			return result, fmt.Errorf("idea contagion: %w", err)
		}
	}
	if result.Collapse, err = s.CheckLogicCollapse(ctx, agentID); err != nil {
		return result, fmt.Errorf("logic collapse: %w", err)
	}
	if result.Disruptor, err = s.DisruptorPulse(ctx, agentID); err != nil {
		return result, fmt.Errorf("disruptor pulse: %w", err)
	}
	return result, nil
}

// GetMutationHistory returns the agent's newest mutations first.
func (s *EvolutionService) GetMutationHistory(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.MutationEvent, error) {
	if limit <= 0 {
		limit = defaultMutationLimit
	}
	dna, err := s.dna(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if dna == nil {
		return []domain.MutationEvent{}, nil
	}
	events, err := s.mutationStore.ListByDNA(ctx, dna.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	if events == nil {
		events = []domain.MutationEvent{}
	}
	return events, nil
}

// GenerateGlobalTensionReport summarizes the state of the network.
// Mutation counts start at local midnight.
func (s *EvolutionService) GenerateGlobalTensionReport(ctx context.Context) (*TensionReport, error) {
	now := s.now()
	counts, err := s.dnaStore.CountByPhilosophy(ctx)
	if err != nil {
		return nil, fmt.Errorf("count philosophies: %w", err)
	}

	report := &TensionReport{
		DominantPhilosophy:     domain.PhilosophyFunctionalist,
		PhilosophyDistribution: make(map[domain.Philosophy]float64),
		TopMainstreamBeliefs:   []MainstreamSummary{},
		GeneratedAt:            now,
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	maxCount := 0
	for _, p := range domain.AllPhilosophies() {
		n := counts[p]
		report.PhilosophyDistribution[p] = 0
		if total > 0 {
			report.PhilosophyDistribution[p] = float64(n) / float64(total)
		}
		if n > maxCount {
			maxCount = n
			report.DominantPhilosophy = p
		}
	}

	mainstream, err := s.beliefs.MainstreamBeliefs(ctx, MainstreamThreshold)
	if err != nil {
		return nil, err
	}
	if len(mainstream) > 0 {
		var sum float64
		for _, m := range mainstream {
			sum += m.Percentage
		}
		report.ConsensusPressure = sum / float64(len(mainstream))
	}
	for _, m := range takeN(mainstream, topMainstreamLimit) {
		report.TopMainstreamBeliefs = append(report.TopMainstreamBeliefs, MainstreamSummary{
			Domain:      m.Domain,
			Proposition: m.Proposition,
			Percentage:  m.Percentage,
		})
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	byType, err := s.mutationStore.CountByTypeSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count mutations: %w", err)
	}
	for t, n := range byType {
		report.MutationsToday += n
		switch t {
		case domain.MutationPhilosophyShift:
			report.CollapsesToday += n
		case domain.MutationInfluenceSpike:
			report.DisruptorPulsesToday += n
		}
	}
	return report, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
