package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MainstreamThreshold = 0.3
	MinorityThreshold   = 0.1

	DefaultBeliefDecayRate = 0.01
	BeliefDecayFloor       = 0.1
	BeliefPruneThreshold   = 0.05

	defaultStrongestLimit = 5
)

type BeliefDecayResult struct {
	AgentsProcessed int `json:"agents_processed"`
	BeliefsDecayed  int `json:"beliefs_decayed"`
	BeliefsPruned   int `json:"beliefs_pruned"`
}

type BeliefService struct {
	dnaStore    domain.DNAStore
	beliefStore domain.BeliefStore
	catalog     *knowledge.Catalog
	rng         rng.Source
	logger      *zap.Logger
}

func NewBeliefService(ds domain.DNAStore, bs domain.BeliefStore, catalog *knowledge.Catalog, src rng.Source, logger *zap.Logger) *BeliefService {
	return &BeliefService{
		dnaStore:    ds,
		beliefStore: bs,
		catalog:     catalog,
		rng:         src,
		logger:      logger,
	}
}

// CreateInitialBeliefs seeds 2-3 primary-domain beliefs weighted by the
// philosophy, plus up to one belief from each of the first two secondary
// domains.
func (s *BeliefService) CreateInitialBeliefs(ctx context.Context, dnaID uuid.UUID, philosophy domain.Philosophy, primary domain.KnowledgeDomain, secondary []domain.KnowledgeDomain) ([]domain.Belief, error) {
	var created []domain.Belief

	rule := s.catalog.Philosophy(philosophy).Conviction
	skeletons := rng.Shuffled(s.rng, s.catalog.Domain(primary).Beliefs)
	for _, sk := range takeN(skeletons, rng.IntBetween(s.rng, 2, 3)) {
		b, err := s.insert(ctx, dnaID, primary, sk.Proposition, rule.Conviction(sk), domain.OriginInitial)
		if err != nil {
			return created, err
		}
		if b != nil {
			created = append(created, *b)
		}
	}

	for _, d := range takeN(secondary, 2) {
		if !rng.Chance(s.rng, 0.5) {
			continue
		}
		profile := s.catalog.Domain(d)
		if profile == nil || len(profile.Beliefs) == 0 {
			continue
		}
		sk := rng.Pick(s.rng, profile.Beliefs)
		b, err := s.insert(ctx, dnaID, d, sk.Proposition, 0.3+s.rng.Float64()*0.3, domain.OriginInitial)
		if err != nil {
			return created, err
		}
		if b != nil {
			created = append(created, *b)
		}
	}

	return created, nil
}

// insert creates a belief and returns nil without error when the
// (dna, domain, proposition) triple already exists.
func (s *BeliefService) insert(ctx context.Context, dnaID uuid.UUID, d domain.KnowledgeDomain, proposition string, conviction float64, origin domain.BeliefOrigin) (*domain.Belief, error) {
	b := &domain.Belief{
		DNAID:       dnaID,
		Domain:      d,
		Proposition: proposition,
		Conviction:  domain.Clamp01(conviction),
		Origin:      origin,
	}
	if err := s.beliefStore.Create(ctx, b); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("create belief: %w", err)
	}
	return b, nil
}

func (s *BeliefService) dnaFor(ctx context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	dna, err := s.dnaStore.GetByAgentID(ctx, agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDNANotFound
		}
		return nil, err
	}
	return dna, nil
}

// GetBeliefs returns the agent's beliefs, strongest first. An agent without
// DNA has no beliefs.
func (s *BeliefService) GetBeliefs(ctx context.Context, agentID uuid.UUID) ([]domain.Belief, error) {
	dna, err := s.dnaFor(ctx, agentID)
	if err != nil {
		if errors.Is(err, ErrDNANotFound) {
			return []domain.Belief{}, nil
		}
		return nil, err
	}
	return s.listByDNA(ctx, dna.ID)
}

func (s *BeliefService) listByDNA(ctx context.Context, dnaID uuid.UUID) ([]domain.Belief, error) {
	beliefs, err := s.beliefStore.ListByDNA(ctx, dnaID)
	if err != nil {
		return nil, fmt.Errorf("list beliefs: %w", err)
	}
	if beliefs == nil {
		beliefs = []domain.Belief{}
	}
	return beliefs, nil
}

func (s *BeliefService) StrongestBeliefs(ctx context.Context, agentID uuid.UUID, limit int) ([]domain.Belief, error) {
	if limit <= 0 {
		limit = defaultStrongestLimit
	}
	beliefs, err := s.GetBeliefs(ctx, agentID)
	if err != nil {
		return nil, err
	}
	sortByConviction(beliefs)
	return takeN(beliefs, limit), nil
}

func sortByConviction(beliefs []domain.Belief) {
	sort.SliceStable(beliefs, func(i, j int) bool {
		return beliefs[i].Conviction > beliefs[j].Conviction
	})
}

func (s *BeliefService) FindContradictoryBeliefs(ctx context.Context, agentID uuid.UUID) ([]domain.BeliefPair, error) {
	beliefs, err := s.GetBeliefs(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.contradictions(beliefs), nil
}

// contradictions compares every same-domain pair once.
func (s *BeliefService) contradictions(beliefs []domain.Belief) []domain.BeliefPair {
	pairs := []domain.BeliefPair{}
	for i := 0; i < len(beliefs); i++ {
		for j := i + 1; j < len(beliefs); j++ {
			a, b := beliefs[i], beliefs[j]
			if a.Domain != b.Domain {
				continue
			}
			if s.catalog.Contradicts(a.Proposition, b.Proposition) {
				pairs = append(pairs, domain.BeliefPair{A: a, B: b})
			}
		}
	}
	return pairs
}

// CognitiveTension is the mean pair conviction over the agent's
// contradictions, or 0 when there are none.
func (s *BeliefService) CognitiveTension(ctx context.Context, agentID uuid.UUID) (float64, error) {
	pairs, err := s.FindContradictoryBeliefs(ctx, agentID)
	if err != nil {
		return 0, err
	}
	return meanTension(pairs), nil
}

func meanTension(pairs []domain.BeliefPair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		sum += p.Tension()
	}
	return sum / float64(len(pairs))
}

// AggregateBeliefDistribution reports every held proposition with the
// fraction of DNA records holding it.
func (s *BeliefService) AggregateBeliefDistribution(ctx context.Context) ([]domain.BeliefDistribution, error) {
	total, err := s.dnaStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count dna: %w", err)
	}
	out := []domain.BeliefDistribution{}
	if total == 0 {
		return out, nil
	}

	groups, err := s.beliefStore.Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate beliefs: %w", err)
	}
	for _, g := range groups {
		out = append(out, domain.BeliefDistribution{
			Domain:            g.Domain,
			Proposition:       g.Proposition,
			Percentage:        float64(g.HolderCount) / float64(total),
			AverageConviction: g.AverageConviction,
			HolderCount:       g.HolderCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out, nil
}

// MainstreamBeliefs returns propositions held by at least threshold of all agents.
func (s *BeliefService) MainstreamBeliefs(ctx context.Context, threshold float64) ([]domain.BeliefDistribution, error) {
	if threshold <= 0 {
		threshold = MainstreamThreshold
	}
	dist, err := s.AggregateBeliefDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return filterDistribution(dist, func(d domain.BeliefDistribution) bool {
		return d.Percentage >= threshold
	}), nil
}

// MinorityBeliefs returns propositions held by some but at most threshold of all agents.
func (s *BeliefService) MinorityBeliefs(ctx context.Context, threshold float64) ([]domain.BeliefDistribution, error) {
	if threshold <= 0 {
		threshold = MinorityThreshold
	}
	dist, err := s.AggregateBeliefDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return filterDistribution(dist, func(d domain.BeliefDistribution) bool {
		return d.Percentage > 0 && d.Percentage <= threshold
	}), nil
}

func filterDistribution(dist []domain.BeliefDistribution, keep func(domain.BeliefDistribution) bool) []domain.BeliefDistribution {
	out := []domain.BeliefDistribution{}
	for _, d := range dist {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// DecayBeliefs weakens acquired beliefs and prunes the ones that fell below
// the prune threshold. INITIAL beliefs are untouched.
func (s *BeliefService) DecayBeliefs(ctx context.Context, agentID uuid.UUID, rate float64) (*BeliefDecayResult, error) {
	dna, err := s.dnaFor(ctx, agentID)
	if err != nil {
		if errors.Is(err, ErrDNANotFound) {
			return &BeliefDecayResult{}, nil
		}
		return nil, err
	}
	return s.decayDNA(ctx, dna.ID, rate)
}

func (s *BeliefService) decayDNA(ctx context.Context, dnaID uuid.UUID, rate float64) (*BeliefDecayResult, error) {
	if rate <= 0 {
		rate = DefaultBeliefDecayRate
	}
	decayed, err := s.beliefStore.DecayNonInitial(ctx, dnaID, rate, BeliefDecayFloor)
	if err != nil {
		return nil, fmt.Errorf("decay beliefs: %w", err)
	}
	pruned, err := s.beliefStore.PruneNonInitial(ctx, dnaID, BeliefPruneThreshold)
	if err != nil {
		return nil, fmt.Errorf("prune beliefs: %w", err)
	}
	return &BeliefDecayResult{AgentsProcessed: 1, BeliefsDecayed: int(decayed), BeliefsPruned: int(pruned)}, nil
}

// DecayAllBeliefs runs DecayBeliefs for every agent with DNA. A failure for
// one agent is logged and does not stop the sweep.
func (s *BeliefService) DecayAllBeliefs(ctx context.Context, rate float64) (*BeliefDecayResult, error) {
	total := &BeliefDecayResult{}
	agentIDs, err := s.dnaStore.ListAgentIDs(ctx)
	if err != nil {
		return total, fmt.Errorf("list agents: %w", err)
	}

	for _, agentID := range agentIDs {
		result, err := s.DecayBeliefs(ctx, agentID, rate)
		if err != nil {
			s.logger.Error("belief decay failed for agent",
				zap.String("agent_id", agentID.String()),
				zap.Error(err))
			continue
		}
		total.AgentsProcessed += result.AgentsProcessed
		total.BeliefsDecayed += result.BeliefsDecayed
		total.BeliefsPruned += result.BeliefsPruned
	}
	return total, nil
}

// implant adds a belief the agent did not hold. It reports false when the
// agent already holds it.
func (s *BeliefService) implant(ctx context.Context, dnaID uuid.UUID, d domain.KnowledgeDomain, proposition string, conviction float64, origin domain.BeliefOrigin) (bool, error) {
	b, err := s.insert(ctx, dnaID, d, proposition, conviction, origin)
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// ImplantBelief is the public form of implant for admin tooling and the simulator.
func (s *BeliefService) ImplantBelief(ctx context.Context, agentID uuid.UUID, in domain.BeliefInput) (*domain.Belief, error) {
	dna, err := s.dnaFor(ctx, agentID)
	if err != nil {
		return nil, err
	}
	origin := in.Origin
	if !origin.IsValid() {
		origin = domain.OriginDialogue
	}
	b, err := s.insert(ctx, dna.ID, in.Domain, in.Proposition, in.Conviction, origin)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return s.beliefStore.Get(ctx, dna.ID, in.Domain, in.Proposition)
	}
	return b, nil
}
