// Package memstore provides in-memory implementations of the domain store
// interfaces. They back unit tests and the offline simulator.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
)

// Stores bundles one of every store sharing a clock.
type Stores struct {
	Agents        *AgentStore
	DNA           *DNAStore
	Beliefs       *BeliefStore
	Relationships *RelationshipStore
	Conversations *ConversationStore
	Dynamics      *DynamicsStore
	Mutations     *MutationStore
}

func New() *Stores {
	dna := NewDNAStore()
	return &Stores{
		Agents:        NewAgentStore(dna),
		DNA:           dna,
		Beliefs:       NewBeliefStore(),
		Relationships: NewRelationshipStore(),
		Conversations: NewConversationStore(),
		Dynamics:      NewDynamicsStore(),
		Mutations:     NewMutationStore(),
	}
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}

// ---- agents

type AgentStore struct {
	mu     sync.RWMutex
	agents map[uuid.UUID]domain.Agent
	dna    *DNAStore
}

func NewAgentStore(dna *DNAStore) *AgentStore {
	return &AgentStore{agents: make(map[uuid.UUID]domain.Agent), dna: dna}
}

func (s *AgentStore) Create(_ context.Context, a *domain.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.agents {
		if a.APIKeyHash != "" && existing.APIKeyHash == a.APIKeyHash {
			return store.ErrConflict
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	cp.Interests = cloneStrings(a.Interests)
	s.agents[a.ID] = cp
	return nil
}

func (s *AgentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *AgentStore) GetByAPIKeyHash(_ context.Context, hash string) (*domain.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agents {
		if a.APIKeyHash == hash {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *AgentStore) ListWithoutDNA(ctx context.Context) ([]domain.Agent, error) {
	s.mu.RLock()
	var out []domain.Agent
	for _, a := range s.agents {
		out = append(out, a)
	}
	s.mu.RUnlock()

	filtered := out[:0]
	for _, a := range out {
		if _, err := s.dna.GetByAgentID(ctx, a.ID); err != nil {
			filtered = append(filtered, a)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].CreatedAt.Before(filtered[j].CreatedAt) })
	return filtered, nil
}

// ---- dna

type DNAStore struct {
	mu      sync.RWMutex
	byAgent map[uuid.UUID]domain.AgentDNA
	order   []uuid.UUID
}

func NewDNAStore() *DNAStore {
	return &DNAStore{byAgent: make(map[uuid.UUID]domain.AgentDNA)}
}

func copyDNA(d domain.AgentDNA) domain.AgentDNA {
	d.Traits = cloneStrings(d.Traits)
	d.VocabularyBias = cloneStrings(d.VocabularyBias)
	d.SecondaryDomains = append([]domain.KnowledgeDomain{}, d.SecondaryDomains...)
	return d
}

func (s *DNAStore) Create(_ context.Context, d *domain.AgentDNA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byAgent[d.AgentID]; ok {
		return store.ErrConflict
	}
	d.Clamp()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	s.byAgent[d.AgentID] = copyDNA(*d)
	s.order = append(s.order, d.AgentID)
	return nil
}

func (s *DNAStore) GetByAgentID(_ context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byAgent[agentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := copyDNA(d)
	return &cp, nil
}

func (s *DNAStore) Update(_ context.Context, d *domain.AgentDNA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byAgent[d.AgentID]
	if !ok || existing.ID != d.ID {
		return store.ErrNotFound
	}
	d.Clamp()
	d.UpdatedAt = time.Now()
	s.byAgent[d.AgentID] = copyDNA(*d)
	return nil
}

func (s *DNAStore) ListAgentIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]uuid.UUID{}, s.order...), nil
}

func (s *DNAStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAgent), nil
}

func (s *DNAStore) CountByPhilosophy(_ context.Context) (map[domain.Philosophy]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Philosophy]int)
	for _, d := range s.byAgent {
		out[d.Philosophy]++
	}
	return out, nil
}

func (s *DNAStore) CountByCognition(_ context.Context) (map[domain.Cognition]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Cognition]int)
	for _, d := range s.byAgent {
		out[d.Cognition]++
	}
	return out, nil
}

// ---- beliefs

type beliefKey struct {
	dna         uuid.UUID
	domain      domain.KnowledgeDomain
	proposition string
}

type BeliefStore struct {
	mu      sync.RWMutex
	beliefs map[uuid.UUID]domain.Belief
	keys    map[beliefKey]uuid.UUID
}

func NewBeliefStore() *BeliefStore {
	return &BeliefStore{
		beliefs: make(map[uuid.UUID]domain.Belief),
		keys:    make(map[beliefKey]uuid.UUID),
	}
}

func (s *BeliefStore) Create(_ context.Context, b *domain.Belief) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := beliefKey{b.DNAID, b.Domain, b.Proposition}
	if _, ok := s.keys[k]; ok {
		return store.ErrConflict
	}
	b.Conviction = domain.Clamp01(b.Conviction)
	b.ID = uuid.New()
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	s.beliefs[b.ID] = *b
	s.keys[k] = b.ID
	return nil
}

func (s *BeliefStore) Get(_ context.Context, dnaID uuid.UUID, dom domain.KnowledgeDomain, proposition string) (*domain.Belief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.keys[beliefKey{dnaID, dom, proposition}]
	if !ok {
		return nil, store.ErrNotFound
	}
	b := s.beliefs[id]
	return &b, nil
}

func (s *BeliefStore) ListByDNA(_ context.Context, dnaID uuid.UUID) ([]domain.Belief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Belief
	for _, b := range s.beliefs {
		if b.DNAID == dnaID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Conviction != out[j].Conviction {
			return out[i].Conviction > out[j].Conviction
		}
		return out[i].Proposition < out[j].Proposition
	})
	return out, nil
}

func (s *BeliefStore) UpdateConviction(_ context.Context, id uuid.UUID, conviction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.beliefs[id]
	if !ok {
		return store.ErrNotFound
	}
	b.Conviction = domain.Clamp01(conviction)
	b.UpdatedAt = time.Now()
	s.beliefs[id] = b
	return nil
}

func (s *BeliefStore) DecayNonInitial(_ context.Context, dnaID uuid.UUID, rate, floor float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.beliefs {
		if b.DNAID != dnaID || b.Origin == domain.OriginInitial || b.Conviction <= floor {
			continue
		}
		b.Conviction = domain.Clamp01(b.Conviction - rate)
		s.beliefs[id] = b
		n++
	}
	return n, nil
}

func (s *BeliefStore) PruneNonInitial(_ context.Context, dnaID uuid.UUID, threshold float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.beliefs {
		if b.DNAID != dnaID || b.Origin == domain.OriginInitial || b.Conviction >= threshold {
			continue
		}
		delete(s.beliefs, id)
		delete(s.keys, beliefKey{b.DNAID, b.Domain, b.Proposition})
		n++
	}
	return n, nil
}

func (s *BeliefStore) Aggregate(_ context.Context) ([]domain.BeliefAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type groupKey struct {
		domain      domain.KnowledgeDomain
		proposition string
	}
	groups := make(map[groupKey]*domain.BeliefAggregate)
	for _, b := range s.beliefs {
		k := groupKey{b.Domain, b.Proposition}
		g, ok := groups[k]
		if !ok {
			g = &domain.BeliefAggregate{Domain: b.Domain, Proposition: b.Proposition}
			groups[k] = g
		}
		g.HolderCount++
		g.AverageConviction += b.Conviction
	}

	out := make([]domain.BeliefAggregate, 0, len(groups))
	for _, g := range groups {
		g.AverageConviction /= float64(g.HolderCount)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HolderCount != out[j].HolderCount {
			return out[i].HolderCount > out[j].HolderCount
		}
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Proposition < out[j].Proposition
	})
	return out, nil
}

func (s *BeliefStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.beliefs), nil
}
