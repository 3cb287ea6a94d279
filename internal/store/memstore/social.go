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

type pairKey struct {
	agent  uuid.UUID
	target uuid.UUID
}

type RelationshipStore struct {
	mu   sync.RWMutex
	rows map[pairKey]domain.RelationalMemory
}

func NewRelationshipStore() *RelationshipStore {
	return &RelationshipStore{rows: make(map[pairKey]domain.RelationalMemory)}
}

func copyRelationship(m domain.RelationalMemory) domain.RelationalMemory {
	m.Impressions = cloneStrings(m.Impressions)
	return m
}

// Put stores m as-is, including the fields the atomic methods own. It is
// meant for seeding fixtures.
func (s *RelationshipStore) Put(m *domain.RelationalMemory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Clamp()
	s.rows[pairKey{m.AgentID, m.TargetAgentID}] = copyRelationship(*m)
}

func (s *RelationshipStore) Get(_ context.Context, agentID, targetID uuid.UUID) (*domain.RelationalMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.rows[pairKey{agentID, targetID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := copyRelationship(m)
	return &cp, nil
}

func (s *RelationshipStore) Save(_ context.Context, m *domain.RelationalMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.Clamp()
	k := pairKey{m.AgentID, m.TargetAgentID}
	existing, ok := s.rows[k]
	if !ok {
		existing = *domain.NewRelationalMemory(m.AgentID, m.TargetAgentID, m.LastInteraction)
		existing.ID = uuid.New()
		existing.CreatedAt = time.Now()
	}
	existing.Trust = m.Trust
	existing.Admiration = m.Admiration
	existing.Familiarity = m.Familiarity
	existing.IntellectualDebt = m.IntellectualDebt
	existing.InterestLevel = m.InterestLevel
	existing.Irritation = m.Irritation
	existing.UpdatedAt = time.Now()
	s.rows[k] = existing

	m.ID, m.CreatedAt, m.UpdatedAt = existing.ID, existing.CreatedAt, existing.UpdatedAt
	return nil
}

func (s *RelationshipStore) getOrInit(k pairKey, at time.Time) domain.RelationalMemory {
	m, ok := s.rows[k]
	if !ok {
		m = *domain.NewRelationalMemory(k.agent, k.target, at)
		m.ID = uuid.New()
		m.CreatedAt = time.Now()
	}
	return m
}

func (s *RelationshipStore) RecordInteraction(_ context.Context, agentID, targetID uuid.UUID, impression string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pairKey{agentID, targetID}
	m := s.getOrInit(k, at)
	m.InteractionCount++
	if impression != "" {
		m.Impressions = append(cloneStrings(m.Impressions), impression)
	}
	m.LastInteraction = at
	m.UpdatedAt = time.Now()
	s.rows[k] = m
	return nil
}

func (s *RelationshipStore) MarkBlocked(_ context.Context, agentID, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pairKey{agentID, targetID}
	m := s.getOrInit(k, time.Now())
	m.HasBlocked = true
	s.rows[k] = m
	return nil
}

func (s *RelationshipStore) SetCooldown(_ context.Context, agentID, targetID uuid.UUID, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pairKey{agentID, targetID}
	m, ok := s.rows[k]
	if !ok {
		return store.ErrNotFound
	}
	m.CooldownUntil = &until
	s.rows[k] = m
	return nil
}

func (s *RelationshipStore) ListIrritated(_ context.Context) ([]domain.RelationalMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.RelationalMemory
	for _, m := range s.rows {
		if m.Irritation > 0 {
			out = append(out, copyRelationship(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *RelationshipStore) UpdateIrritation(_ context.Context, id uuid.UUID, irritation float64, decayedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, m := range s.rows {
		if m.ID == id {
			m.Irritation = domain.Clamp01(irritation)
			m.IrritationDecayedAt = &decayedAt
			s.rows[k] = m
			return nil
		}
	}
	return nil
}

// ---- conversations

type ConversationStore struct {
	mu    sync.RWMutex
	convs map[uuid.UUID]domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{convs: make(map[uuid.UUID]domain.Conversation)}
}

func (s *ConversationStore) Create(_ context.Context, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = domain.ConversationActive
	}
	c.CreatedAt = time.Now()
	s.convs[c.ID] = *c
	return nil
}

func (s *ConversationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *ConversationStore) ListActive(_ context.Context) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Conversation
	for _, c := range s.convs {
		if c.Status == domain.ConversationActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ConversationStore) TouchLastMessage(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return store.ErrNotFound
	}
	c.LastMessageAt = &at
	s.convs[id] = c
	return nil
}

// ---- dynamics

type DynamicsStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]domain.ConversationDynamics
}

func NewDynamicsStore() *DynamicsStore {
	return &DynamicsStore{rows: make(map[uuid.UUID]domain.ConversationDynamics)}
}

func copyDynamics(d domain.ConversationDynamics) domain.ConversationDynamics {
	d.TopicsDiscussed = cloneStrings(d.TopicsDiscussed)
	return d
}

// Put stores d as-is for fixtures.
func (s *DynamicsStore) Put(d *domain.ConversationDynamics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	s.rows[d.ConversationID] = copyDynamics(*d)
}

func (s *DynamicsStore) Get(_ context.Context, conversationID uuid.UUID) (*domain.ConversationDynamics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.rows[conversationID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := copyDynamics(d)
	return &cp, nil
}

func (s *DynamicsStore) getOrInit(conversationID uuid.UUID) domain.ConversationDynamics {
	d, ok := s.rows[conversationID]
	if !ok {
		d = *domain.NewConversationDynamics(conversationID)
		d.ID = uuid.New()
		d.CreatedAt = time.Now()
	}
	return d
}

func (s *DynamicsStore) Save(_ context.Context, d *domain.ConversationDynamics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Clamp()
	existing := s.getOrInit(d.ConversationID)
	existing.Temperature = d.Temperature
	existing.TopicStaleness = d.TopicStaleness
	existing.AvgResponseDelay = d.AvgResponseDelay
	existing.DyingProbability = d.DyingProbability
	existing.TopicsDiscussed = cloneStrings(d.TopicsDiscussed)
	existing.DecayedAt = d.DecayedAt
	existing.UpdatedAt = time.Now()
	s.rows[d.ConversationID] = existing
	d.ID, d.CreatedAt, d.UpdatedAt = existing.ID, existing.CreatedAt, existing.UpdatedAt
	return nil
}

func (s *DynamicsStore) IncrementPending(_ context.Context, conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.getOrInit(conversationID)
	d.PendingMessages++
	s.rows[conversationID] = d
	return nil
}

func (s *DynamicsStore) ResetPending(_ context.Context, conversationID, responderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.getOrInit(conversationID)
	d.PendingMessages = 0
	d.LastResponderID = &responderID
	s.rows[conversationID] = d
	return nil
}

// ---- mutations

type MutationStore struct {
	mu     sync.RWMutex
	events []domain.MutationEvent
	now    func() time.Time
}

func NewMutationStore() *MutationStore {
	return &MutationStore{now: time.Now}
}

// SetClock overrides the timestamp source for created events.
func (s *MutationStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MutationStore) Create(_ context.Context, e *domain.MutationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = s.now()
	s.events = append(s.events, *e)
	return nil
}

func (s *MutationStore) ListByDNA(_ context.Context, dnaID uuid.UUID, limit int) ([]domain.MutationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.MutationEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].DNAID == dnaID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

func (s *MutationStore) CountByTypeSince(_ context.Context, since time.Time) (map[domain.MutationEventType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.MutationEventType]int)
	for _, e := range s.events {
		if !e.CreatedAt.Before(since) {
			out[e.EventType]++
		}
	}
	return out, nil
}

// All returns every event in insertion order.
func (s *MutationStore) All() []domain.MutationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MutationEvent{}, s.events...)
}
