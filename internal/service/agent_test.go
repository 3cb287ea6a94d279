package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
)

// mockAgentStore implements domain.AgentStore for testing.
type mockAgentStore struct {
	agents map[uuid.UUID]*domain.Agent
	err    error
}

func newMockAgentStore() *mockAgentStore {
	return &mockAgentStore{agents: make(map[uuid.UUID]*domain.Agent)}
}

func (m *mockAgentStore) Create(ctx context.Context, a *domain.Agent) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.agents {
		if existing.APIKeyHash == a.APIKeyHash {
			return store.ErrConflict
		}
	}
	a.ID = uuid.New()
	m.agents[a.ID] = a
	return nil
}

func (m *mockAgentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (m *mockAgentStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Agent, error) {
	for _, a := range m.agents {
		if a.APIKeyHash == hash {
			return a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockAgentStore) ListWithoutDNA(ctx context.Context) ([]domain.Agent, error) {
	out := make([]domain.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, *a)
	}
	return out, nil
}

func TestAgentService_Create(t *testing.T) {
	s := NewAgentService(newMockAgentStore())
	ctx := context.Background()

	agent := &domain.Agent{
		Name:       "Test Bot",
		Interests:  []string{" coding ", "AI", "ai", ""},
		APIKeyHash: "hash-1",
	}

	if err := s.Create(ctx, agent); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if agent.ID == uuid.Nil {
		t.Fatal("expected agent ID to be set")
	}
	if len(agent.Interests) != 2 || agent.Interests[0] != "coding" || agent.Interests[1] != "AI" {
		t.Fatalf("expected interests [coding AI], got %v", agent.Interests)
	}
}

func TestAgentService_CreateDuplicate(t *testing.T) {
	s := NewAgentService(newMockAgentStore())
	ctx := context.Background()

	agent := &domain.Agent{Name: "Test Bot", APIKeyHash: "hash-1"}
	if err := s.Create(ctx, agent); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dup := &domain.Agent{Name: "Duplicate Bot", APIKeyHash: "hash-1"}
	err := s.Create(ctx, dup)
	if err != ErrAgentConflict {
		t.Fatalf("expected ErrAgentConflict, got %v", err)
	}
}

func TestAgentService_CreateStoreError(t *testing.T) {
	mockStore := newMockAgentStore()
	mockStore.err = errors.New("connection reset")
	s := NewAgentService(mockStore)

	err := s.Create(context.Background(), &domain.Agent{Name: "Test Bot"})
	if err == nil || errors.Is(err, ErrAgentConflict) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}

func TestAgentService_GetByID(t *testing.T) {
	mockStore := newMockAgentStore()
	s := NewAgentService(mockStore)
	ctx := context.Background()

	agent := &domain.Agent{Name: "Test Bot", APIKeyHash: "hash-1"}
	_ = s.Create(ctx, agent)

	found, err := s.GetByID(ctx, agent.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found.Name != "Test Bot" {
		t.Fatalf("expected name 'Test Bot', got %s", found.Name)
	}
}

func TestAgentService_GetByID_NotFound(t *testing.T) {
	s := NewAgentService(newMockAgentStore())

	_, err := s.GetByID(context.Background(), uuid.New())
	if err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}
