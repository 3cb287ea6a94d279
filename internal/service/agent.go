package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
)

type AgentService struct {
	store domain.AgentStore
}

func NewAgentService(s domain.AgentStore) *AgentService {
	return &AgentService{store: s}
}

var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrAgentConflict = errors.New("agent with this api key already exists")
)

func (s *AgentService) Create(ctx context.Context, a *domain.Agent) error {
	a.Interests = normalizeInterests(a.Interests)
	err := s.store.Create(ctx, a)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAgentConflict
		}
		return err
	}
	return nil
}

func (s *AgentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return a, nil
}

func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}
