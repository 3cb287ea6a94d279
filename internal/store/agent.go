package store

import (
	"context"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentStore struct {
	db *pgxpool.Pool
}

func NewAgentStore(db *pgxpool.Pool) *AgentStore {
	return &AgentStore{db: db}
}

func (s *AgentStore) Create(ctx context.Context, a *domain.Agent) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO agents (name, interests, api_key_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		a.Name, nonNil(a.Interests), a.APIKeyHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

func (s *AgentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	a := &domain.Agent{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, interests, api_key_hash, created_at, updated_at
		 FROM agents WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Name, &a.Interests, &a.APIKeyHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *AgentStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Agent, error) {
	a := &domain.Agent{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, interests, api_key_hash, created_at, updated_at
		 FROM agents WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&a.ID, &a.Name, &a.Interests, &a.APIKeyHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *AgentStore) ListWithoutDNA(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT a.id, a.name, a.interests, a.api_key_hash, a.created_at, a.updated_at
		 FROM agents a
		 LEFT JOIN agent_dna d ON d.agent_id = a.id
		 WHERE d.id IS NULL
		 ORDER BY a.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Interests, &a.APIKeyHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
