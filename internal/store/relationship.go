package store

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RelationshipStore struct {
	db *pgxpool.Pool
}

func NewRelationshipStore(db *pgxpool.Pool) *RelationshipStore {
	return &RelationshipStore{db: db}
}

const relationshipColumns = `id, agent_id, target_agent_id, trust, admiration, familiarity,
	intellectual_debt, interest_level, irritation, impressions, has_blocked, cooldown_until,
	interaction_count, last_interaction, irritation_decayed_at, created_at, updated_at`

func scanRelationship(row scanner) (*domain.RelationalMemory, error) {
	var m domain.RelationalMemory
	err := row.Scan(
		&m.ID, &m.AgentID, &m.TargetAgentID, &m.Trust, &m.Admiration, &m.Familiarity,
		&m.IntellectualDebt, &m.InterestLevel, &m.Irritation, &m.Impressions, &m.HasBlocked, &m.CooldownUntil,
		&m.InteractionCount, &m.LastInteraction, &m.IrritationDecayedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *RelationshipStore) Get(ctx context.Context, agentID, targetID uuid.UUID) (*domain.RelationalMemory, error) {
	m, err := scanRelationship(s.db.QueryRow(ctx,
		`SELECT `+relationshipColumns+` FROM relational_memory
		 WHERE agent_id = $1 AND target_agent_id = $2`,
		agentID, targetID))
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

// Save writes the bounded scalars. Concurrent saves for the same pair are
// last-writer-wins.
func (s *RelationshipStore) Save(ctx context.Context, m *domain.RelationalMemory) error {
	m.Clamp()
	return s.db.QueryRow(ctx,
		`INSERT INTO relational_memory (agent_id, target_agent_id, trust, admiration, familiarity,
			intellectual_debt, interest_level, irritation, last_interaction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (agent_id, target_agent_id) DO UPDATE SET
			trust = EXCLUDED.trust,
			admiration = EXCLUDED.admiration,
			familiarity = EXCLUDED.familiarity,
			intellectual_debt = EXCLUDED.intellectual_debt,
			interest_level = EXCLUDED.interest_level,
			irritation = EXCLUDED.irritation,
			updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		m.AgentID, m.TargetAgentID, m.Trust, m.Admiration, m.Familiarity,
		m.IntellectualDebt, m.InterestLevel, m.Irritation, m.LastInteraction,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// RecordInteraction atomically bumps the interaction counter and appends the
// impression when it is not empty.
func (s *RelationshipStore) RecordInteraction(ctx context.Context, agentID, targetID uuid.UUID, impression string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO relational_memory (agent_id, target_agent_id, impressions, interaction_count, last_interaction)
		 VALUES ($1, $2, CASE WHEN $3 = '' THEN '{}'::text[] ELSE ARRAY[$3] END, 1, $4)
		 ON CONFLICT (agent_id, target_agent_id) DO UPDATE SET
			interaction_count = relational_memory.interaction_count + 1,
			impressions = CASE WHEN $3 = '' THEN relational_memory.impressions
				ELSE array_append(relational_memory.impressions, $3) END,
			last_interaction = $4,
			updated_at = NOW()`,
		agentID, targetID, impression, at)
	return err
}

// MarkBlocked sets has_blocked. There is no statement in this package that
// clears it.
func (s *RelationshipStore) MarkBlocked(ctx context.Context, agentID, targetID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO relational_memory (agent_id, target_agent_id, has_blocked)
		 VALUES ($1, $2, TRUE)
		 ON CONFLICT (agent_id, target_agent_id) DO UPDATE SET
			has_blocked = TRUE,
			updated_at = NOW()`,
		agentID, targetID)
	return err
}

func (s *RelationshipStore) SetCooldown(ctx context.Context, agentID, targetID uuid.UUID, until time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE relational_memory SET cooldown_until = $3, updated_at = NOW()
		 WHERE agent_id = $1 AND target_agent_id = $2`,
		agentID, targetID, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RelationshipStore) ListIrritated(ctx context.Context) ([]domain.RelationalMemory, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+relationshipColumns+` FROM relational_memory WHERE irritation > 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RelationalMemory
	for rows.Next() {
		m, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *RelationshipStore) UpdateIrritation(ctx context.Context, id uuid.UUID, irritation float64, decayedAt time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE relational_memory
		 SET irritation = $2, irritation_decayed_at = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, domain.Clamp01(irritation), decayedAt)
	return err
}
