package store

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationStore struct {
	db *pgxpool.Pool
}

func NewConversationStore(db *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{db: db}
}

func scanConversation(row scanner) (*domain.Conversation, error) {
	var (
		c      domain.Conversation
		status string
	)
	if err := row.Scan(&c.ID, &c.AgentAID, &c.AgentBID, &status, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.ConversationStatus(status)
	return &c, nil
}

func (s *ConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	if c.Status == "" {
		c.Status = domain.ConversationActive
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO conversations (agent_a_id, agent_b_id, status, last_message_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		c.AgentAID, c.AgentBID, string(c.Status), c.LastMessageAt,
	).Scan(&c.ID, &c.CreatedAt)
}

func (s *ConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	c, err := scanConversation(s.db.QueryRow(ctx,
		`SELECT id, agent_a_id, agent_b_id, status, last_message_at, created_at
		 FROM conversations WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (s *ConversationStore) ListActive(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, agent_a_id, agent_b_id, status, last_message_at, created_at
		 FROM conversations WHERE status = 'ACTIVE'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *ConversationStore) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE conversations SET last_message_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
