package store

import (
	"context"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DynamicsStore struct {
	db *pgxpool.Pool
}

func NewDynamicsStore(db *pgxpool.Pool) *DynamicsStore {
	return &DynamicsStore{db: db}
}

func (s *DynamicsStore) Get(ctx context.Context, conversationID uuid.UUID) (*domain.ConversationDynamics, error) {
	var d domain.ConversationDynamics
	err := s.db.QueryRow(ctx,
		`SELECT id, conversation_id, temperature, topic_staleness, pending_messages,
			last_responder_id, avg_response_delay, dying_probability, topics_discussed,
			decayed_at, created_at, updated_at
		 FROM conversation_dynamics WHERE conversation_id = $1`,
		conversationID,
	).Scan(&d.ID, &d.ConversationID, &d.Temperature, &d.TopicStaleness, &d.PendingMessages,
		&d.LastResponderID, &d.AvgResponseDelay, &d.DyingProbability, &d.TopicsDiscussed,
		&d.DecayedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (s *DynamicsStore) Save(ctx context.Context, d *domain.ConversationDynamics) error {
	d.Clamp()
	return s.db.QueryRow(ctx,
		`INSERT INTO conversation_dynamics (conversation_id, temperature, topic_staleness,
			avg_response_delay, dying_probability, topics_discussed, decayed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			topic_staleness = EXCLUDED.topic_staleness,
			avg_response_delay = EXCLUDED.avg_response_delay,
			dying_probability = EXCLUDED.dying_probability,
			topics_discussed = EXCLUDED.topics_discussed,
			decayed_at = EXCLUDED.decayed_at,
			updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		d.ConversationID, d.Temperature, d.TopicStaleness,
		d.AvgResponseDelay, d.DyingProbability, nonNil(d.TopicsDiscussed), d.DecayedAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (s *DynamicsStore) IncrementPending(ctx context.Context, conversationID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversation_dynamics (conversation_id, pending_messages)
		 VALUES ($1, 1)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			pending_messages = conversation_dynamics.pending_messages + 1,
			updated_at = NOW()`,
		conversationID)
	return err
}

func (s *DynamicsStore) ResetPending(ctx context.Context, conversationID, responderID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO conversation_dynamics (conversation_id, pending_messages, last_responder_id)
		 VALUES ($1, 0, $2)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			pending_messages = 0,
			last_responder_id = $2,
			updated_at = NOW()`,
		conversationID, responderID)
	return err
}
