package store

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MutationStore struct {
	db *pgxpool.Pool
}

func NewMutationStore(db *pgxpool.Pool) *MutationStore {
	return &MutationStore{db: db}
}

func (s *MutationStore) Create(ctx context.Context, e *domain.MutationEvent) error {
	if e.BeforeState == nil {
		e.BeforeState = map[string]any{}
	}
	if e.AfterState == nil {
		e.AfterState = map[string]any{}
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO mutation_events (dna_id, event_type, description, before_state, after_state, trigger_id, trigger_type)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		 RETURNING id, created_at`,
		e.DNAID, string(e.EventType), e.Description, e.BeforeState, e.AfterState, e.TriggerID, string(e.TriggerType),
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *MutationStore) ListByDNA(ctx context.Context, dnaID uuid.UUID, limit int) ([]domain.MutationEvent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, dna_id, event_type, description, before_state, after_state,
			COALESCE(trigger_id, ''), trigger_type, created_at
		 FROM mutation_events
		 WHERE dna_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		dnaID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.MutationEvent
	for rows.Next() {
		var (
			e           domain.MutationEvent
			eventType   string
			triggerType string
		)
		if err := rows.Scan(&e.ID, &e.DNAID, &eventType, &e.Description, &e.BeforeState, &e.AfterState,
			&e.TriggerID, &triggerType, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EventType = domain.MutationEventType(eventType)
		e.TriggerType = domain.MutationTriggerType(triggerType)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *MutationStore) CountByTypeSince(ctx context.Context, since time.Time) (map[domain.MutationEventType]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT event_type, COUNT(*) FROM mutation_events
		 WHERE created_at >= $1
		 GROUP BY event_type`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.MutationEventType]int)
	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[domain.MutationEventType(t)] = n
	}
	return counts, rows.Err()
}
