package store

import (
	"context"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BeliefStore struct {
	db *pgxpool.Pool
}

func NewBeliefStore(db *pgxpool.Pool) *BeliefStore {
	return &BeliefStore{db: db}
}

const beliefColumns = `id, dna_id, domain, proposition, conviction, origin, created_at, updated_at`

func scanBelief(row scanner) (*domain.Belief, error) {
	var (
		b      domain.Belief
		dom    string
		origin string
	)
	if err := row.Scan(&b.ID, &b.DNAID, &dom, &b.Proposition, &b.Conviction, &origin, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Domain = domain.KnowledgeDomain(dom)
	b.Origin = domain.BeliefOrigin(origin)
	return &b, nil
}

func (s *BeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	b.Conviction = domain.Clamp01(b.Conviction)
	err := s.db.QueryRow(ctx,
		`INSERT INTO agent_beliefs (dna_id, domain, proposition, conviction, origin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		b.DNAID, string(b.Domain), b.Proposition, b.Conviction, string(b.Origin),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return mapErr(err)
}

func (s *BeliefStore) Get(ctx context.Context, dnaID uuid.UUID, dom domain.KnowledgeDomain, proposition string) (*domain.Belief, error) {
	b, err := scanBelief(s.db.QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM agent_beliefs
		 WHERE dna_id = $1 AND domain = $2 AND proposition = $3`,
		dnaID, string(dom), proposition))
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (s *BeliefStore) ListByDNA(ctx context.Context, dnaID uuid.UUID) ([]domain.Belief, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+beliefColumns+` FROM agent_beliefs
		 WHERE dna_id = $1
		 ORDER BY conviction DESC, created_at`,
		dnaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beliefs []domain.Belief
	for rows.Next() {
		b, err := scanBelief(rows)
		if err != nil {
			return nil, err
		}
		beliefs = append(beliefs, *b)
	}
	return beliefs, rows.Err()
}

func (s *BeliefStore) UpdateConviction(ctx context.Context, id uuid.UUID, conviction float64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE agent_beliefs SET conviction = $2, updated_at = NOW() WHERE id = $1`,
		id, domain.Clamp01(conviction))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BeliefStore) DecayNonInitial(ctx context.Context, dnaID uuid.UUID, rate, floor float64) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE agent_beliefs
		 SET conviction = GREATEST(0, conviction - $2), updated_at = NOW()
		 WHERE dna_id = $1 AND origin <> 'INITIAL' AND conviction > $3`,
		dnaID, rate, floor)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *BeliefStore) PruneNonInitial(ctx context.Context, dnaID uuid.UUID, threshold float64) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM agent_beliefs
		 WHERE dna_id = $1 AND origin <> 'INITIAL' AND conviction < $2`,
		dnaID, threshold)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *BeliefStore) Aggregate(ctx context.Context) ([]domain.BeliefAggregate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT domain, proposition, COUNT(*), AVG(conviction)
		 FROM agent_beliefs
		 GROUP BY domain, proposition
		 ORDER BY COUNT(*) DESC, domain, proposition`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BeliefAggregate
	for rows.Next() {
		var (
			a   domain.BeliefAggregate
			dom string
		)
		if err := rows.Scan(&dom, &a.Proposition, &a.HolderCount, &a.AverageConviction); err != nil {
			return nil, err
		}
		a.Domain = domain.KnowledgeDomain(dom)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *BeliefStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM agent_beliefs`).Scan(&n)
	return n, err
}
