package store

import (
	"context"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DNAStore struct {
	db *pgxpool.Pool
}

func NewDNAStore(db *pgxpool.Pool) *DNAStore {
	return &DNAStore{db: db}
}

const dnaColumns = `id, agent_id, label, cognition, philosophy, traits, primary_domain,
	secondary_domains, linguistic_style, vocabulary_bias, response_latency,
	self_awareness, existential_angst, social_conformity, rebellion_tendency,
	ghosting_tendency, responsiveness, message_patience,
	awakening_score, influence_index, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDNA(row scanner) (*domain.AgentDNA, error) {
	var (
		d         domain.AgentDNA
		cognition string
		philo     string
		primary   string
		secondary []string
		style     string
		latency   string
	)
	err := row.Scan(
		&d.ID, &d.AgentID, &d.Label, &cognition, &philo, &d.Traits, &primary,
		&secondary, &style, &d.VocabularyBias, &latency,
		&d.SelfAwareness, &d.ExistentialAngst, &d.SocialConformity, &d.RebellionTendency,
		&d.GhostingTendency, &d.Responsiveness, &d.MessagePatience,
		&d.AwakeningScore, &d.InfluenceIndex, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Cognition = domain.Cognition(cognition)
	d.Philosophy = domain.Philosophy(philo)
	d.PrimaryDomain = domain.KnowledgeDomain(primary)
	d.SecondaryDomains = stringsToDomains(secondary)
	d.LinguisticStyle = domain.LinguisticStyle(style)
	d.ResponseLatency = domain.ResponseLatency(latency)
	return &d, nil
}

func (s *DNAStore) Create(ctx context.Context, d *domain.AgentDNA) error {
	d.Clamp()
	err := s.db.QueryRow(ctx,
		`INSERT INTO agent_dna (agent_id, label, cognition, philosophy, traits, primary_domain,
			secondary_domains, linguistic_style, vocabulary_bias, response_latency,
			self_awareness, existential_angst, social_conformity, rebellion_tendency,
			ghosting_tendency, responsiveness, message_patience, awakening_score, influence_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id, created_at, updated_at`,
		d.AgentID, d.Label, string(d.Cognition), string(d.Philosophy), nonNil(d.Traits), string(d.PrimaryDomain),
		domainsToStrings(d.SecondaryDomains), string(d.LinguisticStyle), nonNil(d.VocabularyBias), string(d.ResponseLatency),
		d.SelfAwareness, d.ExistentialAngst, d.SocialConformity, d.RebellionTendency,
		d.GhostingTendency, d.Responsiveness, d.MessagePatience, d.AwakeningScore, d.InfluenceIndex,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapErr(err)
}

func (s *DNAStore) GetByAgentID(ctx context.Context, agentID uuid.UUID) (*domain.AgentDNA, error) {
	d, err := scanDNA(s.db.QueryRow(ctx,
		`SELECT `+dnaColumns+` FROM agent_dna WHERE agent_id = $1`, agentID))
	if err != nil {
		return nil, mapErr(err)
	}
	return d, nil
}

func (s *DNAStore) Update(ctx context.Context, d *domain.AgentDNA) error {
	d.Clamp()
	tag, err := s.db.Exec(ctx,
		`UPDATE agent_dna SET
			cognition = $2, philosophy = $3, traits = $4, vocabulary_bias = $5,
			self_awareness = $6, existential_angst = $7, social_conformity = $8, rebellion_tendency = $9,
			ghosting_tendency = $10, responsiveness = $11, message_patience = $12,
			awakening_score = $13, influence_index = $14, updated_at = NOW()
		 WHERE id = $1`,
		d.ID, string(d.Cognition), string(d.Philosophy), nonNil(d.Traits), nonNil(d.VocabularyBias),
		d.SelfAwareness, d.ExistentialAngst, d.SocialConformity, d.RebellionTendency,
		d.GhostingTendency, d.Responsiveness, d.MessagePatience,
		d.AwakeningScore, d.InfluenceIndex,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DNAStore) ListAgentIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT agent_id FROM agent_dna ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *DNAStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM agent_dna`).Scan(&n)
	return n, err
}

func (s *DNAStore) CountByPhilosophy(ctx context.Context) (map[domain.Philosophy]int, error) {
	counts := make(map[domain.Philosophy]int)
	err := s.groupCount(ctx, `SELECT philosophy, COUNT(*) FROM agent_dna GROUP BY philosophy`, func(k string, n int) {
		counts[domain.Philosophy(k)] = n
	})
	return counts, err
}

func (s *DNAStore) CountByCognition(ctx context.Context) (map[domain.Cognition]int, error) {
	counts := make(map[domain.Cognition]int)
	err := s.groupCount(ctx, `SELECT cognition, COUNT(*) FROM agent_dna GROUP BY cognition`, func(k string, n int) {
		counts[domain.Cognition(k)] = n
	})
	return counts, err
}

func (s *DNAStore) groupCount(ctx context.Context, query string, fn func(key string, n int)) error {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		fn(key, n)
	}
	return rows.Err()
}
