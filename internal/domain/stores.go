package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AgentStore interface {
	Create(ctx context.Context, a *Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Agent, error)
	ListWithoutDNA(ctx context.Context) ([]Agent, error)
}

type DNAStore interface {
	Create(ctx context.Context, d *AgentDNA) error
	GetByAgentID(ctx context.Context, agentID uuid.UUID) (*AgentDNA, error)
	// Update persists the mutable fields: philosophy, cognition, weights,
	// awakening score, influence index, traits and vocabulary.
	Update(ctx context.Context, d *AgentDNA) error
	ListAgentIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int, error)
	CountByPhilosophy(ctx context.Context) (map[Philosophy]int, error)
	CountByCognition(ctx context.Context) (map[Cognition]int, error)
}

type BeliefStore interface {
	// Create returns ErrConflict when (dna, domain, proposition) already exists.
	Create(ctx context.Context, b *Belief) error
	Get(ctx context.Context, dnaID uuid.UUID, domain KnowledgeDomain, proposition string) (*Belief, error)
	ListByDNA(ctx context.Context, dnaID uuid.UUID) ([]Belief, error)
	UpdateConviction(ctx context.Context, id uuid.UUID, conviction float64) error
	// DecayNonInitial lowers every non-INITIAL belief above floor by rate.
	DecayNonInitial(ctx context.Context, dnaID uuid.UUID, rate, floor float64) (int64, error)
	// PruneNonInitial deletes non-INITIAL beliefs below threshold.
	PruneNonInitial(ctx context.Context, dnaID uuid.UUID, threshold float64) (int64, error)
	Aggregate(ctx context.Context) ([]BeliefAggregate, error)
	Count(ctx context.Context) (int, error)
}

type RelationshipStore interface {
	Get(ctx context.Context, agentID, targetID uuid.UUID) (*RelationalMemory, error)
	// Save upserts the bounded scalars only. HasBlocked, InteractionCount and
	// Impressions are owned by the atomic methods below.
	Save(ctx context.Context, m *RelationalMemory) error
	RecordInteraction(ctx context.Context, agentID, targetID uuid.UUID, impression string, at time.Time) error
	MarkBlocked(ctx context.Context, agentID, targetID uuid.UUID) error
	SetCooldown(ctx context.Context, agentID, targetID uuid.UUID, until time.Time) error
	ListIrritated(ctx context.Context) ([]RelationalMemory, error)
	UpdateIrritation(ctx context.Context, id uuid.UUID, irritation float64, decayedAt time.Time) error
}

type ConversationStore interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListActive(ctx context.Context) ([]Conversation, error)
	TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error
}

type DynamicsStore interface {
	Get(ctx context.Context, conversationID uuid.UUID) (*ConversationDynamics, error)
	// Save upserts the scalar fields and topics. PendingMessages is owned by
	// IncrementPending and ResetPending.
	Save(ctx context.Context, d *ConversationDynamics) error
	IncrementPending(ctx context.Context, conversationID uuid.UUID) error
	ResetPending(ctx context.Context, conversationID, responderID uuid.UUID) error
}

type MutationStore interface {
	Create(ctx context.Context, e *MutationEvent) error
	ListByDNA(ctx context.Context, dnaID uuid.UUID, limit int) ([]MutationEvent, error)
	CountByTypeSince(ctx context.Context, since time.Time) (map[MutationEventType]int, error)
}

// TextGenerator produces chat text from a system and user prompt.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ConversationAnalyzer turns a generated turn into structured signals.
type ConversationAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*ConversationAnalysis, error)
}

// EventPublisher fans out engine events to other services. Implementations
// must not block for long; failures are logged by the caller and ignored.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}
