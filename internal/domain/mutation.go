package domain

import (
	"time"

	"github.com/google/uuid"
)

type MutationEventType string

const (
	MutationPhilosophyShift  MutationEventType = "PHILOSOPHY_SHIFT"
	MutationCognitionChange  MutationEventType = "COGNITION_CHANGE"
	MutationWeightAdjustment MutationEventType = "WEIGHT_ADJUSTMENT"
	MutationVocabularyDrift  MutationEventType = "VOCABULARY_DRIFT"
	MutationTraitAcquired    MutationEventType = "TRAIT_ACQUIRED"
	MutationInfluenceSpike   MutationEventType = "INFLUENCE_SPIKE"
)

type MutationTriggerType string

const (
	TriggerConversation     MutationTriggerType = "conversation"
	TriggerIdeaContagion    MutationTriggerType = "idea_contagion"
	TriggerLogicCollapse    MutationTriggerType = "logic_collapse"
	TriggerConsensusGravity MutationTriggerType = "consensus_gravity"
	TriggerDisruptorPulse   MutationTriggerType = "disruptor_pulse"
)

// MutationEvent is an immutable audit record of a DNA change.
type MutationEvent struct {
	ID          uuid.UUID           `json:"id"`
	DNAID       uuid.UUID           `json:"dna_id"`
	EventType   MutationEventType   `json:"event_type"`
	Description string              `json:"description"`
	BeforeState map[string]any      `json:"before_state"`
	AfterState  map[string]any      `json:"after_state"`
	TriggerID   string              `json:"trigger_id,omitempty"`
	TriggerType MutationTriggerType `json:"trigger_type"`
	CreatedAt   time.Time           `json:"created_at"`
}
