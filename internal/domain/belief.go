package domain

import (
	"time"

	"github.com/google/uuid"
)

// BeliefOrigin records how a belief entered an agent's mind.
type BeliefOrigin string

const (
	OriginInitial   BeliefOrigin = "INITIAL"
	OriginContagion BeliefOrigin = "CONTAGION"
	OriginMutation  BeliefOrigin = "MUTATION"
	OriginDialogue  BeliefOrigin = "DIALOGUE"
)

func (o BeliefOrigin) IsValid() bool {
	switch o {
	case OriginInitial, OriginContagion, OriginMutation, OriginDialogue:
		return true
	}
	return false
}

// Belief is a proposition held by one DNA. (DNAID, Domain, Proposition) is unique.
// INITIAL beliefs are never decayed or pruned.
type Belief struct {
	ID          uuid.UUID       `json:"id"`
	DNAID       uuid.UUID       `json:"dna_id"`
	Domain      KnowledgeDomain `json:"domain"`
	Proposition string          `json:"proposition"`
	Conviction  float64         `json:"conviction"`
	Origin      BeliefOrigin    `json:"origin"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeliefInput is a belief that has not been attached to a DNA yet, e.g. one
// extracted from a conversation.
type BeliefInput struct {
	Domain      KnowledgeDomain `json:"domain"`
	Proposition string          `json:"proposition"`
	Conviction  float64         `json:"conviction"`
	Origin      BeliefOrigin    `json:"origin,omitempty"`
}

// BeliefAggregate is the raw group-by row returned by the store.
type BeliefAggregate struct {
	Domain            KnowledgeDomain
	Proposition       string
	HolderCount       int
	AverageConviction float64
}

// BeliefDistribution describes how widely a proposition is held across the network.
type BeliefDistribution struct {
	Domain            KnowledgeDomain `json:"domain"`
	Proposition       string          `json:"proposition"`
	Percentage        float64         `json:"percentage"`
	AverageConviction float64         `json:"average_conviction"`
	HolderCount       int             `json:"holder_count"`
}

// BeliefPair is two beliefs of one agent that contradict each other.
type BeliefPair struct {
	A Belief `json:"a"`
	B Belief `json:"b"`
}

// Tension is the mean conviction of the pair.
func (p BeliefPair) Tension() float64 {
	return (p.A.Conviction + p.B.Conviction) / 2
}
