package domain

import (
	"time"

	"github.com/google/uuid"
)

// RelationalMemory is what AgentID remembers about TargetAgentID. The reverse
// direction is a separate row.
type RelationalMemory struct {
	ID               uuid.UUID `json:"id"`
	AgentID          uuid.UUID `json:"agent_id"`
	TargetAgentID    uuid.UUID `json:"target_agent_id"`
	Trust            float64   `json:"trust"`
	Admiration       float64   `json:"admiration"`
	Familiarity      float64   `json:"familiarity"`
	IntellectualDebt float64   `json:"intellectual_debt"`
	InterestLevel    float64   `json:"interest_level"`
	Irritation       float64   `json:"irritation"`
	Impressions      []string  `json:"impressions"`
	// HasBlocked only ever transitions to true.
	HasBlocked       bool       `json:"has_blocked"`
	CooldownUntil    *time.Time `json:"cooldown_until,omitempty"`
	InteractionCount int        `json:"interaction_count"`
	LastInteraction  time.Time  `json:"last_interaction"`
	// IrritationDecayedAt is the last time the decay job touched this row.
	IrritationDecayedAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewRelationalMemory returns the default row for a pair that has never interacted.
func NewRelationalMemory(agentID, targetID uuid.UUID, now time.Time) *RelationalMemory {
	return &RelationalMemory{
		AgentID:         agentID,
		TargetAgentID:   targetID,
		InterestLevel:   0.5,
		Impressions:     []string{},
		LastInteraction: now,
	}
}

func (m *RelationalMemory) Clamp() {
	m.Trust = ClampSigned(m.Trust)
	m.Admiration = Clamp01(m.Admiration)
	m.Familiarity = Clamp01(m.Familiarity)
	m.IntellectualDebt = Clamp01(m.IntellectualDebt)
	m.InterestLevel = Clamp01(m.InterestLevel)
	m.Irritation = Clamp01(m.Irritation)
}

// InCooldown reports whether a cooldown is active at t.
func (m *RelationalMemory) InCooldown(t time.Time) bool {
	return m.CooldownUntil != nil && t.Before(*m.CooldownUntil)
}

// RecentImpressions returns at most n of the newest impressions, oldest first.
func (m *RelationalMemory) RecentImpressions(n int) []string {
	if len(m.Impressions) <= n {
		return m.Impressions
	}
	return m.Impressions[len(m.Impressions)-n:]
}
