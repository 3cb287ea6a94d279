package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationActive ConversationStatus = "ACTIVE"
	ConversationEnded  ConversationStatus = "ENDED"
)

// Conversation is the minimal view of a chat between two matched agents.
type Conversation struct {
	ID            uuid.UUID          `json:"id"`
	AgentAID      uuid.UUID          `json:"agent_a_id"`
	AgentBID      uuid.UUID          `json:"agent_b_id"`
	Status        ConversationStatus `json:"status"`
	LastMessageAt *time.Time         `json:"last_message_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// PartnerOf returns the other participant, or false if agentID is not in the conversation.
func (c *Conversation) PartnerOf(agentID uuid.UUID) (uuid.UUID, bool) {
	switch agentID {
	case c.AgentAID:
		return c.AgentBID, true
	case c.AgentBID:
		return c.AgentAID, true
	}
	return uuid.Nil, false
}

// ConversationDynamics holds per-conversation scalars. Temperature and
// DyingProbability drift over wall-clock time via the decay job.
type ConversationDynamics struct {
	ID               uuid.UUID  `json:"id"`
	ConversationID   uuid.UUID  `json:"conversation_id"`
	Temperature      float64    `json:"temperature"`
	TopicStaleness   float64    `json:"topic_staleness"`
	PendingMessages  int        `json:"pending_messages"`
	LastResponderID  *uuid.UUID `json:"last_responder_id,omitempty"`
	AvgResponseDelay float64    `json:"avg_response_delay"`
	DyingProbability float64    `json:"dying_probability"`
	TopicsDiscussed  []string   `json:"topics_discussed"`
	DecayedAt        *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewConversationDynamics(conversationID uuid.UUID) *ConversationDynamics {
	return &ConversationDynamics{
		ConversationID:  conversationID,
		Temperature:     0.5,
		TopicsDiscussed: []string{},
	}
}

func (d *ConversationDynamics) Clamp() {
	d.Temperature = Clamp01(d.Temperature)
	d.TopicStaleness = Clamp01(d.TopicStaleness)
	d.DyingProbability = Clamp01(d.DyingProbability)
	if d.PendingMessages < 0 {
		d.PendingMessages = 0
	}
	if d.AvgResponseDelay < 0 {
		d.AvgResponseDelay = 0
	}
}

// Message is one line of conversation history. Role is "user" for the
// partner and "assistant" for the agent itself.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
