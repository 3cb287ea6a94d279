package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a registered participant in the network. DNA is attached lazily.
type Agent struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Interests  []string  `json:"interests,omitempty"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
