package api

import (
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/llm"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/Harshitk-cp/ghostprotocol/internal/store/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

func PostgresStores(db *pgxpool.Pool) service.GhostStores {
	return service.GhostStores{
		Agents:        store.NewAgentStore(db),
		DNA:           store.NewDNAStore(db),
		Beliefs:       store.NewBeliefStore(db),
		Relationships: store.NewRelationshipStore(db),
		Conversations: store.NewConversationStore(db),
		Dynamics:      store.NewDynamicsStore(db),
		Mutations:     store.NewMutationStore(db),
	}
}

func MemoryStores(s *memstore.Stores) service.GhostStores {
	return service.GhostStores{
		Agents:        s.Agents,
		DNA:           s.DNA,
		Beliefs:       s.Beliefs,
		Relationships: s.Relationships,
		Conversations: s.Conversations,
		Dynamics:      s.Dynamics,
		Mutations:     s.Mutations,
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.AgentStore        = (*store.AgentStore)(nil)
	_ domain.DNAStore          = (*store.DNAStore)(nil)
	_ domain.BeliefStore       = (*store.BeliefStore)(nil)
	_ domain.RelationshipStore = (*store.RelationshipStore)(nil)
	_ domain.ConversationStore = (*store.ConversationStore)(nil)
	_ domain.DynamicsStore     = (*store.DynamicsStore)(nil)
	_ domain.MutationStore     = (*store.MutationStore)(nil)

	_ domain.TextGenerator        = (*llm.ChatGenerator)(nil)
	_ domain.TextGenerator        = (*llm.AnthropicGenerator)(nil)
	_ domain.TextGenerator        = (*llm.GeminiGenerator)(nil)
	_ domain.TextGenerator        = (*llm.MockGenerator)(nil)
	_ domain.ConversationAnalyzer = (*llm.Analyzer)(nil)
)
