package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/store/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEngine_WiresPublisher(t *testing.T) {
	s := memstore.New()
	pub := &recordingPublisher{}
	eng := NewEngine(GhostStores{
		Agents:        s.Agents,
		DNA:           s.DNA,
		Beliefs:       s.Beliefs,
		Relationships: s.Relationships,
		Conversations: s.Conversations,
		Dynamics:      s.Dynamics,
		Mutations:     s.Mutations,
	}, knowledge.Default(), rng.New(1), &mockGenerator{}, &stubAnalyzer{}, EngineOptions{
		Publisher:     pub,
		SubjectPrefix: "sim",
	}, zap.NewNop())

	assert.Equal(t, []string{JobBeliefDecay, JobCollapseSweep, JobConsensusGravity, JobIrritationDecay, JobTemperatureDecay}, eng.Jobs.Names())

	_, _, err := eng.Ghost.InitializeDNA(context.Background(), uuid.New(), []string{"music"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sim.dna.initialized"}, pub.subjects)
}
