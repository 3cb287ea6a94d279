package service

import (
	"context"
	"testing"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *testEnv) jobs(intervals JobIntervals) *JobRunner {
	return NewJobRunner(e.evolution, e.social, e.beliefs, intervals, DefaultBeliefDecayRate, zap.NewNop())
}

func TestJobRunner_Names(t *testing.T) {
	env := newTestEnv(t, rng.New(1))
	r := env.jobs(DefaultJobIntervals())

	assert.Equal(t, []string{
		JobBeliefDecay,
		JobCollapseSweep,
		JobConsensusGravity,
		JobIrritationDecay,
		JobTemperatureDecay,
	}, r.Names())
}

func TestJobRunner_UnknownJob(t *testing.T) {
	env := newTestEnv(t, rng.New(1))
	r := env.jobs(DefaultJobIntervals())

	_, err := r.Run(context.Background(), "reindex")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestJobRunner_Run(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rng.New(1))
	r := env.jobs(DefaultJobIntervals())

	env.putRelationship(uuid.New(), uuid.New(), func(m *domain.RelationalMemory) {
		m.Irritation = 0.5
		m.LastInteraction = env.now.Add(-5 * time.Hour)
	})
	dna := env.addDNA(t, nil)
	env.addBelief(t, dna.ID, domain.DomainTechCore, "acquired", 0.5, domain.OriginContagion)

	result, err := r.Run(ctx, JobIrritationDecay)
	require.NoError(t, err)
	assert.Equal(t, &IrritationDecayResult{RelationshipsDecayed: 1}, result)

	result, err = r.Run(ctx, JobTemperatureDecay)
	require.NoError(t, err)
	assert.Equal(t, &TemperatureDecayResult{}, result)

	result, err = r.Run(ctx, JobBeliefDecay)
	require.NoError(t, err)
	assert.Equal(t, &BeliefDecayResult{AgentsProcessed: 1, BeliefsDecayed: 1}, result)

	result, err = r.Run(ctx, JobCollapseSweep)
	require.NoError(t, err)
	assert.Equal(t, &CollapseSweepResult{AgentsChecked: 1}, result)

	result, err = r.Run(ctx, JobConsensusGravity)
	require.NoError(t, err)
	assert.IsType(t, &GravityResult{}, result)
}

func TestJobRunner_StartStop(t *testing.T) {
	env := newTestEnv(t, rng.New(1))
	env.putRelationship(uuid.New(), uuid.New(), func(m *domain.RelationalMemory) {
		m.Irritation = 0.5
		m.LastInteraction = env.now.Add(-5 * time.Hour)
	})

	r := env.jobs(JobIntervals{Decay: 10 * time.Millisecond})
	r.Start()

	assert.Eventually(t, func() bool {
		rows, err := env.stores.Relationships.ListIrritated(context.Background())
		return err == nil && len(rows) == 1 && rows[0].Irritation < 0.5
	}, time.Second, 10*time.Millisecond)

	r.Stop()
}
