package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	JobConsensusGravity = "gravity"
	JobCollapseSweep    = "collapse"
	JobIrritationDecay  = "irritation"
	JobTemperatureDecay = "temperature"
	JobBeliefDecay      = "beliefs"

	jobRunTimeout = 5 * time.Minute
)

var ErrUnknownJob = errors.New("unknown job")

type IrritationDecayResult struct {
	RelationshipsDecayed int `json:"relationships_decayed"`
}

type TemperatureDecayResult struct {
	ConversationsDecayed int `json:"conversations_decayed"`
}

type JobIntervals struct {
	Gravity     time.Duration
	Collapse    time.Duration
	Decay       time.Duration
	BeliefDecay time.Duration
}

func DefaultJobIntervals() JobIntervals {
	return JobIntervals{
		Gravity:     6 * time.Hour,
		Collapse:    time.Hour,
		Decay:       time.Hour,
		BeliefDecay: 24 * time.Hour,
	}
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (any, error)
}

// JobRunner runs the periodic maintenance sweeps. Every job is idempotent,
// so a missed or repeated tick is harmless.
type JobRunner struct {
	jobs   map[string]job
	logger *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewJobRunner(evolution *EvolutionService, social *SocialService, beliefs *BeliefService, intervals JobIntervals, beliefDecayRate float64, logger *zap.Logger) *JobRunner {
	r := &JobRunner{
		jobs:   make(map[string]job),
		logger: logger,
		stopCh: make(chan struct{}),
	}
	r.register(JobConsensusGravity, intervals.Gravity, func(ctx context.Context) (any, error) {
		return evolution.ApplyConsensusGravity(ctx)
	})
	r.register(JobCollapseSweep, intervals.Collapse, func(ctx context.Context) (any, error) {
		return evolution.CheckAllLogicCollapse(ctx)
	})
	r.register(JobIrritationDecay, intervals.Decay, func(ctx context.Context) (any, error) {
		n, err := social.DecayAllIrritation(ctx)
		return &IrritationDecayResult{RelationshipsDecayed: n}, err
	})
	r.register(JobTemperatureDecay, intervals.Decay, func(ctx context.Context) (any, error) {
		n, err := social.DecayConversationTemperature(ctx)
		return &TemperatureDecayResult{ConversationsDecayed: n}, err
	})
	r.register(JobBeliefDecay, intervals.BeliefDecay, func(ctx context.Context) (any, error) {
		return beliefs.DecayAllBeliefs(ctx, beliefDecayRate)
	})
	return r
}

func (r *JobRunner) register(name string, interval time.Duration, run func(context.Context) (any, error)) {
	r.jobs[name] = job{name: name, interval: interval, run: run}
}

// Names lists the registered jobs in a stable order.
func (r *JobRunner) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one job immediately and returns its summary.
func (r *JobRunner) Run(ctx context.Context, name string) (any, error) {
	j, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	start := time.Now()
	result, err := j.run(ctx)
	if err != nil {
		r.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		return result, err
	}
	r.logger.Info("job complete",
		zap.String("job", name),
		zap.Duration("took", time.Since(start)),
		zap.Any("result", result))
	return result, nil
}

// Start launches one ticker goroutine per job with a positive interval.
func (r *JobRunner) Start() {
	for _, name := range r.Names() {
		j := r.jobs[name]
		if j.interval <= 0 {
			continue
		}
		r.wg.Add(1)
		go r.loop(j)
	}
}

func (r *JobRunner) loop(j job) {
	defer r.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	r.logger.Info("job worker started", zap.String("job", j.name), zap.Duration("interval", j.interval))

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), jobRunTimeout)
			_, _ = r.Run(ctx, j.name)
			cancel()
		case <-r.stopCh:
			r.logger.Info("job worker stopped", zap.String("job", j.name))
			return
		}
	}
}

func (r *JobRunner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}
