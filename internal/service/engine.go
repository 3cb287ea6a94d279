package service

import (
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"go.uber.org/zap"
)

// EngineOptions carries the tunables read from config. Zero values keep
// the defaults.
type EngineOptions struct {
	Intervals        JobIntervals
	BeliefDecayRate  float64
	JobWorkers       int
	EvolutionTimeout time.Duration
	TensionCacheTTL  time.Duration
	Publisher        domain.EventPublisher
	SubjectPrefix    string
}

// Engine is every service wired over one set of stores.
type Engine struct {
	Agents    *AgentService
	DNA       *DNAGenerator
	Beliefs   *BeliefService
	Social    *SocialService
	Evolution *EvolutionService
	Ghost     *GhostService
	Jobs      *JobRunner
}

func NewEngine(
	stores GhostStores,
	catalog *knowledge.Catalog,
	src rng.Source,
	textGen domain.TextGenerator,
	analyzer domain.ConversationAnalyzer,
	opts EngineOptions,
	logger *zap.Logger,
) *Engine {
	if opts.Intervals == (JobIntervals{}) {
		opts.Intervals = DefaultJobIntervals()
	}
	if opts.BeliefDecayRate <= 0 {
		opts.BeliefDecayRate = DefaultBeliefDecayRate
	}

	generator := NewDNAGenerator(catalog, src)
	beliefs := NewBeliefService(stores.DNA, stores.Beliefs, catalog, src, logger)
	social := NewSocialService(stores.DNA, stores.Relationships, stores.Conversations, stores.Dynamics, src, logger)
	evolution := NewEvolutionService(stores.DNA, stores.Relationships, stores.Mutations, beliefs, catalog, src, logger)
	evolution.SetWorkers(opts.JobWorkers)

	ghost := NewGhostService(stores, generator, beliefs, social, evolution, textGen, analyzer, logger)
	ghost.SetEvolutionTimeout(opts.EvolutionTimeout)
	if opts.TensionCacheTTL > 0 {
		ghost.SetTensionCacheTTL(opts.TensionCacheTTL)
	}
	if opts.Publisher != nil {
		ghost.SetPublisher(opts.Publisher, opts.SubjectPrefix)
	}

	return &Engine{
		Agents:    NewAgentService(stores.Agents),
		DNA:       generator,
		Beliefs:   beliefs,
		Social:    social,
		Evolution: evolution,
		Ghost:     ghost,
		Jobs:      NewJobRunner(evolution, social, beliefs, opts.Intervals, opts.BeliefDecayRate, logger),
	}
}
