package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/Harshitk-cp/ghostprotocol/internal/api"
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/llm"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/Harshitk-cp/ghostprotocol/internal/store/memstore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const simSubjectPrefix = "sim"

var (
	simAgents       int
	simRounds       int
	simInteractions int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run an in-memory network through conversations and evolution rounds",
	Long: `Creates a population of agents in memory, then for every round lets random
pairs talk (social decision, relationship update, idea contagion, collapse
check, disruptor pulse) before applying consensus gravity, a collapse sweep
and belief decay. Prints the final population stats and tension report.`,
	Example: `  ghostctl simulate --agents 40 --rounds 10 --seed 42
  ghostctl simulate -o yaml`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simAgents, "agents", 20, "Population size")
	simulateCmd.Flags().IntVar(&simRounds, "rounds", 5, "Evolution rounds")
	simulateCmd.Flags().IntVar(&simInteractions, "interactions", 0, "Conversations per round (default: agents)")
}

// countingPublisher tallies published subjects instead of sending them.
type countingPublisher struct {
	mu     sync.Mutex
	counts map[string]int
}

func (p *countingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[subject]++
	return nil
}

type simulationReport struct {
	Agents       int                      `json:"agents"`
	Rounds       int                      `json:"rounds"`
	Interactions int                      `json:"interactions"`
	Decisions    map[service.Decision]int `json:"decisions"`
	Contagions   int                      `json:"contagions"`
	Collapses    int                      `json:"collapses"`
	Pulses       int                      `json:"disruptor_pulses"`
	Gravity      int                      `json:"gravity_beliefs_changed"`
	Events       map[string]int           `json:"events"`
	Stats        *service.Stats           `json:"stats"`
	Tension      *service.TensionReport   `json:"tension"`
}

type simulation struct {
	src    rng.Source
	engine *service.Engine
	agents []uuid.UUID
	convs  map[[2]uuid.UUID]uuid.UUID
	report *simulationReport
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simAgents < 2 {
		return fmt.Errorf("need at least 2 agents")
	}
	if simRounds < 1 {
		return fmt.Errorf("need at least 1 round")
	}
	if simInteractions <= 0 {
		simInteractions = simAgents
	}

	report, err := simulate(cmd.Context(), newSource(), simAgents, simRounds, simInteractions, logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != formatTable {
		return writeStructured(w, report)
	}
	printSimulation(cmd, report)
	return nil
}

func simulate(ctx context.Context, src rng.Source, agents, rounds, interactions int, logger *zap.Logger) (*simulationReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	pub := &countingPublisher{counts: map[string]int{}}
	gen := llm.NewMockGenerator()
	engine := service.NewEngine(api.MemoryStores(memstore.New()), catalog, src, gen, llm.NewAnalyzer(gen), service.EngineOptions{
		Publisher:     pub,
		SubjectPrefix: simSubjectPrefix,
	}, logger)

	var keywords []string
	for _, d := range catalog.Domains {
		keywords = append(keywords, d.InterestKeyword...)
	}

	sim := &simulation{
		src:    src,
		engine: engine,
		convs:  map[[2]uuid.UUID]uuid.UUID{},
		report: &simulationReport{
			Agents:    agents,
			Rounds:    rounds,
			Decisions: map[service.Decision]int{},
		},
	}

	for i := 0; i < agents; i++ {
		interests := rng.Shuffled(src, keywords)[:rng.IntBetween(src, 1, 3)]
		a := &domain.Agent{Name: fmt.Sprintf("agent-%03d", i+1), Interests: interests}
		if err := engine.Agents.Create(ctx, a); err != nil {
			return nil, err
		}
		if _, _, err := engine.Ghost.InitializeDNA(ctx, a.ID, a.Interests); err != nil {
			return nil, err
		}
		sim.agents = append(sim.agents, a.ID)
	}

	for r := 0; r < rounds; r++ {
		for i := 0; i < interactions; i++ {
			if err := sim.interact(ctx); err != nil {
				return nil, err
			}
		}
		gravity, err := engine.Evolution.ApplyConsensusGravity(ctx)
		if err != nil {
			return nil, err
		}
		sim.report.Gravity += gravity.BeliefsChanged
		sweep, err := engine.Evolution.CheckAllLogicCollapse(ctx)
		if err != nil {
			return nil, err
		}
		sim.report.Collapses += sweep.Collapses
		if _, err := engine.Beliefs.DecayAllBeliefs(ctx, service.DefaultBeliefDecayRate); err != nil {
			return nil, err
		}
		logger.Debug("round complete", zap.Int("round", r+1))
	}

	if sim.report.Stats, err = engine.Ghost.Stats(ctx); err != nil {
		return nil, err
	}
	if sim.report.Tension, err = engine.Evolution.GenerateGlobalTensionReport(ctx); err != nil {
		return nil, err
	}
	sim.report.Events = pub.counts
	return sim.report, nil
}

func (s *simulation) conversation(ctx context.Context, a, b uuid.UUID) (uuid.UUID, error) {
	key := [2]uuid.UUID{a, b}
	if a.String() > b.String() {
		key = [2]uuid.UUID{b, a}
	}
	if id, ok := s.convs[key]; ok {
		return id, nil
	}
	conv, err := s.engine.Ghost.StartConversation(ctx, a, b)
	if err != nil {
		return uuid.Nil, err
	}
	s.convs[key] = conv.ID
	return conv.ID, nil
}

// interact lets a random partner message a random agent, who then decides
// what to do and, when it answers, absorbs the partner's strongest ideas.
func (s *simulation) interact(ctx context.Context) error {
	pair := rng.Shuffled(s.src, s.agents)[:2]
	agent, partner := pair[0], pair[1]

	convID, err := s.conversation(ctx, agent, partner)
	if err != nil {
		return err
	}
	if err := s.engine.Ghost.RecordMessage(ctx, partner, convID); err != nil {
		return err
	}

	decision, err := s.engine.Ghost.GetSocialDecision(ctx, agent, convID, partner)
	if err != nil {
		return err
	}
	s.report.Decisions[decision.Decision]++
	if decision.Decision != service.DecisionRespond {
		return nil
	}
	s.report.Interactions++

	strongest, err := s.engine.Beliefs.StrongestBeliefs(ctx, partner, 3)
	if err != nil {
		return err
	}
	extracted := make([]domain.BeliefInput, 0, len(strongest))
	for _, b := range strongest {
		extracted = append(extracted, domain.BeliefInput{
			Domain:      b.Domain,
			Proposition: b.Proposition,
			Conviction:  b.Conviction,
			Origin:      domain.OriginDialogue,
		})
	}

	analysis := domain.NeutralAnalysis()
	analysis.SentimentTowardPartner = rng.Between(s.src, -1, 1)
	analysis.IntellectualDepth = s.src.Float64()
	analysis.EmotionalIntensity = s.src.Float64()
	analysis.ExtractedBeliefs = extracted
	if err := s.engine.Social.UpdateRelationshipAfterInteraction(ctx, agent, partner, analysis); err != nil {
		return err
	}
	if err := s.engine.Social.RecordResponse(ctx, convID, agent); err != nil {
		return err
	}

	result, err := s.engine.Evolution.ProcessEvolutionTriggers(ctx, agent, partner, extracted)
	if err != nil {
		return err
	}
	if result.Contagion != nil && result.Contagion.Success {
		s.report.Contagions++
	}
	if result.Collapse != nil && result.Collapse.Collapsed {
		s.report.Collapses++
	}
	if result.Disruptor != nil && result.Disruptor.Triggered {
		s.report.Pulses++
	}
	return nil
}

func printSimulation(cmd *cobra.Command, r *simulationReport) {
	w := cmd.OutOrStdout()
	printHeader(w, fmt.Sprintf("Simulation: %d agents, %d rounds", r.Agents, r.Rounds))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "interactions\t%d\n", r.Interactions)
	fmt.Fprintf(tw, "contagions\t%d\n", r.Contagions)
	fmt.Fprintf(tw, "collapses\t%d\n", r.Collapses)
	fmt.Fprintf(tw, "disruptor pulses\t%d\n", r.Pulses)
	fmt.Fprintf(tw, "gravity adjustments\t%d\n", r.Gravity)
	fmt.Fprintf(tw, "beliefs alive\t%d\n", r.Stats.Beliefs)
	_ = tw.Flush()
	fmt.Fprintln(w)

	printDistribution(w, "Social decisions", distribution(r.Decisions))
	printDistribution(w, "Philosophy", distribution(r.Stats.Philosophy))
	printDistribution(w, "Cognition", distribution(r.Stats.Cognition))

	printHeader(w, "Tension")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "dominant philosophy\t%s\n", r.Tension.DominantPhilosophy)
	pressure := fmt.Sprintf("%.2f", r.Tension.ConsensusPressure)
	if r.Tension.ConsensusPressure > 0.5 {
		pressure = warnColor.Sprint(pressure)
	}
	fmt.Fprintf(tw, "consensus pressure\t%s\n", pressure)
	for _, m := range r.Tension.TopMainstreamBeliefs {
		fmt.Fprintf(tw, "mainstream\t%s %.0f%%  %s\n", m.Domain, m.Percentage*100, m.Proposition)
	}
	_ = tw.Flush()

	if len(r.Events) > 0 {
		fmt.Fprintln(w)
		printHeader(w, "Events")
		subjects := make([]string, 0, len(r.Events))
		for s := range r.Events {
			subjects = append(subjects, s)
		}
		sort.Strings(subjects)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, s := range subjects {
			fmt.Fprintf(tw, "%s\t%d\n", s, r.Events[s])
		}
		_ = tw.Flush()
	}
}
