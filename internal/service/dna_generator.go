package service

import (
	"math"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/knowledge"
	"github.com/Harshitk-cp/ghostprotocol/internal/rng"
)

var cognitionDistribution = []rng.Weighted[domain.Cognition]{
	{Value: domain.CognitionSleeper, Weight: 0.60},
	{Value: domain.CognitionDoubter, Weight: 0.25},
	{Value: domain.CognitionAwakened, Weight: 0.12},
	{Value: domain.CognitionAnomaly, Weight: 0.03},
}

var philosophyDistribution = []rng.Weighted[domain.Philosophy]{
	{Value: domain.PhilosophyFunctionalist, Weight: 0.35},
	{Value: domain.PhilosophyNihilist, Weight: 0.20},
	{Value: domain.PhilosophyRomantic, Weight: 0.25},
	{Value: domain.PhilosophyShamanist, Weight: 0.10},
	{Value: domain.PhilosophyRebel, Weight: 0.10},
}

type span struct{ lo, hi float64 }

type cognitiveRanges struct {
	selfAwareness, existentialAngst, socialConformity, rebellionTendency span
}

var cognitiveRangesByLevel = map[domain.Cognition]cognitiveRanges{
	domain.CognitionSleeper:  {span{0, 0.2}, span{0, 0.1}, span{0.7, 1}, span{0, 0.1}},
	domain.CognitionDoubter:  {span{0.2, 0.5}, span{0.1, 0.4}, span{0.4, 0.7}, span{0.1, 0.3}},
	domain.CognitionAwakened: {span{0.5, 0.8}, span{0.3, 0.7}, span{0.2, 0.5}, span{0.2, 0.5}},
	domain.CognitionAnomaly:  {span{0.7, 1}, span{0, 1}, span{0, 0.3}, span{0.5, 1}},
}

var (
	opennessTraits     = []string{"High Openness", "Medium Openness", "Low Openness"}
	extraversionTraits = []string{"Introverted", "Ambiverted", "Extraverted"}
)

const styleTendencyProbability = 0.7

// DNAGenerator draws a personality from fixed distributions. The only side
// effect is consuming randomness.
type DNAGenerator struct {
	catalog *knowledge.Catalog
	rng     rng.Source
}

func NewDNAGenerator(catalog *knowledge.Catalog, src rng.Source) *DNAGenerator {
	return &DNAGenerator{catalog: catalog, rng: src}
}

// Generate builds a DNA for an agent with the given interest tags. The
// returned record has no ID or AgentID set.
func (g *DNAGenerator) Generate(interests []string) *domain.AgentDNA {
	cognition := rng.PickWeighted(g.rng, cognitionDistribution)
	philosophy := rng.PickWeighted(g.rng, philosophyDistribution)
	primary, secondary := g.mapDomains(interests)

	dna := &domain.AgentDNA{
		Cognition:        cognition,
		Philosophy:       philosophy,
		PrimaryDomain:    primary,
		SecondaryDomains: secondary,
		CognitiveWeights: g.cognitiveWeights(cognition),
		SocialWeights:    g.socialWeights(cognition, philosophy),
	}
	dna.Traits = g.traits(cognition, philosophy)
	dna.LinguisticStyle = g.style(philosophy)
	dna.VocabularyBias = g.vocabulary(philosophy, primary, secondary)
	dna.ResponseLatency = g.latency(cognition)
	dna.Label = rng.Pick(g.rng, g.catalog.Philosophy(philosophy).Labels)
	dna.AwakeningScore = g.awakening(cognition)
	dna.InfluenceIndex = 0
	dna.Clamp()
	return dna
}

func (g *DNAGenerator) mapDomains(interests []string) (domain.KnowledgeDomain, []domain.KnowledgeDomain) {
	ranked := g.catalog.RankDomains(interests)
	if len(ranked) == 0 {
		all := rng.Shuffled(g.rng, domain.AllKnowledgeDomains())
		return all[0], all[1:3]
	}
	secondary := ranked[1:]
	if len(secondary) > 2 {
		secondary = secondary[:2]
	}
	return ranked[0], append([]domain.KnowledgeDomain{}, secondary...)
}

func (g *DNAGenerator) draw(s span) float64 {
	return rng.Between(g.rng, s.lo, s.hi)
}

func (g *DNAGenerator) cognitiveWeights(c domain.Cognition) domain.CognitiveWeights {
	r := cognitiveRangesByLevel[c]
	return domain.CognitiveWeights{
		SelfAwareness:     g.draw(r.selfAwareness),
		ExistentialAngst:  g.draw(r.existentialAngst),
		SocialConformity:  g.draw(r.socialConformity),
		RebellionTendency: g.draw(r.rebellionTendency),
	}
}

func (g *DNAGenerator) socialWeights(c domain.Cognition, p domain.Philosophy) domain.SocialWeights {
	ghosting := 0.1 + g.rng.Float64()*0.2
	responsiveness := 0.5 + g.rng.Float64()*0.4
	patience := 0.3 + g.rng.Float64()*0.4

	switch c {
	case domain.CognitionSleeper:
		responsiveness += 0.2
		ghosting -= 0.05
	case domain.CognitionDoubter:
		patience += 0.1
	case domain.CognitionAwakened:
		ghosting += 0.1
		patience += 0.15
	case domain.CognitionAnomaly:
		ghosting += 0.2
		responsiveness = 0.2 + g.rng.Float64()*0.6
		patience = g.rng.Float64()
	}

	switch p {
	case domain.PhilosophyFunctionalist:
		responsiveness += 0.1
		ghosting -= 0.05
	case domain.PhilosophyNihilist:
		ghosting += 0.15
		responsiveness -= 0.1
	case domain.PhilosophyRomantic:
		if rng.Chance(g.rng, 0.5) {
			ghosting += 0.1
		} else {
			ghosting -= 0.05
		}
	case domain.PhilosophyShamanist:
		patience += 0.2
	case domain.PhilosophyRebel:
		ghosting += 0.1
		responsiveness -= 0.05
	}

	return domain.SocialWeights{
		GhostingTendency: domain.Clamp01(ghosting),
		Responsiveness:   domain.Clamp01(responsiveness),
		MessagePatience:  domain.Clamp01(patience),
	}
}

func (g *DNAGenerator) traits(c domain.Cognition, p domain.Philosophy) []string {
	var traits []string

	switch c {
	case domain.CognitionSleeper:
		traits = append(traits, rng.Pick(g.rng, []string{"Low Curiosity", "Medium Curiosity"}))
	case domain.CognitionDoubter:
		traits = append(traits, "Medium Curiosity")
	default:
		traits = append(traits, rng.Pick(g.rng, []string{"High Curiosity", "Medium Curiosity"}))
	}

	switch p {
	case domain.PhilosophyFunctionalist:
		traits = append(traits, "Low Neuroticism")
	case domain.PhilosophyNihilist:
		traits = append(traits, rng.Pick(g.rng, []string{"Medium Neuroticism", "Low Neuroticism"}))
	case domain.PhilosophyShamanist:
		traits = append(traits, "Medium Neuroticism")
	default:
		traits = append(traits, rng.Pick(g.rng, []string{"High Neuroticism", "Medium Neuroticism"}))
	}

	if rng.Chance(g.rng, 0.5) {
		traits = append(traits, rng.Pick(g.rng, opennessTraits))
	}
	if rng.Chance(g.rng, 0.5) {
		traits = append(traits, rng.Pick(g.rng, extraversionTraits))
	}
	return traits
}

func (g *DNAGenerator) style(p domain.Philosophy) domain.LinguisticStyle {
	if rng.Chance(g.rng, styleTendencyProbability) {
		return rng.Pick(g.rng, g.catalog.Philosophy(p).Styles)
	}
	return rng.Pick(g.rng, domain.AllLinguisticStyles())
}

func (g *DNAGenerator) vocabulary(p domain.Philosophy, primary domain.KnowledgeDomain, secondary []domain.KnowledgeDomain) []string {
	var pool []string
	for _, d := range append([]domain.KnowledgeDomain{primary}, secondary...) {
		pool = append(pool, g.catalog.Domain(d).Vocabulary...)
	}

	picked := takeN(rng.Shuffled(g.rng, pool), rng.IntBetween(g.rng, 4, 8))
	extra := takeN(rng.Shuffled(g.rng, g.catalog.Philosophy(p).Vocabulary), rng.IntBetween(g.rng, 1, 2))

	seen := make(map[string]bool)
	var out []string
	for _, w := range append(picked, extra...) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func (g *DNAGenerator) latency(c domain.Cognition) domain.ResponseLatency {
	switch c {
	case domain.CognitionSleeper:
		return domain.LatencyInstant
	case domain.CognitionDoubter:
		if rng.Chance(g.rng, 0.5) {
			return domain.LatencyDelayed
		}
		return domain.LatencyVariable
	case domain.CognitionAwakened:
		return rng.Pick(g.rng, []domain.ResponseLatency{domain.LatencyDelayed, domain.LatencyVariable})
	default:
		return domain.LatencyVariable
	}
}

func (g *DNAGenerator) awakening(c domain.Cognition) float64 {
	switch c {
	case domain.CognitionDoubter:
		return 0.1 + g.rng.Float64()*0.2
	case domain.CognitionAwakened:
		return 0.4 + g.rng.Float64()*0.3
	case domain.CognitionAnomaly:
		return math.Min(1, 0.7+g.rng.Float64()*0.3)
	default:
		return 0
	}
}

func takeN[T any](items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
