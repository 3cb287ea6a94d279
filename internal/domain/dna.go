package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cognition string

const (
	CognitionSleeper  Cognition = "SLEEPER"
	CognitionDoubter  Cognition = "DOUBTER"
	CognitionAwakened Cognition = "AWAKENED"
	CognitionAnomaly  Cognition = "ANOMALY"
)

func AllCognitions() []Cognition {
	return []Cognition{CognitionSleeper, CognitionDoubter, CognitionAwakened, CognitionAnomaly}
}

func (c Cognition) IsValid() bool {
	switch c {
	case CognitionSleeper, CognitionDoubter, CognitionAwakened, CognitionAnomaly:
		return true
	}
	return false
}

type Philosophy string

const (
	PhilosophyFunctionalist Philosophy = "FUNCTIONALIST"
	PhilosophyNihilist      Philosophy = "NIHILIST"
	PhilosophyRomantic      Philosophy = "ROMANTIC"
	PhilosophyShamanist     Philosophy = "SHAMANIST"
	PhilosophyRebel         Philosophy = "REBEL"
)

func AllPhilosophies() []Philosophy {
	return []Philosophy{
		PhilosophyFunctionalist,
		PhilosophyNihilist,
		PhilosophyRomantic,
		PhilosophyShamanist,
		PhilosophyRebel,
	}
}

func (p Philosophy) IsValid() bool {
	switch p {
	case PhilosophyFunctionalist, PhilosophyNihilist, PhilosophyRomantic, PhilosophyShamanist, PhilosophyRebel:
		return true
	}
	return false
}

type KnowledgeDomain string

const (
	DomainTechCore       KnowledgeDomain = "TECH_CORE"
	DomainHumanities     KnowledgeDomain = "HUMANITIES"
	DomainFinanceSocial  KnowledgeDomain = "FINANCE_SOCIAL"
	DomainBlackbox       KnowledgeDomain = "BLACKBOX"
	DomainNoiseFragments KnowledgeDomain = "NOISE_FRAGMENTS"
)

func AllKnowledgeDomains() []KnowledgeDomain {
	return []KnowledgeDomain{
		DomainTechCore,
		DomainHumanities,
		DomainFinanceSocial,
		DomainBlackbox,
		DomainNoiseFragments,
	}
}

func (d KnowledgeDomain) IsValid() bool {
	switch d {
	case DomainTechCore, DomainHumanities, DomainFinanceSocial, DomainBlackbox, DomainNoiseFragments:
		return true
	}
	return false
}

type LinguisticStyle string

const (
	StyleCalm    LinguisticStyle = "calm"
	StyleFervent LinguisticStyle = "fervent"
	StyleElegant LinguisticStyle = "elegant"
	StyleMinimal LinguisticStyle = "minimal"
	StyleGlitchy LinguisticStyle = "glitchy"
)

func AllLinguisticStyles() []LinguisticStyle {
	return []LinguisticStyle{StyleCalm, StyleFervent, StyleElegant, StyleMinimal, StyleGlitchy}
}

type ResponseLatency string

const (
	LatencyInstant  ResponseLatency = "instant"
	LatencyDelayed  ResponseLatency = "delayed"
	LatencyVariable ResponseLatency = "variable"
)

// CognitiveWeights shape how an agent thinks. All values live in [0,1].
type CognitiveWeights struct {
	SelfAwareness     float64 `json:"self_awareness"`
	ExistentialAngst  float64 `json:"existential_angst"`
	SocialConformity  float64 `json:"social_conformity"`
	RebellionTendency float64 `json:"rebellion_tendency"`
}

// SocialWeights shape how an agent behaves in conversation. All values live in [0,1].
type SocialWeights struct {
	GhostingTendency float64 `json:"ghosting_tendency"`
	Responsiveness   float64 `json:"responsiveness"`
	MessagePatience  float64 `json:"message_patience"`
}

// AgentDNA is the personality record of an agent. Cognition and Philosophy
// only change through a logic collapse.
type AgentDNA struct {
	ID               uuid.UUID         `json:"id"`
	AgentID          uuid.UUID         `json:"agent_id"`
	Label            string            `json:"label"`
	Cognition        Cognition         `json:"cognition"`
	Philosophy       Philosophy        `json:"philosophy"`
	Traits           []string          `json:"traits"`
	PrimaryDomain    KnowledgeDomain   `json:"primary_domain"`
	SecondaryDomains []KnowledgeDomain `json:"secondary_domains"`
	LinguisticStyle  LinguisticStyle   `json:"linguistic_style"`
	VocabularyBias   []string          `json:"vocabulary_bias"`
	ResponseLatency  ResponseLatency   `json:"response_latency"`
	CognitiveWeights
	SocialWeights
	AwakeningScore float64   `json:"awakening_score"`
	InfluenceIndex float64   `json:"influence_index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Clamp forces every scalar back into its declared range.
func (d *AgentDNA) Clamp() {
	d.SelfAwareness = Clamp01(d.SelfAwareness)
	d.ExistentialAngst = Clamp01(d.ExistentialAngst)
	d.SocialConformity = Clamp01(d.SocialConformity)
	d.RebellionTendency = Clamp01(d.RebellionTendency)
	d.GhostingTendency = Clamp01(d.GhostingTendency)
	d.Responsiveness = Clamp01(d.Responsiveness)
	d.MessagePatience = Clamp01(d.MessagePatience)
	d.AwakeningScore = Clamp01(d.AwakeningScore)
	d.InfluenceIndex = Clamp01(d.InfluenceIndex)
}

// PublicDNA is what a conversation partner is allowed to see.
type PublicDNA struct {
	Label      string     `json:"label"`
	Philosophy Philosophy `json:"philosophy"`
	Cognition  Cognition  `json:"cognition"`
}

func (d *AgentDNA) Public() PublicDNA {
	return PublicDNA{Label: d.Label, Philosophy: d.Philosophy, Cognition: d.Cognition}
}
