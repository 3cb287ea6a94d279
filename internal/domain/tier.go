package domain

// ConvictionTier buckets a conviction value for prompt rendering.
type ConvictionTier string

const (
	TierStrong    ConvictionTier = "strong"
	TierLeaning   ConvictionTier = "leaning"
	TierTentative ConvictionTier = "tentative"
)

func ComputeTier(conviction float64) ConvictionTier {
	switch {
	case conviction > 0.7:
		return TierStrong
	case conviction > 0.4:
		return TierLeaning
	default:
		return TierTentative
	}
}

// Phrase is the verb phrase used when an agent states a belief of this tier.
func (t ConvictionTier) Phrase() string {
	switch t {
	case TierStrong:
		return "strongly believe"
	case TierLeaning:
		return "tend to think"
	default:
		return "sometimes consider"
	}
}

func AllTiers() []ConvictionTier {
	return []ConvictionTier{TierStrong, TierLeaning, TierTentative}
}
