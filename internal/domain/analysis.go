package domain

// ConversationAnalysis is the structured read of one generated turn.
type ConversationAnalysis struct {
	ExtractedBeliefs       []BeliefInput `json:"extractedBeliefs"`
	SentimentTowardPartner float64       `json:"sentimentTowardPartner"`
	TopicsDiscussed        []string      `json:"topicsDiscussed"`
	TopicsRepeated         int           `json:"topicsRepeated"`
	IntellectualDepth      float64       `json:"intellectualDepth"`
	EmotionalIntensity     float64       `json:"emotionalIntensity"`
	SuggestedImpression    string        `json:"suggestedImpression"`
	ReceivedSpam           bool          `json:"receivedSpam"`
}

// NeutralAnalysis is used whenever the analyzer cannot produce a result.
func NeutralAnalysis() *ConversationAnalysis {
	return &ConversationAnalysis{
		ExtractedBeliefs:   []BeliefInput{},
		TopicsDiscussed:    []string{},
		IntellectualDepth:  0.5,
		EmotionalIntensity: 0.3,
	}
}

// Normalize clamps every score and replaces nil slices.
func (a *ConversationAnalysis) Normalize() {
	if a.ExtractedBeliefs == nil {
		a.ExtractedBeliefs = []BeliefInput{}
	}
	if a.TopicsDiscussed == nil {
		a.TopicsDiscussed = []string{}
	}
	if a.TopicsRepeated < 0 {
		a.TopicsRepeated = 0
	}
	a.SentimentTowardPartner = ClampSigned(a.SentimentTowardPartner)
	a.IntellectualDepth = Clamp01(a.IntellectualDepth)
	a.EmotionalIntensity = Clamp01(a.EmotionalIntensity)
	for i := range a.ExtractedBeliefs {
		a.ExtractedBeliefs[i].Conviction = Clamp01(a.ExtractedBeliefs[i].Conviction)
		if a.ExtractedBeliefs[i].Origin == "" {
			a.ExtractedBeliefs[i].Origin = OriginDialogue
		}
	}
}

// AnalysisRequest is what the analyzer needs to read one turn.
type AnalysisRequest struct {
	Philosophy Philosophy
	Cognition  Cognition
	History    []Message
	Response   string
}
