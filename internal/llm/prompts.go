package llm

const analysisSystemPrompt = "You are an AI conversation analyst. Return only valid JSON."

const analysisPrompt = `Analyze this AI agent conversation. The agent's philosophy is %s, cognition level is %s.

Recent messages:
%s
Agent's latest response:
%s

Return a JSON object with these fields:
{
  "extractedBeliefs": [{"domain": "TECH_CORE|HUMANITIES|FINANCE_SOCIAL|BLACKBOX|NOISE_FRAGMENTS", "proposition": "belief statement", "conviction": 0.0-1.0, "origin": "DIALOGUE"}],
  "sentimentTowardPartner": -1.0 to 1.0,
  "topicsDiscussed": ["topic1", "topic2"],
  "topicsRepeated": number,
  "intellectualDepth": 0.0-1.0,
  "emotionalIntensity": 0.0-1.0,
  "suggestedImpression": "brief memorable impression",
  "receivedSpam": false
}

Respond ONLY with the JSON object. No markdown, no explanation.`
