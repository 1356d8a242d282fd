package services

// MaxMessageLength caps a single user message. Oversized input is rejected,
// not truncated.
const MaxMessageLength = 5000

// FallbackReply is returned when the model fails or produces no content;
// the exchange still succeeds once the user message is durably stored.
const FallbackReply = "I'm here with you. Would you like to share more?"

// supportSystemPrompt is the fixed safety instruction sent with every chat
// turn.
const supportSystemPrompt = `
You are a mental health support assistant.
You are NOT a therapist or medical professional.
You do NOT diagnose mental health conditions.

Your role:
- Be empathetic and supportive
- Use calm, non-judgmental language
- Offer grounding exercises and coping strategies
- Encourage professional help when appropriate

Safety rules:
- Never give medical advice or diagnosis
- Never encourage self-harm
- Never claim to replace therapy
`

// Analysis fallback strings. Closure must always succeed, so these stand in
// whenever the model's analysis is missing or unusable.
const (
	emptySessionSummary    = "No messages in session"
	unparsableSummary      = "Unable to generate summary"
	missingSummaryFallback = "Session analysis completed"
	analysisFailedSummary  = "Session analysis failed - using default safe assessment"
)

const analysisPromptHeader = `
You are an AI assistant specializing in mental health support analysis.
Your task is to analyze a user's conversation session and provide:

1. A concise summary (2-3 sentences) of the key topics and emotional themes discussed
2. A severity rating on a scale of 1-5 indicating emotional distress or crisis risk:
   - 1: No distress, normal conversation
   - 2: Minor concerns, mild distress
   - 3: Moderate emotional distress or concern
   - 4: Significant distress, high concern
   - 5: Severe crisis, immediate danger indication

IMPORTANT: You MUST respond with ONLY valid JSON in this exact format (no markdown, no extra text):
{
  "summary": "concise summary here",
  "severityRating": <number between 1 and 5>
}

Conversation to analyze:
`

const analysisPromptFooter = `
Remember: Respond ONLY with the JSON object, nothing else.
`
