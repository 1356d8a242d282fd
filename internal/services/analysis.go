package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

// SessionAnalysis is the terminal analysis written to a session at closure.
type SessionAnalysis struct {
	Summary        string `json:"summary"`
	SeverityRating int    `json:"severityRating"`
}

// AnalyzeTranscript asks the model to summarize and score the transcript.
// It never fails: any model or parse trouble degrades to safe defaults, with
// a structured log on each fallback path so silent degradation is visible.
func AnalyzeTranscript(ctx context.Context, provider core.LLMProvider, messages []models.Message) SessionAnalysis {
	if len(messages) == 0 {
		return SessionAnalysis{Summary: emptySessionSummary, SeverityRating: 1}
	}

	var sb strings.Builder
	sb.WriteString(analysisPromptHeader)
	sb.WriteString(FormatTranscript(messages))
	sb.WriteString(analysisPromptFooter)

	raw, err := provider.Generate(ctx, "", sb.String())
	if err != nil {
		slog.Warn("session analysis failed, using safe defaults",
			"reason", "llm_error", "error", err)
		return SessionAnalysis{Summary: analysisFailedSummary, SeverityRating: 2}
	}

	return parseAnalysis(raw)
}

// FormatTranscript renders messages as "User: ..." / "Assistant: ..." lines.
func FormatTranscript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		speaker := "Assistant"
		if msg.Role == models.RoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// parseAnalysis extracts the first JSON object in the raw model output and
// normalizes its fields. Malformed or missing pieces get defaults rather
// than failing the closure.
func parseAnalysis(raw string) SessionAnalysis {
	obj := extractJSONObject(raw)
	if obj == "" {
		slog.Warn("session analysis unparsable, using safe defaults",
			"reason", "no_json_object", "raw_len", len(raw))
		return SessionAnalysis{Summary: unparsableSummary, SeverityRating: 2}
	}

	var parsed struct {
		Summary        string   `json:"summary"`
		SeverityRating *float64 `json:"severityRating"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		slog.Warn("session analysis unparsable, using safe defaults",
			"reason", "json_decode", "error", err)
		return SessionAnalysis{Summary: unparsableSummary, SeverityRating: 2}
	}

	out := SessionAnalysis{Summary: parsed.Summary}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = missingSummaryFallback
	}
	if parsed.SeverityRating == nil || *parsed.SeverityRating == 0 {
		out.SeverityRating = 2
	} else {
		out.SeverityRating = ClampSeverity(*parsed.SeverityRating)
	}
	return out
}

// ClampSeverity rounds the model's rating and clamps it into [1,5].
func ClampSeverity(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// extractJSONObject returns the substring from the first '{' through the
// last '}', the same tolerant extraction the analysis prompt relies on when
// the model wraps its JSON in prose or markdown fences.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
