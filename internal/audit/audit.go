// Package audit turns a hospital's fraud statistics into a narrative audit
// summary, via Gemini when an API key is configured and a deterministic
// template otherwise.
package audit

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pawan/claimlens/internal/claims"
)

// Summarizer produces the audit narrative for one hospital.
type Summarizer interface {
	// Summarize returns a short investigator-facing narrative for the stats.
	Summarize(ctx context.Context, stats claims.AuditStats) (string, error)
	// Close releases any resources held by the summarizer.
	Close() error
}

// defaultModel is the Gemini model used for audit narratives.
const defaultModel = "gemini-1.5-flash"

// GeminiSummarizer generates narratives through the Gemini API.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a Gemini-backed summarizer. Model may be empty
// to use the default.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

// Summarize asks the model for a concise audit narrative.
func (s *GeminiSummarizer) Summarize(ctx context.Context, stats claims.AuditStats) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(stats)))
	if err != nil {
		return "", fmt.Errorf("failed to generate audit summary: %w", err)
	}
	return extractText(resp)
}

// Close releases the underlying client.
func (s *GeminiSummarizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// buildPrompt frames the stats for the model.
func buildPrompt(stats claims.AuditStats) string {
	return fmt.Sprintf(`You are a senior health-insurance fraud auditor reviewing PM-JAY claims.
Write a concise audit summary (4-6 sentences) for the hospital below.
Cover the overall risk posture, the dominant fraud patterns, and a recommended action.
Do not use markdown formatting.

Hospital: %s (%s)
Total claims: %d
Flagged as fraudulent: %d
Image reuse cases: %d
Duplicate claims: %d
Concurrent (multi-hospital) claims: %d
Ghost beneficiary claims: %d
Average risk score: %.2f/100
Risk category: %s
Average billing deviation: %.2f%%`,
		stats.HospitalID, stats.State, stats.TotalClaims, stats.FraudCount,
		stats.ImageReuseCount, stats.DuplicateCount, stats.ConcurrentCount,
		stats.GhostCount, stats.AvgRiskScore, stats.RiskCategory,
		stats.AvgClaimDeviation)
}

// extractText pulls the text parts out of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

// TemplateSummarizer renders the narrative from a fixed template. It is the
// offline fallback and always succeeds.
type TemplateSummarizer struct{}

// NewTemplateSummarizer returns the deterministic fallback summarizer.
func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

// Summarize renders the template narrative.
func (TemplateSummarizer) Summarize(_ context.Context, stats claims.AuditStats) (string, error) {
	fraudRate := 0.0
	if stats.TotalClaims > 0 {
		fraudRate = float64(stats.FraudCount) / float64(stats.TotalClaims) * 100
	}

	var patterns []string
	if stats.ImageReuseCount > 0 {
		patterns = append(patterns, fmt.Sprintf("%d claims reusing medical imagery", stats.ImageReuseCount))
	}
	if stats.DuplicateCount > 0 {
		patterns = append(patterns, fmt.Sprintf("%d duplicate submissions", stats.DuplicateCount))
	}
	if stats.ConcurrentCount > 0 {
		patterns = append(patterns, fmt.Sprintf("%d concurrent multi-hospital claims", stats.ConcurrentCount))
	}
	if stats.GhostCount > 0 {
		patterns = append(patterns, fmt.Sprintf("%d claims against suspected ghost beneficiaries", stats.GhostCount))
	}
	patternLine := "No dominant fraud pattern was detected."
	if len(patterns) > 0 {
		patternLine = "Dominant patterns include " + strings.Join(patterns, ", ") + "."
	}

	action := "Routine monitoring is sufficient at this time."
	if stats.RiskCategory == "High" {
		action = "A field audit with document verification is recommended before further disbursements."
	}

	return fmt.Sprintf(
		"Hospital %s in %s processed %d claims during the review window, of which %d (%.1f%%) were flagged as potentially fraudulent. "+
			"The facility carries an average risk score of %.1f/100, placing it in the %s risk band. %s "+
			"Billing deviates from package baselines by %.1f%% on average. %s",
		stats.HospitalID, stats.State, stats.TotalClaims, stats.FraudCount, fraudRate,
		stats.AvgRiskScore, stats.RiskCategory, patternLine,
		stats.AvgClaimDeviation, action), nil
}

// Close is a no-op for the template summarizer.
func (TemplateSummarizer) Close() error { return nil }

// Generator tries the primary summarizer and falls back to the template on
// any error, so report generation never blocks on the LLM.
type Generator struct {
	primary  Summarizer
	fallback Summarizer
}

// NewGenerator wires a generator. Primary may be nil, in which case only the
// template is used.
func NewGenerator(primary Summarizer) *Generator {
	return &Generator{primary: primary, fallback: NewTemplateSummarizer()}
}

// Summarize produces the narrative, degrading to the template when the
// primary summarizer fails.
func (g *Generator) Summarize(ctx context.Context, stats claims.AuditStats) (string, error) {
	if g.primary != nil {
		text, err := g.primary.Summarize(ctx, stats)
		if err == nil {
			return text, nil
		}
		log.Printf("[AUDIT] Primary summarizer failed, using template: %v", err)
	}
	return g.fallback.Summarize(ctx, stats)
}

// Close releases both summarizers.
func (g *Generator) Close() error {
	if g.primary != nil {
		return g.primary.Close()
	}
	return nil
}
