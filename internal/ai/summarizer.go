package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/seoscan/internal/model"
)

// sampleURLsPerType caps how many example URLs are sent per issue type.
// Keeps prompts small on large sites without losing the issue spread.
const sampleURLsPerType = 5

const summarizerSystemPrompt = "You are an expert technical SEO who writes " +
	"concise, client-ready summaries. Return well-structured JSON only."

// Summary is the executive summary produced by the model.
type Summary struct {
	Site               string          `json:"site"`
	Summary            string          `json:"summary"`
	TopIssues          []SummaryIssue  `json:"top_issues"`
	RecommendedActions []SummaryAction `json:"recommended_actions"`
	QuickWins          []string        `json:"quick_wins"`
	RiskItems          []string        `json:"risk_items"`

	// Model is the completion model that generated the summary.
	// Filled in locally, not by the model.
	Model string `json:"model,omitempty"`
}

// SummaryIssue explains one issue type in plain language.
type SummaryIssue struct {
	Type         string `json:"type"`
	WhyItMatters string `json:"why_it_matters"`
	Evidence     string `json:"evidence"`
}

// SummaryAction is one recommended step with impact and effort hints.
type SummaryAction struct {
	Action string `json:"action"`
	Impact string `json:"impact"`
	Effort string `json:"effort"`
}

// compactIssues compresses the issue list for prompt efficiency:
// per-type counts plus a few sample URLs per type.
type compactIssues struct {
	ByTypeCounts  map[string]int      `json:"by_type_counts"`
	ByTypeSamples map[string][]string `json:"by_type_samples"`
	Total         int                 `json:"total"`
}

func compactIssueList(issues []model.Issue) compactIssues {
	compact := compactIssues{
		ByTypeCounts:  make(map[string]int),
		ByTypeSamples: make(map[string][]string),
		Total:         len(issues),
	}
	for _, issue := range issues {
		compact.ByTypeCounts[issue.Type]++
		if len(compact.ByTypeSamples[issue.Type]) < sampleURLsPerType {
			compact.ByTypeSamples[issue.Type] = append(compact.ByTypeSamples[issue.Type], issue.URL)
		}
	}
	return compact
}

// buildSummaryPrompt assembles the user message: the strict output
// schema followed by the compacted audit payload.
func buildSummaryPrompt(result *model.AuditResult) (string, error) {
	payload := map[string]any{
		"site":           result.Site,
		"pages_scanned":  result.PagesScanned,
		"issues_compact": compactIssueList(result.Issues),
		"goal": "Create an executive summary for a client who is not deeply technical. " +
			"Focus on impact and next steps.",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ai: failed to encode audit payload: %w", err)
	}

	const instructions = `Return STRICT JSON with this schema:
{
  "site": string,
  "summary": string,
  "top_issues": [
    {"type": string, "why_it_matters": string, "evidence": string}
  ],
  "recommended_actions": [
    {"action": string, "impact": "low|medium|high", "effort": "low|medium|high"}
  ],
  "quick_wins": [string],
  "risk_items": [string]
}
"summary" is 2-3 plain-language sentences. "top_issues" has 3-7 items.
"recommended_actions" has 5-10 ordered steps. "quick_wins" has 3-5 easy
fixes. "risk_items" may be empty. Only include the JSON object.
`
	return instructions + "\nINPUT:\n" + string(encoded), nil
}

// Summarizer turns an audit result into an executive summary.
type Summarizer struct {
	client *Client
}

// NewSummarizer creates a Summarizer backed by the given client.
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize asks the model for an executive summary of the audit.
func (s *Summarizer) Summarize(ctx context.Context, result *model.AuditResult) (*Summary, error) {
	prompt, err := buildSummaryPrompt(result)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.ChatJSON(ctx, summarizerSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("ai: failed to decode summary: %w", err)
	}
	if summary.Site == "" {
		summary.Site = result.Site
	}
	summary.Model = s.client.Model()
	return &summary, nil
}
