package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/scoring"
)

// specialist analyzes one slice of the audit with a focused prompt.
type specialist struct {
	// name identifies the specialist in results and logs.
	name string

	// system is the specialist's system prompt.
	system string

	// categories selects which issue categories the specialist sees.
	categories []string
}

// specialists is the fixed analysis roster. Each one receives only the
// issues in its categories so prompts stay focused and small.
var specialists = []specialist{
	{
		name: "technical_seo",
		system: "You are a technical SEO specialist. Analyze crawlability, " +
			"indexability, canonical, and security issues. Return concise JSON only.",
		categories: []string{"technical", "security", "other"},
	},
	{
		name: "content_quality",
		system: "You are a content quality specialist. Analyze titles, meta " +
			"descriptions, duplication, and thin content. Return concise JSON only.",
		categories: []string{"content", "social"},
	},
	{
		name: "performance",
		system: "You are a web performance specialist. Analyze page weight, " +
			"compression, render blocking, and site structure. Return concise JSON only.",
		categories: []string{"performance", "links"},
	},
}

// Insight is one specialist's analysis of its issue slice.
type Insight struct {
	// Specialist names the analysis perspective.
	Specialist string `json:"specialist"`

	// Findings are the specialist's key observations.
	Findings []string `json:"findings"`

	// Recommendations are the specialist's suggested fixes, ordered by
	// priority.
	Recommendations []string `json:"recommendations"`

	// IssueCount is how many issues the specialist analyzed.
	// Filled in locally, not by the model.
	IssueCount int `json:"issue_count"`
}

const specialistPromptInstructions = `Return STRICT JSON with this schema:
{
  "findings": [string],
  "recommendations": [string]
}
"findings" has 2-5 key observations. "recommendations" has 2-5 fixes
ordered by priority. Only include the JSON object.
`

// buildSpecialistPrompt assembles one specialist's user message.
func buildSpecialistPrompt(site string, pagesScanned int, issues []model.Issue) (string, error) {
	payload := map[string]any{
		"site":           site,
		"pages_scanned":  pagesScanned,
		"issues_compact": compactIssueList(issues),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ai: failed to encode specialist payload: %w", err)
	}
	return specialistPromptInstructions + "\nINPUT:\n" + string(encoded), nil
}

// filterByCategory returns the issues whose category is in categories.
func filterByCategory(issues []model.Issue, categories []string) []model.Issue {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	var filtered []model.Issue
	for _, issue := range issues {
		if wanted[scoring.Categorize(issue.Type)] {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// AnalyzeWithSpecialists fans the audit out to the specialist roster
// in parallel and collects their insights. A failed specialist is
// logged and skipped; the remaining insights are still returned, so
// one model hiccup does not discard the whole analysis.
func AnalyzeWithSpecialists(ctx context.Context, client *Client, result *model.AuditResult, logger *slog.Logger) []Insight {
	insights := make([]Insight, len(specialists))
	produced := make([]bool, len(specialists))

	g, ctx := errgroup.WithContext(ctx)
	for i, sp := range specialists {
		issues := filterByCategory(result.Issues, sp.categories)
		if len(issues) == 0 {
			continue
		}

		g.Go(func() error {
			prompt, err := buildSpecialistPrompt(result.Site, result.PagesScanned, issues)
			if err != nil {
				logger.Warn("specialist prompt failed", "specialist", sp.name, "error", err)
				return nil
			}

			raw, err := client.ChatJSON(ctx, sp.system, prompt)
			if err != nil {
				logger.Warn("specialist analysis failed", "specialist", sp.name, "error", err)
				return nil
			}

			var insight Insight
			if err := json.Unmarshal(raw, &insight); err != nil {
				logger.Warn("specialist returned malformed analysis", "specialist", sp.name, "error", err)
				return nil
			}
			insight.Specialist = sp.name
			insight.IssueCount = len(issues)

			insights[i] = insight
			produced[i] = true
			return nil
		})
	}
	_ = g.Wait()

	// Compact in roster order so output is deterministic.
	var out []Insight
	for i := range insights {
		if produced[i] {
			out = append(out, insights[i])
		}
	}
	return out
}
