package scoring

import (
	"math"

	"github.com/nao1215/seoscan/internal/model"
)

// maxRecommendations caps the recommendation list in a health report.
const maxRecommendations = 10

// CategoryScore aggregates issue scores within one category.
type CategoryScore struct {
	// Count is the number of issues in the category.
	Count int `json:"count"`

	// TotalImpact is the sum of severity-adjusted impact scores.
	TotalImpact float64 `json:"total_impact"`

	// AvgImpact is the mean severity-adjusted impact.
	AvgImpact float64 `json:"avg_impact"`

	// AvgEffort is the mean fix effort.
	AvgEffort float64 `json:"avg_effort"`
}

// Recommendation is a prioritized fix suggestion, one per issue type.
type Recommendation struct {
	// IssueType is the issue type the recommendation addresses.
	IssueType string `json:"issue_type"`

	// Category is the issue's broad category.
	Category string `json:"category"`

	// Impact is the severity-adjusted impact of the first (highest
	// priority) occurrence.
	Impact float64 `json:"impact"`

	// Effort is the estimated fix effort.
	Effort int `json:"effort"`

	// Priority is the severity-adjusted priority score.
	Priority float64 `json:"priority"`
}

// HealthReport is the overall site health assessment.
type HealthReport struct {
	// OverallScore is the site health score (0-100, one decimal).
	OverallScore float64 `json:"overall_score"`

	// Grade is the letter grade for the score (A-F).
	Grade string `json:"grade"`

	// TotalIssues is the number of issues found.
	TotalIssues int `json:"total_issues"`

	// PagesScanned is the number of pages the crawl consumed.
	PagesScanned int `json:"pages_scanned"`

	// IssuesPerPage is the issue density (two decimals).
	IssuesPerPage float64 `json:"issues_per_page"`

	// CategoryScores aggregates scores per category.
	CategoryScores map[string]CategoryScore `json:"category_scores"`

	// CriticalIssues is the number of high severity issues.
	CriticalIssues int `json:"critical_issues"`

	// Recommendations lists the top fixes, highest priority first,
	// one entry per issue type, capped at ten.
	Recommendations []Recommendation `json:"recommendations"`
}

// CalculateHealth computes the overall health score for an audit.
//
// The score starts at 100 and loses (total adjusted impact / pages) * 2
// plus (issues / pages) * 5, floored at zero. Zero scanned pages always
// grade F with a zero score.
func CalculateHealth(issues []model.Issue, pagesScanned int) *HealthReport {
	if pagesScanned == 0 {
		return &HealthReport{Grade: "F"}
	}

	scored := make([]ScoredIssue, len(issues))
	totalImpact := 0.0
	critical := 0
	for i, issue := range issues {
		scored[i] = Score(issue)
		totalImpact += scored[i].Impact
		if issue.Severity == model.SeverityHigh {
			critical++
		}
	}

	pages := float64(pagesScanned)
	density := float64(len(issues)) / pages
	penalty := (totalImpact/pages)*2 + density*5
	overall := round1(math.Max(0, 100-penalty))

	return &HealthReport{
		OverallScore:    overall,
		Grade:           letterGrade(overall),
		TotalIssues:     len(issues),
		PagesScanned:    pagesScanned,
		IssuesPerPage:   round2(density),
		CategoryScores:  categoryScores(scored),
		CriticalIssues:  critical,
		Recommendations: recommendations(scored),
	}
}

// letterGrade converts a numeric score to a letter grade.
func letterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// categoryScores aggregates scored issues per category.
func categoryScores(scored []ScoredIssue) map[string]CategoryScore {
	categories := make(map[string]CategoryScore)
	efforts := make(map[string]int)

	for _, si := range scored {
		cs := categories[si.Category]
		cs.Count++
		cs.TotalImpact += si.Impact
		categories[si.Category] = cs
		efforts[si.Category] += si.Effort
	}

	for name, cs := range categories {
		cs.AvgImpact = round1(cs.TotalImpact / float64(cs.Count))
		cs.AvgEffort = round1(float64(efforts[name]) / float64(cs.Count))
		categories[name] = cs
	}
	return categories
}

// recommendations builds the top fix list: issues sorted by priority,
// deduplicated by type with the first (highest priority) occurrence
// kept, capped at maxRecommendations.
func recommendations(scored []ScoredIssue) []Recommendation {
	sorted := make([]ScoredIssue, len(scored))
	copy(sorted, scored)
	sortByPriority(sorted)

	var recs []Recommendation
	seen := make(map[string]bool)
	for _, si := range sorted {
		if !seen[si.Issue.Type] {
			seen[si.Issue.Type] = true
			recs = append(recs, Recommendation{
				IssueType: si.Issue.Type,
				Category:  si.Category,
				Impact:    si.Impact,
				Effort:    si.Effort,
				Priority:  si.Priority,
			})
		}
		if len(recs) >= maxRecommendations {
			break
		}
	}
	return recs
}
