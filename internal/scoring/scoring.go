// Package scoring turns raw audit issues into impact/effort scores,
// prioritized recommendations, and an overall site health grade.
package scoring

import (
	"math"
	"sort"

	"github.com/nao1215/seoscan/internal/model"
)

// Default scores for issue types absent from the tables.
const (
	defaultImpact = 5
	defaultEffort = 5
)

// impactScores rates how much each issue type hurts search performance
// (1-10, higher = more impact).
var impactScores = map[string]int{
	// Critical (9-10)
	"no_https":                      10,
	"duplicate_content":             10,
	"noindex_directive":             10,
	"ssl_expired":                   10,
	"missing_viewport":              10,
	"render_blocking_javascript":    9,
	"multiple_canonical_tags":       9,
	"conflicting_robots_directives": 9,

	// High (7-8)
	"title_missing":             8,
	"canonical_http_on_https":   8,
	"very_thin_content":         8,
	"missing_canonical":         7,
	"canonical_points_elsewhere": 7,
	"missing_og_tag":            7,
	"large_html_size":           7,
	"no_compression":            7,

	// Medium (5-6)
	"title_too_long":             6,
	"meta_description_missing":   6,
	"missing_hsts":               6,
	"render_blocking_css":        6,
	"orphan_page":                6,
	"thin_content":               6,
	"potential_keyword_stuffing": 6,
	"near_duplicate_content":     6,
	"broken_link":                5,
	"missing_html_lang":          5,
	"images_without_dimensions":  5,
	"missing_csp":                5,

	// Low (3-4)
	"duplicate_title":            4,
	"duplicate_meta_description": 4,
	"img_alt_missing":            4,
	"missing_twitter_card":       4,
	"missing_favicon":            4,
	"page_too_deep":              4,
	"empty_anchor_text":          3,
	"generic_anchor_text":        3,
	"missing_etag":               3,
	"long_sentences":             3,

	// Info (1-2)
	"nofollow_directive":      2,
	"noarchive_directive":     2,
	"missing_preconnect":      2,
	"compression_not_optimal": 2,
	"missing_twitter_site":    1,
	"missing_apple_touch_icon": 1,
	"complex_vocabulary":      1,
}

// effortScores rates how hard each issue type is to fix
// (1-10, higher = more effort).
var effortScores = map[string]int{
	// High (7-10)
	"no_https":                   9,
	"duplicate_content":          8,
	"orphan_page":                8,
	"very_thin_content":          8,
	"page_too_deep":              7,
	"near_duplicate_content":     7,
	"potential_keyword_stuffing": 7,
	"thin_content":               7,

	// Medium (4-6)
	"render_blocking_javascript": 6,
	"render_blocking_css":        5,
	"large_html_size":            5,
	"broken_link":                4,
	"missing_canonical":          4,
	"missing_og_tag":             4,

	// Low (1-3)
	"title_missing":              2,
	"title_too_long":             1,
	"meta_description_missing":   2,
	"duplicate_title":            2,
	"duplicate_meta_description": 2,
	"img_alt_missing":            2,
	"missing_viewport":           1,
	"missing_html_lang":          1,
	"no_compression":             3,
	"missing_hsts":               2,
	"missing_csp":                3,
	"missing_favicon":            2,
	"missing_twitter_card":       2,
	"empty_anchor_text":          1,
	"generic_anchor_text":        1,
	"images_without_dimensions":  2,
	"missing_preconnect":         1,
	"missing_etag":               2,
}

// severityMultipliers adjust impact and priority (but never effort)
// for the severity the issue was reported at.
var severityMultipliers = map[model.Severity]float64{
	model.SeverityHigh:   1.2,
	model.SeverityMedium: 1.0,
	model.SeverityLow:    0.8,
	model.SeverityInfo:   0.5,
}

// categoryMembership assigns issue types to broad categories.
// Order matters: the first category containing a type wins, so types
// listed under both technical and security report as technical.
var categoryMembership = []struct {
	name  string
	types []string
}{
	{name: "content", types: []string{
		"title_missing", "title_too_long", "meta_description_missing",
		"duplicate_title", "duplicate_meta_description",
		"thin_content", "very_thin_content",
		"duplicate_content", "near_duplicate_content",
		"potential_keyword_stuffing",
	}},
	{name: "technical", types: []string{
		"no_https", "ssl_expired", "missing_canonical",
		"multiple_canonical_tags", "noindex_directive",
		"conflicting_robots_directives", "missing_viewport",
	}},
	{name: "links", types: []string{
		"broken_link", "orphan_page", "page_too_deep",
		"empty_anchor_text", "generic_anchor_text",
	}},
	{name: "performance", types: []string{
		"large_html_size", "no_compression",
		"render_blocking_css", "render_blocking_javascript",
		"images_without_dimensions",
	}},
	{name: "social", types: []string{
		"missing_og_tag", "missing_twitter_card", "missing_favicon",
	}},
	{name: "security", types: []string{
		"no_https", "ssl_expired", "missing_hsts", "missing_csp",
	}},
}

// ScoredIssue is an issue annotated with its scores and category.
type ScoredIssue struct {
	// Issue is the underlying audit issue.
	Issue model.Issue

	// Impact is the severity-adjusted impact score.
	Impact float64

	// Effort is the estimated fix effort, never severity-adjusted.
	Effort int

	// Priority is the severity-adjusted priority (quick wins score high).
	Priority float64

	// Category is the broad category the issue belongs to.
	Category string
}

// ImpactScore returns the base impact score for an issue type.
func ImpactScore(issueType string) int {
	if score, ok := impactScores[issueType]; ok {
		return score
	}
	return defaultImpact
}

// EffortScore returns the base effort score for an issue type.
func EffortScore(issueType string) int {
	if score, ok := effortScores[issueType]; ok {
		return score
	}
	return defaultEffort
}

// PriorityScore returns the base priority for an issue type: the
// impact/effort ratio scaled to 0-10 and capped at 10, so high-impact
// low-effort fixes rank first.
func PriorityScore(issueType string) float64 {
	priority := float64(ImpactScore(issueType)) / float64(EffortScore(issueType)) * 5
	return math.Min(10.0, priority)
}

// Categorize returns the broad category for an issue type, or "other".
func Categorize(issueType string) string {
	for _, category := range categoryMembership {
		for _, t := range category.types {
			if t == issueType {
				return category.name
			}
		}
	}
	return "other"
}

// Score computes the severity-adjusted scores for a single issue.
func Score(issue model.Issue) ScoredIssue {
	multiplier, ok := severityMultipliers[issue.Severity]
	if !ok {
		multiplier = 1.0
	}

	return ScoredIssue{
		Issue:    issue,
		Impact:   round1(float64(ImpactScore(issue.Type)) * multiplier),
		Effort:   EffortScore(issue.Type),
		Priority: round1(PriorityScore(issue.Type) * multiplier),
		Category: Categorize(issue.Type),
	}
}

// Prioritize scores all issues and sorts them by priority, highest
// first. The sort is stable so detection order breaks ties.
func Prioritize(issues []model.Issue) []ScoredIssue {
	scored := make([]ScoredIssue, len(issues))
	for i, issue := range issues {
		scored[i] = Score(issue)
	}
	sortByPriority(scored)
	return scored
}

// sortByPriority orders scored issues by priority descending. The sort
// is stable so detection order breaks ties.
func sortByPriority(scored []ScoredIssue) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
