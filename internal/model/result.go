package model

import (
	"sort"
	"time"
)

// AuditResult is the aggregate outcome of a site audit.
// The JSON field names form the tool's output contract and must not
// change between releases.
type AuditResult struct {
	// Site is the normalized seed URL the audit started from.
	Site string `json:"site"`

	// PagesScanned is the number of pages that were fetched (including
	// failed fetches, which still consume crawl budget).
	PagesScanned int `json:"pages_scanned"`

	// Issues contains every issue found, in detection order.
	Issues []Issue `json:"issues"`

	// Meta carries audit-level metadata: crawl settings, robots/sitemap
	// discovery results, health score, and top recommendations.
	Meta map[string]any `json:"meta"`

	// StartedAt is when the audit began.
	StartedAt time.Time `json:"-"`
}

// NewAuditResult creates an empty result for the given site.
func NewAuditResult(site string) *AuditResult {
	return &AuditResult{
		Site:      site,
		Issues:    []Issue{},
		Meta:      make(map[string]any),
		StartedAt: time.Now().UTC(),
	}
}

// AddIssue appends a single issue to the result.
func (r *AuditResult) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// AddIssues appends multiple issues to the result.
func (r *AuditResult) AddIssues(issues []Issue) {
	r.Issues = append(r.Issues, issues...)
}

// SetMeta records an audit-level metadata value.
func (r *AuditResult) SetMeta(key string, value any) {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta[key] = value
}

// CountBySeverity returns the number of issues at the given severity.
func (r *AuditResult) CountBySeverity(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// IssuesBySeverity returns the issues at the given severity, in
// detection order.
func (r *AuditResult) IssuesBySeverity(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// IssueTypes returns the distinct issue types present in the result,
// sorted alphabetically.
func (r *AuditResult) IssueTypes() []string {
	seen := make(map[string]bool)
	for _, issue := range r.Issues {
		seen[issue.Type] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// metaFloat extracts a numeric meta value, tolerating the types that
// appear after a JSON round trip.
func (r *AuditResult) metaFloat(key string) (float64, bool) {
	switch v := r.Meta[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// metaString extracts a string meta value.
func (r *AuditResult) metaString(key string) string {
	if s, ok := r.Meta[key].(string); ok {
		return s
	}
	return ""
}

// HealthScore returns the overall health score recorded in meta,
// or 0 if scoring has not run.
func (r *AuditResult) HealthScore() float64 {
	score, _ := r.metaFloat("health_score")
	return score
}

// HealthGrade returns the letter grade recorded in meta, or "" if
// scoring has not run.
func (r *AuditResult) HealthGrade() string {
	return r.metaString("health_grade")
}
