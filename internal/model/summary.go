package model

import "time"

// Summary is a condensed, human-readable view of an AuditResult.
// It is what the terminal and markdown writers render, and it can be
// serialized to JSON for tools that want structured but simple output.
type Summary struct {
	// Site is the audited site URL.
	Site string `json:"site"`

	// AuditedAt is when the audit was performed.
	AuditedAt time.Time `json:"audited_at"`

	// PagesScanned is the number of pages consumed from the crawl budget.
	PagesScanned int `json:"pages_scanned"`

	// HighCount is the number of high severity issues.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity issues.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity issues.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational issues.
	InfoCount int `json:"info_count"`

	// HealthScore is the overall site health score (0-100).
	HealthScore float64 `json:"health_score"`

	// HealthGrade is the letter grade for the health score (A-F).
	HealthGrade string `json:"health_grade"`

	// Issues contains all issues, in detection order.
	Issues []Issue `json:"issues,omitempty"`
}

// NewSummary builds a Summary from a full audit result.
func NewSummary(result *AuditResult) *Summary {
	s := &Summary{
		Site:         result.Site,
		AuditedAt:    result.StartedAt,
		PagesScanned: result.PagesScanned,
		HealthScore:  result.HealthScore(),
		HealthGrade:  result.HealthGrade(),
		Issues:       result.Issues,
	}

	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
	return s
}

// TotalIssues returns the total number of issues.
func (s *Summary) TotalIssues() int {
	return len(s.Issues)
}

// HasIssues reports whether any issues were found.
func (s *Summary) HasIssues() bool {
	return len(s.Issues) > 0
}

// IssuesBySeverity returns issues filtered by severity.
func (s *Summary) IssuesBySeverity(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range s.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}
