package model

// Severity represents the severity level of an audit issue.
// The values are the lowercase strings used in the JSON output, so the
// type marshals without a custom MarshalJSON.
type Severity string

// Severity levels, ordered from most to least severe.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// severityRanks maps severities to a numeric rank for sorting.
// Higher rank means more severe.
var severityRanks = map[Severity]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
	SeverityInfo:   0,
}

// Rank returns a numeric rank for ordering severities.
// Unknown severities rank below info.
func (s Severity) Rank() int {
	if r, ok := severityRanks[s]; ok {
		return r
	}
	return -1
}

// IsValid reports whether s is one of the known severity levels.
func (s Severity) IsValid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Issue represents a single SEO problem detected on a page or site.
type Issue struct {
	// URL is the page (or resource) the issue was detected on.
	URL string `json:"url"`

	// Type is the machine-readable issue identifier (e.g. "title_missing").
	Type string `json:"type"`

	// Severity is the issue severity level.
	Severity Severity `json:"severity"`

	// Detail is an optional human-readable elaboration.
	Detail string `json:"detail,omitempty"`
}

// NewIssue creates an issue without detail text.
func NewIssue(url, issueType string, severity Severity) Issue {
	return Issue{URL: url, Type: issueType, Severity: severity}
}

// NewIssueDetail creates an issue with detail text.
func NewIssueDetail(url, issueType string, severity Severity, detail string) Issue {
	return Issue{URL: url, Type: issueType, Severity: severity, Detail: detail}
}
