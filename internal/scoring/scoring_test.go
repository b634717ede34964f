package scoring

import (
	"testing"

	"github.com/nao1215/seoscan/internal/model"
)

func TestImpactAndEffortScores(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		issueType      string
		expectedImpact int
		expectedEffort int
	}{
		{issueType: "no_https", expectedImpact: 10, expectedEffort: 9},
		{issueType: "title_missing", expectedImpact: 8, expectedEffort: 2},
		{issueType: "missing_viewport", expectedImpact: 10, expectedEffort: 1},
		{issueType: "duplicate_content", expectedImpact: 10, expectedEffort: 8},
		{issueType: "complex_vocabulary", expectedImpact: 1, expectedEffort: 5},
		{issueType: "unknown_issue_type", expectedImpact: 5, expectedEffort: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.issueType, func(t *testing.T) {
			t.Parallel()
			if got := ImpactScore(tc.issueType); got != tc.expectedImpact {
				t.Errorf("ImpactScore(%q) = %d, expected %d", tc.issueType, got, tc.expectedImpact)
			}
			if got := EffortScore(tc.issueType); got != tc.expectedEffort {
				t.Errorf("EffortScore(%q) = %d, expected %d", tc.issueType, got, tc.expectedEffort)
			}
		})
	}
}

func TestPriorityScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		issueType string
		expected  float64
	}{
		// 10/1*5 capped at 10
		{issueType: "missing_viewport", expected: 10},
		// 8/2*5 capped at 10
		{issueType: "title_missing", expected: 10},
		// 10/8*5 = 6.25
		{issueType: "duplicate_content", expected: 6.25},
		// default 5/5*5 = 5
		{issueType: "unknown_issue_type", expected: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.issueType, func(t *testing.T) {
			t.Parallel()
			if got := PriorityScore(tc.issueType); got != tc.expected {
				t.Errorf("PriorityScore(%q) = %v, expected %v", tc.issueType, got, tc.expected)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		issueType string
		expected  string
	}{
		{issueType: "title_missing", expected: "content"},
		{issueType: "missing_canonical", expected: "technical"},
		{issueType: "orphan_page", expected: "links"},
		{issueType: "no_compression", expected: "performance"},
		{issueType: "missing_og_tag", expected: "social"},
		{issueType: "missing_hsts", expected: "security"},
		// Listed under both technical and security; technical wins.
		{issueType: "no_https", expected: "technical"},
		{issueType: "ssl_expired", expected: "technical"},
		{issueType: "something_new", expected: "other"},
	}

	for _, tc := range testCases {
		t.Run(tc.issueType, func(t *testing.T) {
			t.Parallel()
			if got := Categorize(tc.issueType); got != tc.expected {
				t.Errorf("Categorize(%q) = %q, expected %q", tc.issueType, got, tc.expected)
			}
		})
	}
}

func TestScoreAppliesSeverityMultiplier(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name             string
		severity         model.Severity
		expectedImpact   float64
		expectedPriority float64
	}{
		// title_missing: impact 8, effort 2, base priority 10 (capped)
		{name: "high multiplies by 1.2", severity: model.SeverityHigh, expectedImpact: 9.6, expectedPriority: 12},
		{name: "medium unchanged", severity: model.SeverityMedium, expectedImpact: 8, expectedPriority: 10},
		{name: "low multiplies by 0.8", severity: model.SeverityLow, expectedImpact: 6.4, expectedPriority: 8},
		{name: "info multiplies by 0.5", severity: model.SeverityInfo, expectedImpact: 4, expectedPriority: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			scored := Score(model.Issue{URL: "https://example.com/", Type: "title_missing", Severity: tc.severity})
			if scored.Impact != tc.expectedImpact {
				t.Errorf("Impact = %v, expected %v", scored.Impact, tc.expectedImpact)
			}
			if scored.Priority != tc.expectedPriority {
				t.Errorf("Priority = %v, expected %v", scored.Priority, tc.expectedPriority)
			}
			if scored.Effort != 2 {
				t.Errorf("Effort = %d, expected 2 (effort is never severity-adjusted)", scored.Effort)
			}
			if scored.Category != "content" {
				t.Errorf("Category = %q, expected content", scored.Category)
			}
		})
	}
}

func TestPrioritizeSortsDescending(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		{URL: "https://example.com/", Type: "complex_vocabulary", Severity: model.SeverityInfo},
		{URL: "https://example.com/", Type: "missing_viewport", Severity: model.SeverityHigh},
		{URL: "https://example.com/", Type: "orphan_page", Severity: model.SeverityMedium},
	}

	scored := Prioritize(issues)
	if len(scored) != 3 {
		t.Fatalf("len = %d, expected 3", len(scored))
	}
	if scored[0].Issue.Type != "missing_viewport" {
		t.Errorf("first = %q, expected missing_viewport", scored[0].Issue.Type)
	}
	if scored[2].Issue.Type != "complex_vocabulary" {
		t.Errorf("last = %q, expected complex_vocabulary", scored[2].Issue.Type)
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Priority > scored[i-1].Priority {
			t.Errorf("priorities not descending at %d: %v > %v", i, scored[i].Priority, scored[i-1].Priority)
		}
	}
}

func TestCalculateHealthZeroPages(t *testing.T) {
	t.Parallel()

	report := CalculateHealth(nil, 0)
	if report.OverallScore != 0 {
		t.Errorf("OverallScore = %v, expected 0", report.OverallScore)
	}
	if report.Grade != "F" {
		t.Errorf("Grade = %q, expected F", report.Grade)
	}
}

func TestCalculateHealthPerfectSite(t *testing.T) {
	t.Parallel()

	report := CalculateHealth(nil, 10)
	if report.OverallScore != 100 {
		t.Errorf("OverallScore = %v, expected 100", report.OverallScore)
	}
	if report.Grade != "A" {
		t.Errorf("Grade = %q, expected A", report.Grade)
	}
	if report.TotalIssues != 0 || report.CriticalIssues != 0 {
		t.Errorf("issue counts = %d/%d, expected 0/0", report.TotalIssues, report.CriticalIssues)
	}
}

func TestCalculateHealthPenalty(t *testing.T) {
	t.Parallel()

	// One medium title_missing (impact 8) over 4 pages:
	// penalty = (8/4)*2 + (1/4)*5 = 4 + 1.25 = 5.25 -> 94.8 after rounding.
	issues := []model.Issue{
		{URL: "https://example.com/", Type: "title_missing", Severity: model.SeverityMedium},
	}
	report := CalculateHealth(issues, 4)
	if report.OverallScore != 94.8 {
		t.Errorf("OverallScore = %v, expected 94.8", report.OverallScore)
	}
	if report.Grade != "A" {
		t.Errorf("Grade = %q, expected A", report.Grade)
	}
	if report.IssuesPerPage != 0.25 {
		t.Errorf("IssuesPerPage = %v, expected 0.25", report.IssuesPerPage)
	}
}

func TestCalculateHealthFloorsAtZero(t *testing.T) {
	t.Parallel()

	var issues []model.Issue
	for i := 0; i < 50; i++ {
		issues = append(issues, model.Issue{URL: "https://example.com/", Type: "no_https", Severity: model.SeverityHigh})
	}
	report := CalculateHealth(issues, 1)
	if report.OverallScore != 0 {
		t.Errorf("OverallScore = %v, expected floor at 0", report.OverallScore)
	}
	if report.Grade != "F" {
		t.Errorf("Grade = %q, expected F", report.Grade)
	}
	if report.CriticalIssues != 50 {
		t.Errorf("CriticalIssues = %d, expected 50", report.CriticalIssues)
	}
}

func TestCalculateHealthCategoryScores(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		{URL: "https://example.com/", Type: "title_missing", Severity: model.SeverityMedium},
		{URL: "https://example.com/a", Type: "title_missing", Severity: model.SeverityMedium},
		{URL: "https://example.com/", Type: "missing_hsts", Severity: model.SeverityMedium},
	}
	report := CalculateHealth(issues, 10)

	content, ok := report.CategoryScores["content"]
	if !ok {
		t.Fatal("missing content category")
	}
	if content.Count != 2 || content.TotalImpact != 16 || content.AvgImpact != 8 || content.AvgEffort != 2 {
		t.Errorf("content = %+v", content)
	}

	security, ok := report.CategoryScores["security"]
	if !ok {
		t.Fatal("missing security category")
	}
	if security.Count != 1 || security.AvgImpact != 6 || security.AvgEffort != 2 {
		t.Errorf("security = %+v", security)
	}
}

func TestRecommendationsDedupAndCap(t *testing.T) {
	t.Parallel()

	var issues []model.Issue
	// Many occurrences of one type plus a dozen distinct types.
	for i := 0; i < 5; i++ {
		issues = append(issues, model.Issue{URL: "https://example.com/", Type: "title_missing", Severity: model.SeverityMedium})
	}
	distinct := []string{
		"no_https", "missing_viewport", "missing_canonical", "missing_og_tag",
		"no_compression", "orphan_page", "missing_hsts", "missing_csp",
		"thin_content", "broken_link", "missing_favicon", "missing_etag",
	}
	for _, typ := range distinct {
		issues = append(issues, model.Issue{URL: "https://example.com/", Type: typ, Severity: model.SeverityMedium})
	}

	report := CalculateHealth(issues, 10)
	if len(report.Recommendations) != 10 {
		t.Fatalf("len(Recommendations) = %d, expected cap of 10", len(report.Recommendations))
	}
	seen := make(map[string]bool)
	for _, rec := range report.Recommendations {
		if seen[rec.IssueType] {
			t.Errorf("duplicate recommendation for %q", rec.IssueType)
		}
		seen[rec.IssueType] = true
	}
	for i := 1; i < len(report.Recommendations); i++ {
		if report.Recommendations[i].Priority > report.Recommendations[i-1].Priority {
			t.Errorf("recommendations not sorted by priority at %d", i)
		}
	}
}
