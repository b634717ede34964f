package model

import "testing"

func TestSeverityRank(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		severity Severity
		expected int
	}{
		{name: "high ranks highest", severity: SeverityHigh, expected: 3},
		{name: "medium", severity: SeverityMedium, expected: 2},
		{name: "low", severity: SeverityLow, expected: 1},
		{name: "info ranks lowest", severity: SeverityInfo, expected: 0},
		{name: "unknown ranks below info", severity: Severity("bogus"), expected: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.severity.Rank(); got != tc.expected {
				t.Errorf("Rank() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestSeverityIsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo} {
		if !s.IsValid() {
			t.Errorf("IsValid() = false for %q, expected true", s)
		}
	}
	if Severity("critical").IsValid() {
		t.Error("IsValid() = true for unknown severity, expected false")
	}
}

func TestNewIssueDetail(t *testing.T) {
	t.Parallel()

	issue := NewIssueDetail("https://example.com/", "title_too_long", SeverityLow, "72 chars")
	if issue.URL != "https://example.com/" {
		t.Errorf("URL = %q", issue.URL)
	}
	if issue.Type != "title_too_long" {
		t.Errorf("Type = %q", issue.Type)
	}
	if issue.Severity != SeverityLow {
		t.Errorf("Severity = %q", issue.Severity)
	}
	if issue.Detail != "72 chars" {
		t.Errorf("Detail = %q", issue.Detail)
	}
}
