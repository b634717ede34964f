package checks

import (
	"context"
	"strings"
	"testing"
)

func TestIndexabilityCheckerCanonical(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pageURL  string
		html     string
		expected []string
		absent   []string
	}{
		{
			name:     "missing canonical",
			pageURL:  "https://example.com/page",
			html:     `<html><head></head></html>`,
			expected: []string{"missing_canonical"},
		},
		{
			name:    "multiple canonicals",
			pageURL: "https://example.com/page",
			html: `<html><head>
<link rel="canonical" href="https://example.com/page">
<link rel="canonical" href="https://example.com/other">
</head></html>`,
			expected: []string{"multiple_canonical_tags"},
			absent:   []string{"missing_canonical", "canonical_points_elsewhere"},
		},
		{
			name:     "empty canonical",
			pageURL:  "https://example.com/page",
			html:     `<html><head><link rel="canonical" href=""></head></html>`,
			expected: []string{"empty_canonical"},
		},
		{
			name:     "relative self canonical",
			pageURL:  "https://example.com/page",
			html:     `<html><head><link rel="canonical" href="/page"></head></html>`,
			expected: []string{"canonical_not_absolute"},
			absent:   []string{"canonical_points_elsewhere"},
		},
		{
			name:     "canonical points elsewhere",
			pageURL:  "https://example.com/page",
			html:     `<html><head><link rel="canonical" href="https://example.com/other"></head></html>`,
			expected: []string{"canonical_points_elsewhere"},
			absent:   []string{"canonical_not_absolute", "canonical_http_on_https"},
		},
		{
			name:     "http canonical on https page",
			pageURL:  "https://example.com/page",
			html:     `<html><head><link rel="canonical" href="http://example.com/page"></head></html>`,
			expected: []string{"canonical_http_on_https", "canonical_points_elsewhere"},
		},
		{
			name:    "self canonical with trailing slash",
			pageURL: "https://example.com/page",
			html:    `<html><head><link rel="canonical" href="https://example.com/page/"></head></html>`,
			absent: []string{
				"missing_canonical", "multiple_canonical_tags", "empty_canonical",
				"canonical_not_absolute", "canonical_points_elsewhere", "canonical_http_on_https",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := newPageData(t, tc.pageURL, tc.html, nil)
			issues, err := NewIndexabilityChecker().Check(context.Background(), data)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}

			for _, issueType := range tc.expected {
				if !hasIssue(issues, issueType) {
					t.Errorf("missing expected issue %q in %v", issueType, issues)
				}
			}
			for _, issueType := range tc.absent {
				if hasIssue(issues, issueType) {
					t.Errorf("unexpected issue %q in %v", issueType, issues)
				}
			}
		})
	}
}

func TestIndexabilityCheckerRobotsMeta(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		html     string
		expected []string
		absent   []string
	}{
		{
			name:     "conflicting index directives",
			html:     `<html><head><meta name="robots" content="index, noindex"></head></html>`,
			expected: []string{"conflicting_robots_directives", "noindex_directive"},
		},
		{
			name:     "noindex nofollow",
			html:     `<html><head><meta name="robots" content="noindex, nofollow"></head></html>`,
			expected: []string{"noindex_directive", "nofollow_directive"},
			absent:   []string{"conflicting_robots_directives"},
		},
		{
			name: "multiple robots tags",
			html: `<html><head>
<meta name="robots" content="index">
<meta name="robots" content="follow">
</head></html>`,
			expected: []string{"multiple_robots_meta"},
		},
		{
			name:     "none and noarchive",
			html:     `<html><head><meta name="robots" content="none, noarchive"></head></html>`,
			expected: []string{"robots_none_directive", "noarchive_directive"},
		},
		{
			name: "googlebot noindex mismatch",
			html: `<html><head>
<meta name="robots" content="index, follow">
<meta name="googlebot" content="noindex">
</head></html>`,
			expected: []string{"googlebot_noindex_mismatch"},
		},
		{
			name: "googlebot agrees with robots",
			html: `<html><head>
<meta name="robots" content="noindex">
<meta name="googlebot" content="noindex">
</head></html>`,
			absent: []string{"googlebot_noindex_mismatch"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := newPageData(t, "https://example.com/", tc.html, nil)
			issues, err := NewIndexabilityChecker().Check(context.Background(), data)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}

			for _, issueType := range tc.expected {
				if !hasIssue(issues, issueType) {
					t.Errorf("missing expected issue %q in %v", issueType, issues)
				}
			}
			for _, issueType := range tc.absent {
				if hasIssue(issues, issueType) {
					t.Errorf("unexpected issue %q in %v", issueType, issues)
				}
			}
		})
	}
}

func TestIndexabilityCheckerPagination(t *testing.T) {
	t.Parallel()

	html := `<html><head>
<link rel="next">
<link rel="prev" href="/page1">
</head></html>`
	data := newPageData(t, "https://example.com/page2", html, nil)
	issues, err := NewIndexabilityChecker().Check(context.Background(), data)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if !hasIssue(issues, "pagination_next_empty") {
		t.Errorf("missing pagination_next_empty in %v", issues)
	}
	if hasIssue(issues, "pagination_prev_empty") {
		t.Errorf("unexpected pagination_prev_empty in %v", issues)
	}

	issue := findIssue(t, issues, "pagination_next_empty")
	if !strings.Contains(issue.Detail, "rel='next'") {
		t.Errorf("Detail = %q", issue.Detail)
	}
}
