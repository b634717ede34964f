package checks

import (
	"context"
	"testing"
)

const completeMetaPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Complete</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Complete">
<meta property="og:type" content="website">
<meta property="og:image" content="https://example.com/cover.png">
<meta property="og:image:width" content="1200">
<meta property="og:image:height" content="630">
<meta property="og:url" content="https://example.com/">
<meta property="og:description" content="All the tags.">
<meta property="og:site_name" content="Example">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="Complete">
<meta name="twitter:description" content="All the tags.">
<meta name="twitter:image" content="https://example.com/cover.png">
<meta name="twitter:site" content="@example">
<link rel="icon" href="/favicon.ico">
<link rel="apple-touch-icon" href="/apple-touch-icon.png">
<link rel="alternate" hreflang="en" href="https://example.com/">
<link rel="alternate" hreflang="x-default" href="https://example.com/">
</head>
<body></body>
</html>`

func TestMetaCheckerCompletePage(t *testing.T) {
	t.Parallel()

	data := newPageData(t, "https://example.com/", completeMetaPage, nil)
	issues, err := NewMetaChecker().Check(context.Background(), data)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v, expected none for a complete page", issues)
	}
}

func TestMetaCheckerBarePage(t *testing.T) {
	t.Parallel()

	data := newPageData(t, "https://example.com/", `<html><head><title>Bare</title></head></html>`, nil)
	issues, err := NewMetaChecker().Check(context.Background(), data)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	expected := []string{
		"missing_charset", "missing_og_tag", "missing_recommended_og_tag",
		"missing_twitter_card", "missing_twitter_site",
		"missing_favicon", "missing_apple_touch_icon",
		"missing_html_lang", "missing_viewport",
	}
	for _, issueType := range expected {
		if !hasIssue(issues, issueType) {
			t.Errorf("missing expected issue %q in %v", issueType, issues)
		}
	}
	if got := countIssues(issues, "missing_og_tag"); got != 4 {
		t.Errorf("missing_og_tag count = %d, expected one per required tag", got)
	}
	if got := countIssues(issues, "missing_recommended_og_tag"); got != 2 {
		t.Errorf("missing_recommended_og_tag count = %d, expected 2", got)
	}
}

func TestMetaCheckerOpenGraphImage(t *testing.T) {
	t.Parallel()

	html := `<html><head>
<meta property="og:image" content="/relative/cover.png">
</head></html>`
	data := newPageData(t, "https://example.com/", html, nil)
	issues, err := NewMetaChecker().Check(context.Background(), data)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if !hasIssue(issues, "og_image_not_absolute") {
		t.Errorf("missing og_image_not_absolute in %v", issues)
	}
	if !hasIssue(issues, "missing_og_image_dimensions") {
		t.Errorf("missing missing_og_image_dimensions in %v", issues)
	}
}

func TestMetaCheckerTwitterCards(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		html     string
		expected []string
		absent   []string
	}{
		{
			name:     "invalid card type",
			html:     `<html><head><meta name="twitter:card" content="gallery"></head></html>`,
			expected: []string{"invalid_twitter_card_type"},
			absent:   []string{"missing_twitter_card"},
		},
		{
			name:     "summary missing fallbacks",
			html:     `<html><head><meta name="twitter:card" content="summary"></head></html>`,
			expected: []string{"missing_twitter_title", "missing_twitter_description"},
			absent:   []string{"missing_twitter_image", "invalid_twitter_card_type"},
		},
		{
			name:     "large image card without image",
			html:     `<html><head><meta name="twitter:card" content="summary_large_image"></head></html>`,
			expected: []string{"missing_twitter_image"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := newPageData(t, "https://example.com/", tc.html, nil)
			issues, err := NewMetaChecker().Check(context.Background(), data)
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

func TestMetaCheckerLanguage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		html     string
		expected []string
		absent   []string
	}{
		{
			name:   "valid language tag",
			html:   `<html lang="en-US"><head></head></html>`,
			absent: []string{"missing_html_lang", "invalid_html_lang"},
		},
		{
			name:     "malformed language tag",
			html:     `<html lang="!invalid!"><head></head></html>`,
			expected: []string{"invalid_html_lang"},
			absent:   []string{"missing_html_lang"},
		},
		{
			name: "hreflang without x-default",
			html: `<html lang="en"><head>
<link rel="alternate" hreflang="en" href="https://example.com/">
<link rel="alternate" hreflang="de" href="https://example.com/de/">
</head></html>`,
			expected: []string{"missing_hreflang_x_default"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := newPageData(t, "https://example.com/", tc.html, nil)
			issues, err := NewMetaChecker().Check(context.Background(), data)
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

func TestMetaCheckerViewport(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		html     string
		expected []string
		absent   []string
	}{
		{
			name:     "missing viewport",
			html:     `<html><head></head></html>`,
			expected: []string{"missing_viewport"},
			absent:   []string{"viewport_missing_device_width", "viewport_missing_initial_scale"},
		},
		{
			name:     "fixed width viewport",
			html:     `<html><head><meta name="viewport" content="width=1024"></head></html>`,
			expected: []string{"viewport_missing_device_width", "viewport_missing_initial_scale"},
			absent:   []string{"missing_viewport"},
		},
		{
			name:   "recommended viewport",
			html:   `<html><head><meta name="viewport" content="width=device-width, initial-scale=1"></head></html>`,
			absent: []string{"missing_viewport", "viewport_missing_device_width", "viewport_missing_initial_scale"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data := newPageData(t, "https://example.com/", tc.html, nil)
			issues, err := NewMetaChecker().Check(context.Background(), data)
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
