package checks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// IndexabilityChecker validates how a page presents itself to search
// engine crawlers: canonical tags, robots meta directives, bot-specific
// overrides, and pagination links.
type IndexabilityChecker struct{}

// NewIndexabilityChecker creates the indexability checker.
func NewIndexabilityChecker() *IndexabilityChecker {
	return &IndexabilityChecker{}
}

// Name implements Checker.
func (c *IndexabilityChecker) Name() string {
	return "indexability"
}

// Check implements Checker.
func (c *IndexabilityChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	var issues []model.Issue
	issues = append(issues, c.checkCanonical(data)...)
	issues = append(issues, c.checkRobotsMeta(data)...)
	issues = append(issues, c.checkGooglebot(data)...)
	issues = append(issues, c.checkPagination(data)...)
	return issues, nil
}

// checkCanonical validates the canonical link element.
func (c *IndexabilityChecker) checkCanonical(data *PageData) []model.Issue {
	pageURL := data.Page.URL
	canonicals := data.Doc.Canonicals

	switch {
	case len(canonicals) == 0:
		return []model.Issue{model.NewIssueDetail(pageURL, "missing_canonical", model.SeverityMedium,
			"No canonical tag found. This can cause duplicate content issues.")}
	case len(canonicals) > 1:
		return []model.Issue{model.NewIssueDetail(pageURL, "multiple_canonical_tags", model.SeverityHigh,
			fmt.Sprintf("Multiple canonical tags found (%d). Only one canonical tag should be present.", len(canonicals)))}
	}

	href := canonicals[0]
	if href == "" {
		return []model.Issue{model.NewIssueDetail(pageURL, "empty_canonical", model.SeverityHigh,
			"Canonical tag is empty")}
	}

	var issues []model.Issue
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		issues = append(issues, model.NewIssueDetail(pageURL, "canonical_not_absolute", model.SeverityMedium,
			"Canonical URL should be absolute (include full URL)"))
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return issues
	}
	ref, err := url.Parse(href)
	if err != nil {
		return issues
	}
	canonical := base.ResolveReference(ref)

	if strings.TrimRight(pageURL, "/") != strings.TrimRight(canonical.String(), "/") {
		issues = append(issues, model.NewIssueDetail(pageURL, "canonical_points_elsewhere", model.SeverityInfo,
			fmt.Sprintf("Canonical points to different URL: %s", canonical)))
	}

	if base.Scheme == "https" && canonical.Scheme == "http" {
		issues = append(issues, model.NewIssueDetail(pageURL, "canonical_http_on_https", model.SeverityHigh,
			"HTTPS page has HTTP canonical - this can cause indexing issues"))
	}

	return issues
}

// checkRobotsMeta validates robots meta tag directives.
func (c *IndexabilityChecker) checkRobotsMeta(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL
	tags := data.Doc.RobotsMetas

	if len(tags) > 1 {
		issues = append(issues, model.NewIssueDetail(pageURL, "multiple_robots_meta", model.SeverityMedium,
			fmt.Sprintf("Multiple robots meta tags found (%d)", len(tags))))
	}

	for _, content := range tags {
		directives := splitDirectives(content)
		if len(directives) == 0 {
			continue
		}

		if directives["index"] && directives["noindex"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "conflicting_robots_directives", model.SeverityHigh,
				"Conflicting robots directives: both 'index' and 'noindex'"))
		}
		if directives["follow"] && directives["nofollow"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "conflicting_robots_directives", model.SeverityHigh,
				"Conflicting robots directives: both 'follow' and 'nofollow'"))
		}
		if directives["noindex"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "noindex_directive", model.SeverityInfo,
				"Page has noindex directive - will not be indexed by search engines"))
		}
		if directives["nofollow"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "nofollow_directive", model.SeverityInfo,
				"Page has nofollow directive - links will not be followed"))
		}
		if directives["none"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "robots_none_directive", model.SeverityInfo,
				"Page has 'none' directive (equivalent to noindex, nofollow)"))
		}
		if directives["noarchive"] {
			issues = append(issues, model.NewIssueDetail(pageURL, "noarchive_directive", model.SeverityInfo,
				"Page has noarchive directive - cached copy will not be available"))
		}
	}

	return issues
}

// checkGooglebot flags a googlebot meta tag that blocks indexing when
// the general robots meta does not.
func (c *IndexabilityChecker) checkGooglebot(data *PageData) []model.Issue {
	if len(data.Doc.GooglebotMetas) == 0 || len(data.Doc.RobotsMetas) == 0 {
		return nil
	}

	googlebot := strings.ToLower(data.Doc.GooglebotMetas[0])
	robots := strings.ToLower(data.Doc.RobotsMetas[0])
	if strings.Contains(googlebot, "noindex") && !strings.Contains(robots, "noindex") {
		return []model.Issue{model.NewIssueDetail(data.Page.URL, "googlebot_noindex_mismatch", model.SeverityMedium,
			"Googlebot meta has noindex but general robots meta does not")}
	}
	return nil
}

// checkPagination flags rel=next/prev link elements without an href.
func (c *IndexabilityChecker) checkPagination(data *PageData) []model.Issue {
	var issues []model.Issue
	for _, link := range data.Doc.PaginationLinks {
		if link.Href != "" {
			continue
		}
		switch link.Rel {
		case "next":
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "pagination_next_empty", model.SeverityMedium,
				"rel='next' link has no href attribute"))
		case "prev":
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "pagination_prev_empty", model.SeverityMedium,
				"rel='prev' link has no href attribute"))
		}
	}
	return issues
}

// splitDirectives parses a robots meta content value into a directive
// set, lowercased and trimmed.
func splitDirectives(content string) map[string]bool {
	directives := make(map[string]bool)
	for _, directive := range strings.Split(strings.ToLower(content), ",") {
		if d := strings.TrimSpace(directive); d != "" {
			directives[d] = true
		}
	}
	return directives
}
