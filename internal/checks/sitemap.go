package checks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/robots"
)

// Sitemap validation limits.
const (
	// maxSitemapURLs is the protocol limit per sitemap document.
	maxSitemapURLs = 50000

	// sitemapSampleSize caps per-entry validation on huge sitemaps.
	sitemapSampleSize = 100
)

// validChangeFreqs are the changefreq values the sitemap protocol allows.
var validChangeFreqs = map[string]bool{
	"always":  true,
	"hourly":  true,
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
	"never":   true,
}

// ValidateSitemap checks one fetched sitemap document: root element,
// URL count, and a sample of entries (loc presence, absolute URLs,
// embedded spaces, priority range, changefreq values). Index documents
// carry no URL entries and only get the root element check.
func ValidateSitemap(sm robots.FetchedSitemap) []model.Issue {
	if sm.Parsed == nil {
		return []model.Issue{model.NewIssueDetail(sm.Loc, "invalid_sitemap_format", model.SeverityHigh,
			"Sitemap does not have valid urlset or sitemapindex root element")}
	}
	if sm.Parsed.IsIndex {
		return nil
	}

	var issues []model.Issue
	entries := sm.Parsed.Entries

	if len(entries) > maxSitemapURLs {
		issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_too_many_urls", model.SeverityHigh,
			fmt.Sprintf("Sitemap contains %d URLs (max 50,000 recommended)", len(entries))))
	}

	sample := entries
	if len(sample) > sitemapSampleSize {
		sample = sample[:sitemapSampleSize]
	}

	for _, entry := range sample {
		if entry.Loc == "" {
			issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_url_missing_loc", model.SeverityHigh,
				"Sitemap URL entry missing <loc> element"))
			continue
		}

		if !strings.HasPrefix(entry.Loc, "http://") && !strings.HasPrefix(entry.Loc, "https://") {
			issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_relative_url", model.SeverityHigh,
				fmt.Sprintf("Sitemap contains relative URL: %s", entry.Loc)))
		}
		if strings.Contains(entry.Loc, " ") {
			issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_url_has_spaces", model.SeverityHigh,
				fmt.Sprintf("Sitemap URL contains spaces: %s", entry.Loc)))
		}

		if entry.Priority != "" {
			priority, err := strconv.ParseFloat(entry.Priority, 64)
			switch {
			case err != nil:
				issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_invalid_priority", model.SeverityMedium,
					fmt.Sprintf("Invalid priority value: %s", entry.Priority)))
			case priority < 0 || priority > 1:
				issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_invalid_priority", model.SeverityMedium,
					fmt.Sprintf("Priority must be between 0.0 and 1.0, got %g", priority)))
			}
		}

		if entry.ChangeFreq != "" && !validChangeFreqs[strings.ToLower(entry.ChangeFreq)] {
			issues = append(issues, model.NewIssueDetail(sm.Loc, "sitemap_invalid_changefreq", model.SeverityLow,
				fmt.Sprintf("Invalid changefreq value: %s", entry.ChangeFreq)))
		}
	}

	return issues
}
