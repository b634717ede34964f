package checks

import (
	"context"
	"io"
	"net/http"

	"github.com/nao1215/seoscan/internal/model"
)

// brokenLinkSampleSize caps how many internal links per page are
// probed for broken status.
const brokenLinkSampleSize = 10

// BrokenLinkChecker probes a sample of each page's internal links with
// HEAD requests and reports targets that fail or answer 4xx/5xx.
// Probes are not rate limited, and every link is probed at most once
// per audit.
type BrokenLinkChecker struct {
	client *http.Client
	probed map[string]bool
}

// NewBrokenLinkChecker creates a broken-link checker using the given
// client.
func NewBrokenLinkChecker(client *http.Client) *BrokenLinkChecker {
	return &BrokenLinkChecker{
		client: client,
		probed: make(map[string]bool),
	}
}

// Check probes up to brokenLinkSampleSize not-yet-probed links and
// reports the broken ones against pageURL, the link target in the
// detail.
func (c *BrokenLinkChecker) Check(ctx context.Context, pageURL string, links []string) []model.Issue {
	var issues []model.Issue
	count := 0
	for _, link := range links {
		if count >= brokenLinkSampleSize || ctx.Err() != nil {
			break
		}
		if c.probed[link] {
			continue
		}
		c.probed[link] = true
		count++

		if c.isBroken(ctx, link) {
			issues = append(issues, model.NewIssueDetail(pageURL, "broken_link", model.SeverityMedium, link))
		}
	}
	return issues
}

// isBroken reports whether a HEAD request to link fails or returns an
// error status. Redirects are followed by the shared client.
func (c *BrokenLinkChecker) isBroken(ctx context.Context, link string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return true
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return true
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode >= 400
}
