package checks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// maxRedirectHops bounds manual redirect chain following.
const maxRedirectHops = 10

// redirectStatuses are the HTTP statuses that start a hop.
var redirectStatuses = map[int]bool{
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
	http.StatusPermanentRedirect: true,
}

// CheckRedirectChain follows redirects from startURL by hand, one hop
// at a time, and reports chains, loops, missing Location headers, and
// temporary redirects that look permanent. Transport errors end the
// walk silently; partial findings are still returned.
func CheckRedirectChain(ctx context.Context, client *http.Client, startURL string) []model.Issue {
	// Shallow copy so redirects can be observed hop by hop without
	// changing the shared client.
	noFollow := *client
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	var issues []model.Issue
	var chain []string
	var statuses []int
	current := startURL
	hops := 0

	for hops < maxRedirectHops {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			break
		}
		resp, err := noFollow.Do(req)
		if err != nil {
			break
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		chain = append(chain, current)
		statuses = append(statuses, resp.StatusCode)

		if !redirectStatuses[resp.StatusCode] {
			break
		}
		hops++

		location := resp.Header.Get("Location")
		if location == "" {
			issues = append(issues, model.NewIssueDetail(startURL, "redirect_missing_location", model.SeverityHigh,
				fmt.Sprintf("Redirect (%d) without Location header", resp.StatusCode)))
			break
		}

		next := resolveLocation(current, location)
		if containsString(chain, next) {
			issues = append(issues, model.NewIssueDetail(startURL, "redirect_loop", model.SeverityHigh,
				fmt.Sprintf("Redirect loop detected: %s", strings.Join(chain, " -> "))))
			break
		}
		current = next
	}

	if hops > 1 {
		issues = append(issues, model.NewIssueDetail(startURL, "redirect_chain", model.SeverityMedium,
			fmt.Sprintf("Redirect chain of %d hops detected", hops)))
	}
	if hops > 0 && (statuses[0] == http.StatusFound || statuses[0] == http.StatusTemporaryRedirect) {
		issues = append(issues, model.NewIssueDetail(startURL, "temporary_redirect", model.SeverityInfo,
			fmt.Sprintf("Using temporary redirect (%d). Consider 301 for permanent moves.", statuses[0])))
	}

	return issues
}

// resolveLocation makes a Location header value absolute against the
// redirecting URL.
func resolveLocation(current, location string) string {
	base, err := url.Parse(current)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
