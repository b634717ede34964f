// Package robots fetches and interprets robots.txt files and sitemaps.
//
// Parsing is deliberately forgiving: real-world robots.txt files are
// full of typos and vendor extensions, and a malformed file must never
// abort an audit. A missing or unreadable robots.txt simply yields a
// permissive ruleset marked as absent.
package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxRobotsSize caps how much of a robots.txt response is read.
const maxRobotsSize = 512 * 1024

// Line-oriented extraction. Sitemap and Crawl-delay are gathered from
// the whole file regardless of user-agent grouping, which matches how
// most sites intend them.
var (
	sitemapLineRe    = regexp.MustCompile(`(?im)^\s*sitemap:\s*(\S+)\s*$`)
	crawlDelayLineRe = regexp.MustCompile(`(?im)^\s*crawl-delay:\s*(\d+(?:\.\d+)?)`)
)

// Rules holds the crawl-relevant content of a site's robots.txt.
type Rules struct {
	// Exists reports whether a robots.txt was successfully fetched.
	Exists bool

	// Sitemaps contains the Sitemap: URLs listed in the file.
	Sitemaps []string

	// CrawlDelay is the advertised Crawl-delay, zero when absent.
	CrawlDelay time.Duration

	// allows and disallows are the path rules from the wildcard
	// user-agent group, in file order.
	allows    []string
	disallows []string
}

// Parse extracts rules from robots.txt content. Only the rules of the
// wildcard ("*") user-agent group govern CanFetch.
func Parse(content string) *Rules {
	r := &Rules{Exists: true}

	for _, m := range sitemapLineRe.FindAllStringSubmatch(content, -1) {
		r.Sitemaps = append(r.Sitemaps, strings.TrimSpace(m[1]))
	}
	if m := crawlDelayLineRe.FindStringSubmatch(content); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			r.CrawlDelay = time.Duration(secs * float64(time.Second))
		}
	}

	// Group-aware Allow/Disallow scan for the wildcard agent.
	// Consecutive User-agent lines open a group; the group ends at the
	// next User-agent line that follows at least one rule.
	inWildcard := false
	groupOpen := false
	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if !groupOpen {
				inWildcard = false
				groupOpen = true
			}
			if value == "*" {
				inWildcard = true
			}
		case "allow":
			groupOpen = false
			if inWildcard && value != "" {
				r.allows = append(r.allows, value)
			}
		case "disallow":
			groupOpen = false
			if inWildcard && value != "" {
				r.disallows = append(r.disallows, value)
			}
		default:
			groupOpen = false
		}
	}

	return r
}

// CanFetch reports whether the given URL path may be crawled.
// When no robots.txt exists or it contains no rules, everything is
// allowed. Otherwise the longest matching rule wins, with Allow
// breaking ties, per the robots exclusion standard.
func (r *Rules) CanFetch(path string) bool {
	if r == nil || !r.Exists {
		return true
	}
	if path == "" {
		path = "/"
	}

	bestAllow, bestDisallow := -1, -1
	for _, rule := range r.allows {
		if n := ruleMatchLen(rule, path); n > bestAllow {
			bestAllow = n
		}
	}
	for _, rule := range r.disallows {
		if n := ruleMatchLen(rule, path); n > bestDisallow {
			bestDisallow = n
		}
	}

	if bestDisallow < 0 {
		return true
	}
	return bestAllow >= bestDisallow
}

// ruleMatchLen returns the rule's specificity (its length) when it
// matches the path, or -1 when it does not. Rules support the "*"
// wildcard and the "$" end anchor.
func ruleMatchLen(rule, path string) int {
	anchored := strings.HasSuffix(rule, "$")
	if anchored {
		rule = strings.TrimSuffix(rule, "$")
	}

	parts := strings.Split(rule, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx < 0 {
			return -1
		}
		// The first literal must match at the start of the path.
		if i == 0 && idx != 0 {
			return -1
		}
		pos += idx + len(part)
	}

	if anchored && pos != len(path) {
		return -1
	}
	return len(rule)
}

// Client fetches robots.txt files.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a robots.txt client. A nil logger falls back to
// slog.Default().
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: httpClient, logger: logger}
}

// Fetch retrieves and parses {siteRoot}/robots.txt. Any failure (HTTP
// error, non-200 status, unreadable body) yields a permissive ruleset
// with Exists=false; robots problems never abort an audit.
func (c *Client) Fetch(ctx context.Context, siteRoot string) *Rules {
	robotsURL := strings.TrimSuffix(siteRoot, "/") + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		c.logger.Debug("robots.txt request build failed", "url", robotsURL, "error", err)
		return &Rules{}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err)
		return &Rules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Rules{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		c.logger.Debug("robots.txt read failed", "url", robotsURL, "error", err)
		return &Rules{}
	}

	return Parse(string(body))
}
