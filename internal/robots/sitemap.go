package robots

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultMaxIndexDepth bounds recursion through nested sitemap indexes.
const DefaultMaxIndexDepth = 2

// maxSitemapSize caps how much of a sitemap response is read.
const maxSitemapSize = 16 * 1024 * 1024

// ErrInvalidSitemap is returned when a document's root element is
// neither <urlset> nor <sitemapindex>.
var ErrInvalidSitemap = errors.New("not a sitemap document")

// commonLocations are probed when robots.txt lists no sitemaps.
var commonLocations = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
}

// Entry is a single <url> record from a sitemap, with priority and
// changefreq kept raw so validation can inspect malformed values.
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap is a parsed sitemap or sitemap index document.
type Sitemap struct {
	// IsIndex reports whether the document is a <sitemapindex>.
	IsIndex bool

	// Children contains child sitemap locations when IsIndex is true.
	Children []string

	// Entries contains the <url> records when IsIndex is false.
	Entries []Entry
}

// ParseSitemap parses sitemap XML, accepting both <urlset> and
// <sitemapindex> documents.
func ParseSitemap(content string) (*Sitemap, error) {
	type childSitemap struct {
		Loc string `xml:"loc"`
	}
	type document struct {
		XMLName  xml.Name
		Sitemaps []childSitemap `xml:"sitemap"`
		URLs     []Entry        `xml:"url"`
	}

	var doc document
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}

	switch doc.XMLName.Local {
	case "sitemapindex":
		sm := &Sitemap{IsIndex: true}
		for _, child := range doc.Sitemaps {
			if loc := strings.TrimSpace(child.Loc); loc != "" {
				sm.Children = append(sm.Children, loc)
			}
		}
		return sm, nil
	case "urlset":
		sm := &Sitemap{}
		for _, entry := range doc.URLs {
			entry.Loc = strings.TrimSpace(entry.Loc)
			sm.Entries = append(sm.Entries, entry)
		}
		return sm, nil
	default:
		return nil, ErrInvalidSitemap
	}
}

// FetchedSitemap pairs a sitemap location with its raw content and
// parse outcome, for downstream validation.
type FetchedSitemap struct {
	// Loc is the sitemap URL.
	Loc string

	// Content is the raw XML body.
	Content string

	// Parsed is the parse result, nil when parsing failed.
	Parsed *Sitemap
}

// Discovery is the outcome of sitemap discovery for a site.
type Discovery struct {
	// Sitemaps contains every sitemap document fetched, including
	// index documents, in discovery order.
	Sitemaps []FetchedSitemap

	// PageURLs contains the page locations gathered from all url sets,
	// deduplicated, in discovery order.
	PageURLs []string
}

// Discoverer locates and expands a site's sitemaps.
type Discoverer struct {
	httpClient *http.Client
	logger     *slog.Logger

	// MaxDepth bounds recursion through sitemap indexes. Depth 0 is
	// the initially discovered sitemap.
	MaxDepth int
}

// NewDiscoverer creates a sitemap discoverer.
func NewDiscoverer(httpClient *http.Client, logger *slog.Logger, maxDepth int) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIndexDepth
	}
	return &Discoverer{httpClient: httpClient, logger: logger, MaxDepth: maxDepth}
}

// Discover finds the site's sitemaps, preferring locations advertised
// in robots.txt and falling back to well-known paths. Index documents
// are expanded recursively up to MaxDepth.
func (d *Discoverer) Discover(ctx context.Context, siteRoot string, rules *Rules) *Discovery {
	root := strings.TrimSuffix(siteRoot, "/")

	locations := []string{}
	if rules != nil {
		locations = append(locations, rules.Sitemaps...)
	}
	if len(locations) == 0 {
		for _, path := range commonLocations {
			locations = append(locations, root+path)
		}
	}

	disc := &Discovery{}
	processed := make(map[string]bool)
	seenPages := make(map[string]bool)
	for _, loc := range locations {
		d.expand(ctx, loc, 0, processed, seenPages, disc)
	}
	return disc
}

// expand fetches one sitemap and recurses into index children.
func (d *Discoverer) expand(ctx context.Context, loc string, depth int, processed, seenPages map[string]bool, disc *Discovery) {
	if depth > d.MaxDepth || processed[loc] {
		return
	}
	processed[loc] = true

	content, ok := d.fetch(ctx, loc)
	if !ok {
		return
	}

	parsed, err := ParseSitemap(content)
	if err != nil {
		d.logger.Debug("sitemap parse failed", "url", loc, "error", err)
		disc.Sitemaps = append(disc.Sitemaps, FetchedSitemap{Loc: loc, Content: content})
		return
	}
	disc.Sitemaps = append(disc.Sitemaps, FetchedSitemap{Loc: loc, Content: content, Parsed: parsed})

	if parsed.IsIndex {
		for _, child := range parsed.Children {
			d.expand(ctx, child, depth+1, processed, seenPages, disc)
		}
		return
	}
	for _, entry := range parsed.Entries {
		if entry.Loc != "" && !seenPages[entry.Loc] {
			seenPages[entry.Loc] = true
			disc.PageURLs = append(disc.PageURLs, entry.Loc)
		}
	}
}

// fetch retrieves sitemap content, returning ok=false on any failure.
func (d *Discoverer) fetch(ctx context.Context, loc string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return "", false
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Debug("sitemap fetch failed", "url", loc, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapSize))
	if err != nil {
		return "", false
	}
	return string(body), true
}
