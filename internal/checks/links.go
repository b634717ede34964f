package checks

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/nao1215/seoscan/internal/model"
)

// Link structure thresholds.
const (
	// maxLinkDepth is how many clicks from the homepage a page may be.
	maxLinkDepth = 3

	// orphanSampleSize and deepPageSampleSize cap how many offenders
	// each site-wide link issue reports.
	orphanSampleSize   = 10
	deepPageSampleSize = 10

	// defaultTopPages is how many hubs/authorities PageRankings return.
	defaultTopPages = 10
)

// genericAnchorTexts carry no ranking signal.
var genericAnchorTexts = map[string]bool{
	"click here": true,
	"read more":  true,
	"learn more": true,
	"here":       true,
	"this":       true,
	"link":       true,
	"more":       true,
}

// LinkGraph models the internal link structure of a crawled site.
// Insertion order is preserved so analysis output is deterministic.
type LinkGraph struct {
	nodes     []string
	nodeSet   map[string]bool
	edges     map[string]map[string]bool
	backlinks map[string]map[string]bool
	anchors   map[[2]string][]string
}

// NewLinkGraph creates an empty link graph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		nodeSet:   make(map[string]bool),
		edges:     make(map[string]map[string]bool),
		backlinks: make(map[string]map[string]bool),
		anchors:   make(map[[2]string][]string),
	}
}

// AddPage registers a page as a graph node.
func (g *LinkGraph) AddPage(pageURL string) {
	if !g.nodeSet[pageURL] {
		g.nodeSet[pageURL] = true
		g.nodes = append(g.nodes, pageURL)
	}
}

// AddLink records a link between two pages, with optional anchor text.
func (g *LinkGraph) AddLink(source, target, anchorText string) {
	g.AddPage(source)
	g.AddPage(target)

	if g.edges[source] == nil {
		g.edges[source] = make(map[string]bool)
	}
	g.edges[source][target] = true

	if g.backlinks[target] == nil {
		g.backlinks[target] = make(map[string]bool)
	}
	g.backlinks[target][source] = true

	if anchorText != "" {
		key := [2]string{source, target}
		g.anchors[key] = append(g.anchors[key], anchorText)
	}
}

// OrphanPages returns pages no other page links to, in insertion
// order. The crawl entry point is usually among them.
func (g *LinkGraph) OrphanPages() []string {
	var orphans []string
	for _, node := range g.nodes {
		if len(g.backlinks[node]) == 0 {
			orphans = append(orphans, node)
		}
	}
	return orphans
}

// PageDepths computes each reachable page's click depth from start
// via BFS. Unreachable pages are absent from the result.
func (g *LinkGraph) PageDepths(start string) map[string]int {
	depths := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for target := range g.edges[current] {
			if _, visited := depths[target]; !visited {
				depths[target] = depths[current] + 1
				queue = append(queue, target)
			}
		}
	}
	return depths
}

// PagesBeyondDepth returns the pages more than maxDepth clicks from
// start, in insertion order.
func (g *LinkGraph) PagesBeyondDepth(start string, maxDepth int) []string {
	depths := g.PageDepths(start)
	var deep []string
	for _, node := range g.nodes {
		if depth, ok := depths[node]; ok && depth > maxDepth {
			deep = append(deep, node)
		}
	}
	return deep
}

// PageRank pairs a page with a link count.
type PageRank struct {
	URL   string
	Count int
}

// HubPages returns the top pages by outbound link count.
func (g *LinkGraph) HubPages(top int) []PageRank {
	return g.ranked(top, func(node string) int { return len(g.edges[node]) })
}

// AuthorityPages returns the top pages by inbound link count.
func (g *LinkGraph) AuthorityPages(top int) []PageRank {
	return g.ranked(top, func(node string) int { return len(g.backlinks[node]) })
}

// ranked sorts nodes by a count, descending, insertion order breaking
// ties.
func (g *LinkGraph) ranked(top int, count func(string) int) []PageRank {
	ranks := make([]PageRank, 0, len(g.nodes))
	for _, node := range g.nodes {
		ranks = append(ranks, PageRank{URL: node, Count: count(node)})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Count > ranks[j].Count
	})
	if top > 0 && len(ranks) > top {
		ranks = ranks[:top]
	}
	return ranks
}

// PageMetrics summarizes one page's position in the link graph.
type PageMetrics struct {
	OutboundLinks     int
	InboundLinks      int
	UniqueAnchorTexts int
}

// Metrics returns the link metrics for a page.
func (g *LinkGraph) Metrics(pageURL string) PageMetrics {
	unique := make(map[string]bool)
	for key, texts := range g.anchors {
		if key[1] != pageURL {
			continue
		}
		for _, text := range texts {
			unique[text] = true
		}
	}
	return PageMetrics{
		OutboundLinks:     len(g.edges[pageURL]),
		InboundLinks:      len(g.backlinks[pageURL]),
		UniqueAnchorTexts: len(unique),
	}
}

// BuildLinkGraph constructs the site link graph from crawled pages.
func BuildLinkGraph(pages []*model.Page) *LinkGraph {
	graph := NewLinkGraph()
	for _, page := range pages {
		graph.AddPage(page.URL)
		for _, link := range page.Links {
			graph.AddLink(page.URL, link, "")
		}
	}
	return graph
}

// AnalyzeInternalLinks reports site-wide link structure issues: orphan
// pages (only when more than one exists, since the entry point is
// always unlinked) and pages buried too deep, each sampled.
func AnalyzeInternalLinks(pages []*model.Page) []model.Issue {
	if len(pages) == 0 {
		return nil
	}
	graph := BuildLinkGraph(pages)

	var issues []model.Issue

	orphans := graph.OrphanPages()
	if len(orphans) > 1 {
		for _, orphan := range sampleStrings(orphans, orphanSampleSize) {
			issues = append(issues, model.NewIssueDetail(orphan, "orphan_page", model.SeverityMedium,
				"Page has no internal links pointing to it (orphan page)"))
		}
	}

	deep := graph.PagesBeyondDepth(pages[0].URL, maxLinkDepth)
	for _, page := range sampleStrings(deep, deepPageSampleSize) {
		issues = append(issues, model.NewIssueDetail(page, "page_too_deep", model.SeverityLow,
			"Page is more than 3 clicks from homepage"))
	}

	return issues
}

// AnchorChecker validates anchor texts and link attributes on a page.
type AnchorChecker struct {
	siteRoot string
}

// NewAnchorChecker creates the anchor checker. siteRoot marks which
// targets count as internal.
func NewAnchorChecker(siteRoot string) *AnchorChecker {
	return &AnchorChecker{siteRoot: strings.TrimSuffix(siteRoot, "/")}
}

// Name implements Checker.
func (c *AnchorChecker) Name() string {
	return "anchors"
}

// Check implements Checker.
func (c *AnchorChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	base, err := url.Parse(data.Page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var issues []model.Issue
	for _, anchor := range data.Doc.Anchors {
		href := strings.TrimSpace(anchor.Href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		target := base.ResolveReference(ref).String()

		text := strings.TrimSpace(anchor.Text)
		if text == "" {
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "empty_anchor_text", model.SeverityLow,
				fmt.Sprintf("Link to %s has no anchor text", target)))
		}
		if genericAnchorTexts[strings.ToLower(text)] {
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "generic_anchor_text", model.SeverityLow,
				fmt.Sprintf("Generic anchor text '%s' on link to %s", text, target)))
		}
		if len([]rune(text)) > 3 && isAllCaps(text) {
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "anchor_text_all_caps", model.SeverityInfo,
				fmt.Sprintf("Anchor text is all caps: '%s'", text)))
		}

		external := !strings.HasPrefix(target, c.siteRoot)
		if external && anchor.Target == "_blank" && !strings.Contains(anchor.Rel, "noopener") {
			issues = append(issues, model.NewIssueDetail(data.Page.URL, "external_link_missing_noopener", model.SeverityMedium,
				fmt.Sprintf("External link with target='_blank' should have rel='noopener': %s", target)))
		}
	}
	return issues, nil
}

// isAllCaps reports whether s contains at least one letter and no
// lowercase letters.
func isAllCaps(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// sampleStrings returns at most limit elements from values.
func sampleStrings(values []string, limit int) []string {
	if len(values) > limit {
		return values[:limit]
	}
	return values
}
