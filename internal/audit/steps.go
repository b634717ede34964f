package audit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/seoscan/internal/checks"
	"github.com/nao1215/seoscan/internal/crawler"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/robots"
	"github.com/nao1215/seoscan/internal/scoring"
	"github.com/nao1215/seoscan/internal/urlutil"
)

// robotsStep fetches robots.txt, records its findings, and applies the
// advertised crawl delay to the rate limiter.
type robotsStep struct {
	auditor *Auditor
}

// Name implements step.
func (st *robotsStep) Name() string { return "robots" }

// Do implements step.
func (st *robotsStep) Do(ctx context.Context, s *session) error {
	a := st.auditor
	client := robots.NewClient(a.fetcher.Client(), a.logger)
	s.rules = client.Fetch(ctx, s.root)

	s.result.SetMeta("robots_txt_exists", s.rules.Exists)
	s.result.SetMeta("crawl_delay", s.rules.CrawlDelay.Seconds())

	if !s.rules.Exists {
		s.result.AddIssue(model.NewIssueDetail(s.root+"/robots.txt", "robots_missing", model.SeverityLow,
			"No robots.txt found"))
		return nil
	}
	if s.rules.CrawlDelay > 0 {
		a.limiter.SetCrawlDelay(s.rules.CrawlDelay)
	}
	return nil
}

// sitemapStep discovers the site's sitemaps, validates each document,
// and remembers the page URLs they list for the crawl step.
type sitemapStep struct {
	auditor *Auditor
}

// Name implements step.
func (st *sitemapStep) Name() string { return "sitemap" }

// Do implements step.
func (st *sitemapStep) Do(ctx context.Context, s *session) error {
	a := st.auditor
	discoverer := robots.NewDiscoverer(a.fetcher.Client(), a.logger, sitemapIndexDepth)
	s.discovery = discoverer.Discover(ctx, s.root, s.rules)

	for _, sm := range s.discovery.Sitemaps {
		s.result.AddIssues(checks.ValidateSitemap(sm))
	}

	s.result.SetMeta("sitemaps_found", len(s.discovery.Sitemaps))
	s.result.SetMeta("total_sitemap_urls", len(s.discovery.PageURLs))
	return nil
}

// crawlStep walks the site breadth-first from the seed URL, runs the
// page checkers on every HTML page, and collects pages for the
// site-wide steps. Only completed fetches consume crawl budget; a
// request that fails outright is recorded as fetch_error and counts
// nothing.
type crawlStep struct {
	auditor *Auditor
}

// Name implements step.
func (st *crawlStep) Name() string { return "crawl" }

// Do implements step.
func (st *crawlStep) Do(ctx context.Context, s *session) error {
	a := st.auditor
	checkers := checks.DefaultCheckers(s.root)
	linkProbe := checks.NewBrokenLinkChecker(a.fetcher.Client())

	frontier := []string{s.seed}
	queued := map[string]bool{s.seed: true}
	for _, loc := range s.discovery.PageURLs {
		if len(frontier) >= a.opts.MaxPages {
			break
		}
		normalized, err := urlutil.Normalize(loc)
		if err != nil || !urlutil.SameHost(normalized, s.seed) || queued[normalized] {
			continue
		}
		queued[normalized] = true
		frontier = append(frontier, normalized)
	}

	scanned := 0
	for len(frontier) > 0 && scanned < a.opts.MaxPages {
		select {
		case <-ctx.Done():
			s.result.PagesScanned = scanned
			return ctx.Err()
		default:
		}

		pageURL := frontier[0]
		frontier = frontier[1:]

		if u, err := url.Parse(pageURL); err == nil && !s.rules.CanFetch(u.Path) {
			a.logger.Debug("page disallowed by robots.txt", "url", pageURL)
			continue
		}

		if err := a.limiter.Wait(ctx); err != nil {
			s.result.PagesScanned = scanned
			return err
		}

		page := a.fetcher.Fetch(ctx, pageURL)
		if page == nil {
			s.result.AddIssue(model.NewIssueDetail(pageURL, "fetch_error", model.SeverityHigh,
				"Request failed"))
			continue
		}
		scanned++
		if page.StatusCode >= 400 {
			s.result.AddIssue(model.NewIssueDetail(pageURL, "http_error", model.SeverityHigh,
				fmt.Sprintf("Status %d", page.StatusCode)))
			s.pages = append(s.pages, page)
			continue
		}
		if !page.IsHTML() {
			s.pages = append(s.pages, page)
			continue
		}

		st.auditPage(ctx, s, page, checkers, linkProbe, &frontier, queued, scanned)
	}

	s.result.PagesScanned = scanned
	return nil
}

// auditPage parses one HTML page, runs every checker against it,
// probes a sample of its internal links, and enqueues newly discovered
// same-host links.
func (st *crawlStep) auditPage(ctx context.Context, s *session, page *model.Page, checkers []checks.Checker, linkProbe *checks.BrokenLinkChecker, frontier *[]string, queued map[string]bool, scanned int) {
	a := st.auditor

	parser, err := crawler.NewParser(page.URL)
	if err != nil {
		a.logger.Warn("parser setup failed", "url", page.URL, "error", err)
		s.pages = append(s.pages, page)
		return
	}
	doc, err := parser.Parse(page.HTML)
	if err != nil {
		a.logger.Warn("html parse failed", "url", page.URL, "error", err)
		s.pages = append(s.pages, page)
		return
	}

	page.Title = doc.Title
	page.MetaDescription = doc.MetaDescription
	page.Noindex = doc.Noindex
	page.Links = parser.ExtractLinks(doc)
	s.texts[page.URL] = doc.Text
	s.pages = append(s.pages, page)

	data := &checks.PageData{Page: page, Doc: doc}
	for _, checker := range checkers {
		issues, err := checker.Check(ctx, data)
		if err != nil {
			a.logger.Warn("checker failed", "checker", checker.Name(), "url", page.URL, "error", err)
			continue
		}
		s.result.AddIssues(issues)
	}

	var internal []string
	for _, link := range page.Links {
		if urlutil.SameHost(link, s.seed) {
			internal = append(internal, link)
		}
	}
	s.result.AddIssues(linkProbe.Check(ctx, page.URL, internal))

	for _, link := range internal {
		if scanned+len(*frontier) >= a.opts.MaxPages {
			break
		}
		if queued[link] {
			continue
		}
		queued[link] = true
		*frontier = append(*frontier, link)
	}
}

// redirectStep inspects the seed URL's redirect behavior. Only the
// seed is checked; crawled links already follow redirects.
type redirectStep struct {
	auditor *Auditor
}

// Name implements step.
func (st *redirectStep) Name() string { return "redirects" }

// Do implements step.
func (st *redirectStep) Do(ctx context.Context, s *session) error {
	if u, err := url.Parse(s.seed); err == nil && !s.rules.CanFetch(u.Path) {
		return nil
	}
	a := st.auditor
	s.result.AddIssues(checks.CheckRedirectChain(ctx, a.fetcher.Client(), s.seed))
	return nil
}

// siteStep runs the analyses that need the whole crawl: duplicate
// content, duplicate titles and descriptions, and link structure.
type siteStep struct{}

// Name implements step.
func (st *siteStep) Name() string { return "site-analysis" }

// Do implements step.
func (st *siteStep) Do(_ context.Context, s *session) error {
	detector := checks.NewDuplicateDetector()
	var htmlPages []*model.Page
	for _, page := range s.pages {
		text, ok := s.texts[page.URL]
		if !ok {
			continue
		}
		htmlPages = append(htmlPages, page)
		detector.AddPage(page.URL, text)
	}

	s.result.AddIssues(detector.FindDuplicates())
	if len(htmlPages) < nearDuplicateMaxPages {
		s.result.AddIssues(detector.FindNearDuplicates(checks.NearDuplicateThreshold))
	}
	s.result.AddIssues(checks.DuplicateTitles(htmlPages))
	s.result.AddIssues(checks.DuplicateMetaDescriptions(htmlPages))
	s.result.AddIssues(checks.AnalyzeInternalLinks(htmlPages))
	return nil
}

// scoreStep computes the health score from the accumulated issues and
// records it in the result metadata.
type scoreStep struct{}

// Name implements step.
func (st *scoreStep) Name() string { return "scoring" }

// Do implements step.
func (st *scoreStep) Do(_ context.Context, s *session) error {
	health := scoring.CalculateHealth(s.result.Issues, s.result.PagesScanned)

	s.result.SetMeta("health_score", health.OverallScore)
	s.result.SetMeta("health_grade", health.Grade)
	s.result.SetMeta("category_scores", health.CategoryScores)

	top := health.Recommendations
	if len(top) > 5 {
		top = top[:5]
	}
	s.result.SetMeta("top_recommendations", top)
	return nil
}
