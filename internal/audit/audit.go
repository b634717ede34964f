// Package audit orchestrates a full site audit: robots.txt analysis,
// sitemap discovery, a polite breadth-first crawl with per-page checks,
// site-wide duplicate and link-structure analysis, and health scoring.
//
// The audit is organized as a sequence of steps sharing one session.
// Steps never abort the audit; failures are recorded as issues or
// logged and the remaining steps still run. Only context cancellation
// stops an audit early.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/seoscan/internal/crawler"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/ratelimit"
	"github.com/nao1215/seoscan/internal/robots"
	"github.com/nao1215/seoscan/internal/urlutil"
)

// Crawl defaults matching the free usage tier.
const (
	// DefaultMaxPages bounds how many pages one audit may fetch.
	DefaultMaxPages = 25

	// DefaultRPS is the default request rate.
	DefaultRPS = 1.0

	// DefaultUserAgent identifies the crawler.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/nao1215/seoscan)"

	// nearDuplicateMaxPages disables the quadratic near-duplicate scan
	// on larger crawls.
	nearDuplicateMaxPages = 100

	// sitemapIndexDepth bounds recursion through sitemap indexes during
	// discovery.
	sitemapIndexDepth = 1
)

// ErrNoPages is returned when not a single page could be fetched.
var ErrNoPages = errors.New("no pages could be fetched")

// Options configures an audit.
type Options struct {
	// MaxPages bounds the crawl budget. Zero means DefaultMaxPages.
	MaxPages int

	// RPS is the request rate. Zero means DefaultRPS. A robots.txt
	// Crawl-delay larger than the resulting interval takes precedence.
	RPS float64

	// Timeout bounds each HTTP request. Zero means the crawler default.
	Timeout time.Duration

	// UserAgent identifies the crawler. Empty means DefaultUserAgent.
	UserAgent string
}

// withDefaults fills zero fields.
func (o Options) withDefaults() Options {
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.RPS <= 0 {
		o.RPS = DefaultRPS
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return o
}

// session is the shared state the audit steps accumulate.
type session struct {
	// seed is the normalized URL the crawl starts from.
	seed string

	// root is the seed's scheme://host origin, without trailing slash.
	root string

	// result collects issues and metadata.
	result *model.AuditResult

	// rules is the parsed robots.txt, set by the robots step.
	rules *robots.Rules

	// discovery is the sitemap discovery outcome, set by the sitemap
	// step.
	discovery *robots.Discovery

	// pages are the fetched pages in crawl order, HTML and non-HTML
	// alike. Failed fetches are not included.
	pages []*model.Page

	// texts holds the extracted visible text per HTML page URL, for
	// duplicate detection.
	texts map[string]string
}

// step is one phase of an audit. Steps run in order against the shared
// session; a returned error is logged and the audit continues.
type step interface {
	// Do executes the step, recording findings on the session.
	Do(ctx context.Context, s *session) error

	// Name identifies the step in logs.
	Name() string
}

// Auditor runs site audits.
type Auditor struct {
	opts    Options
	logger  *slog.Logger
	fetcher *crawler.Fetcher
	limiter *ratelimit.Limiter
}

// New creates an Auditor. A nil logger falls back to slog.Default().
func New(opts Options, logger *slog.Logger) (*Auditor, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	limiter, err := ratelimit.New(opts.RPS)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter: %w", err)
	}

	client := crawler.NewHTTPClient(opts.UserAgent, opts.Timeout)
	return &Auditor{
		opts:    opts,
		logger:  logger,
		fetcher: crawler.NewFetcher(client, logger),
		limiter: limiter,
	}, nil
}

// Run audits the site at seedURL and returns the accumulated result.
// It returns an error for an unusable seed URL, when the context is
// cancelled, or when not a single page could be fetched.
func (a *Auditor) Run(ctx context.Context, seedURL string) (*model.AuditResult, error) {
	seed, err := urlutil.Normalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("normalize seed url: %w", err)
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}

	s := &session{
		seed:   seed,
		root:   u.Scheme + "://" + u.Host,
		result: model.NewAuditResult(seed),
		texts:  make(map[string]string),
	}
	s.result.SetMeta("max_pages", a.opts.MaxPages)
	s.result.SetMeta("timestamp", s.result.StartedAt.Format(time.RFC3339))
	s.result.SetMeta("agent", a.opts.UserAgent)

	steps := []step{
		&robotsStep{auditor: a},
		&sitemapStep{auditor: a},
		&crawlStep{auditor: a},
		&redirectStep{auditor: a},
		&siteStep{},
		&scoreStep{},
	}

	for _, st := range steps {
		select {
		case <-ctx.Done():
			a.logger.Warn("audit cancelled", "step", st.Name(), "site", s.seed, "reason", ctx.Err())
			return s.result, ctx.Err()
		default:
		}

		a.logger.Info("executing step", "step", st.Name(), "site", s.seed)
		if err := st.Do(ctx, s); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return s.result, err
			}
			a.logger.Error("step failed", "step", st.Name(), "site", s.seed, "error", err)
			continue
		}
		a.logger.Debug("step completed", "step", st.Name(), "site", s.seed)
	}

	if s.result.PagesScanned == 0 {
		return s.result, fmt.Errorf("%w: %s", ErrNoPages, s.seed)
	}
	return s.result, nil
}
