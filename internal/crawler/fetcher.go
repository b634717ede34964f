package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// HTTP client tuning for polite sequential crawling.
const (
	// connectTimeout bounds TCP connection establishment.
	connectTimeout = 5 * time.Second

	// DefaultRequestTimeout bounds a whole request including body read.
	DefaultRequestTimeout = 10 * time.Second

	// maxRedirects bounds redirect following per request.
	maxRedirects = 10
)

// NewHTTPClient creates an HTTP client configured for crawling:
// separate connect and overall timeouts, a cookie jar so session
// cookies survive across pages, a bounded redirect chain, and the
// given User-Agent injected into every request.
func NewHTTPClient(userAgent string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		DisableCompression:    false,
	}

	// Cookie jar errors only occur with a non-nil PublicSuffixList.
	jar, _ := cookiejar.New(nil)

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: userAgent,
		},
		Jar:     jar,
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// headerInjectingTransport adds the crawler's identifying headers to
// every outgoing request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone so retries and redirects see a pristine request.
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	}
	return t.base.RoundTrip(clone)
}

// Fetcher retrieves pages for the audit crawler.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher using the given client. A nil logger
// falls back to slog.Default().
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Client exposes the underlying HTTP client for components that share
// it (robots, sitemaps, redirect-chain checks).
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves a page. It returns nil when the request fails
// entirely (timeout, DNS, connection refused); HTTP error statuses
// still produce a page so the caller can record them. Redirects are
// followed, and the returned page keeps the originally requested URL.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) *model.Page {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		f.logger.Warn("request build failed", "url", pageURL, "error", err)
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// Timeouts are routine on slow sites; stay quiet.
			f.logger.Debug("request timed out", "url", pageURL)
		} else {
			f.logger.Warn("request failed", "url", pageURL, "error", err)
		}
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, model.MaxBodySize))
	if err != nil {
		f.logger.Warn("body read failed", "url", pageURL, "error", err)
		return nil
	}

	// The transport strips Content-Encoding when it transparently
	// decompresses gzip bodies; restore it so the compression checks
	// still see what the server sent.
	if resp.Uncompressed {
		resp.Header.Set("Content-Encoding", "gzip")
	}

	return &model.Page{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		HTML:       string(body),
	}
}
