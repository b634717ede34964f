package model

import (
	"net/http"
	"strings"
)

// MaxBodySize is the maximum number of HTML bytes retained per page.
// Larger responses are truncated before analysis so a single huge page
// cannot exhaust memory during a crawl.
const MaxBodySize = 2 * 1024 * 1024 // 2MB

// Page represents a single crawled page and everything the check
// modules need to analyze it.
type Page struct {
	// URL is the normalized page URL.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains the HTTP response headers.
	Headers http.Header `json:"headers,omitempty"`

	// HTML is the raw response body, truncated to MaxBodySize.
	HTML string `json:"-"`

	// Title is the text of the first <title> element, if any.
	Title string `json:"title,omitempty"`

	// MetaDescription is the content of the meta description tag, if any.
	MetaDescription string `json:"meta_description,omitempty"`

	// Noindex reports whether a robots meta tag contains "noindex".
	Noindex bool `json:"noindex,omitempty"`

	// Links contains the normalized outgoing links found on the page.
	Links []string `json:"links,omitempty"`
}

// Header returns the first value of the named response header.
// Lookup is case-insensitive.
func (p *Page) Header(name string) string {
	if p.Headers == nil {
		return ""
	}
	return p.Headers.Get(name)
}

// IsHTML reports whether the response Content-Type indicates HTML.
// An absent Content-Type is treated as HTML, matching how browsers
// sniff unlabeled documents.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.Header("Content-Type"))
	if ct == "" {
		return true
	}
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml")
}

// IsHTTPS reports whether the page URL uses the https scheme.
func (p *Page) IsHTTPS() bool {
	return strings.HasPrefix(strings.ToLower(p.URL), "https://")
}
