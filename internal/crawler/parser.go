package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/seoscan/internal/urlutil"
)

// ParseResult holds everything extracted from a page in a single DOM
// pass. All check modules read from this structure instead of
// re-parsing the HTML.
type ParseResult struct {
	// Title is the text of the first <title> element.
	Title string

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string

	// MetaNames maps meta tag names (lowercased) to their first content
	// value.
	MetaNames map[string]string

	// MetaProperties maps meta tag property attributes (lowercased,
	// e.g. "og:title") to their first content value.
	MetaProperties map[string]string

	// RobotsMetas contains the content of every <meta name="robots">
	// tag, in document order.
	RobotsMetas []string

	// GooglebotMetas contains the content of every <meta name="googlebot">.
	GooglebotMetas []string

	// Noindex reports whether any robots meta content contains "noindex".
	Noindex bool

	// HasCharset reports whether a charset declaration was found.
	HasCharset bool

	// HTMLLang is the lang attribute of the <html> element.
	HTMLLang string

	// Canonicals contains the href of every <link rel="canonical">,
	// in document order, including empty values.
	Canonicals []string

	// Hreflangs maps hreflang values (lowercased) to their href.
	Hreflangs map[string]string

	// HasFavicon reports whether a <link rel="...icon..."> was found.
	HasFavicon bool

	// HasAppleTouchIcon reports whether an apple-touch-icon link was found.
	HasAppleTouchIcon bool

	// Preconnects contains <link rel="preconnect"> hrefs.
	Preconnects []string

	// PaginationLinks contains <link rel="next"> and rel="prev" entries.
	PaginationLinks []PaginationLink

	// Stylesheets contains <link rel="stylesheet"> entries.
	Stylesheets []Stylesheet

	// Scripts contains <script> elements that load external sources.
	Scripts []Script

	// Images contains <img> elements.
	Images []Image

	// Anchors contains <a> elements with an href attribute.
	Anchors []Anchor

	// Headings contains the text of h1-h6 elements, in document order.
	Headings []string

	// Text is the visible page text, excluding script, style, nav,
	// header, and footer content.
	Text string
}

// PaginationLink is a rel="next" or rel="prev" link element.
type PaginationLink struct {
	Rel  string
	Href string
}

// Stylesheet is an external CSS reference.
type Stylesheet struct {
	Href  string
	Media string
}

// Script is an external script reference.
type Script struct {
	Src    string
	Async  bool
	Defer  bool
	InHead bool
}

// Image is an <img> element. DataSrc carries the data-src attribute
// used by script-driven lazy loaders.
type Image struct {
	Src     string
	Alt     string
	Width   string
	Height  string
	Loading string
	DataSrc string
}

// Anchor is an <a> element with its crawl-relevant attributes.
type Anchor struct {
	Href   string
	Text   string
	Rel    string
	Target string
}

// Parser extracts structured content from HTML documents.
// A parser is bound to the URL of the page being parsed so relative
// references can be resolved.
type Parser struct {
	baseURL *url.URL
}

// NewParser creates a parser for the page at pageURL.
func NewParser(pageURL string) (*Parser, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	return &Parser{baseURL: base}, nil
}

// textExcludedTags are elements whose text is not page content.
var textExcludedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"noscript": true,
}

// headingTags are the heading elements collected for content analysis.
var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
}

// Parse walks the document once and extracts all content the check
// modules need.
func (p *Parser) Parse(htmlContent string) (*ParseResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	result := &ParseResult{
		MetaNames:      make(map[string]string),
		MetaProperties: make(map[string]string),
		Hreflangs:      make(map[string]string),
	}

	var text strings.Builder
	p.walk(doc, result, &text, false, false)
	result.Text = strings.Join(strings.Fields(text.String()), " ")

	for _, content := range result.RobotsMetas {
		if strings.Contains(strings.ToLower(content), "noindex") {
			result.Noindex = true
			break
		}
	}

	return result, nil
}

// walk recursively processes the DOM tree. inHead tracks whether the
// current node is inside <head>; skipText whether text nodes are
// excluded from the content snapshot.
func (p *Parser) walk(n *html.Node, result *ParseResult, text *strings.Builder, inHead, skipText bool) {
	if n.Type == html.TextNode && !skipText {
		text.WriteString(n.Data)
		text.WriteString(" ")
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "head":
			inHead = true
		case "html":
			result.HTMLLang = getAttr(n, "lang")
		case "title":
			if result.Title == "" {
				result.Title = strings.TrimSpace(nodeText(n))
			}
			skipText = true
		case "meta":
			p.processMeta(n, result)
		case "link":
			p.processLink(n, result)
		case "script":
			if src := getAttr(n, "src"); src != "" {
				result.Scripts = append(result.Scripts, Script{
					Src:    src,
					Async:  hasAttr(n, "async"),
					Defer:  hasAttr(n, "defer"),
					InHead: inHead,
				})
			}
		case "img":
			result.Images = append(result.Images, Image{
				Src:     getAttr(n, "src"),
				Alt:     getAttr(n, "alt"),
				Width:   getAttr(n, "width"),
				Height:  getAttr(n, "height"),
				Loading: strings.ToLower(getAttr(n, "loading")),
				DataSrc: getAttr(n, "data-src"),
			})
		case "a":
			if href := getAttr(n, "href"); href != "" {
				result.Anchors = append(result.Anchors, Anchor{
					Href:   href,
					Text:   strings.TrimSpace(nodeText(n)),
					Rel:    strings.ToLower(getAttr(n, "rel")),
					Target: strings.ToLower(getAttr(n, "target")),
				})
			}
		}

		if headingTags[n.Data] {
			if heading := strings.TrimSpace(nodeText(n)); heading != "" {
				result.Headings = append(result.Headings, heading)
			}
		}
		if textExcludedTags[n.Data] {
			skipText = true
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		p.walk(child, result, text, inHead, skipText)
	}
}

// processMeta records a <meta> element into the result maps.
func (p *Parser) processMeta(n *html.Node, result *ParseResult) {
	if getAttr(n, "charset") != "" {
		result.HasCharset = true
	}

	content := getAttr(n, "content")

	if httpEquiv := strings.ToLower(getAttr(n, "http-equiv")); httpEquiv == "content-type" {
		if strings.Contains(strings.ToLower(content), "charset=") {
			result.HasCharset = true
		}
	}

	if name := strings.ToLower(getAttr(n, "name")); name != "" {
		if _, exists := result.MetaNames[name]; !exists {
			result.MetaNames[name] = content
		}
		switch name {
		case "description":
			if result.MetaDescription == "" {
				result.MetaDescription = strings.TrimSpace(content)
			}
		case "robots":
			result.RobotsMetas = append(result.RobotsMetas, content)
		case "googlebot":
			result.GooglebotMetas = append(result.GooglebotMetas, content)
		}
	}

	if prop := strings.ToLower(getAttr(n, "property")); prop != "" {
		if _, exists := result.MetaProperties[prop]; !exists {
			result.MetaProperties[prop] = content
		}
	}
}

// processLink records a <link> element into the result.
func (p *Parser) processLink(n *html.Node, result *ParseResult) {
	rel := strings.ToLower(getAttr(n, "rel"))
	href := getAttr(n, "href")

	switch {
	case rel == "canonical":
		result.Canonicals = append(result.Canonicals, strings.TrimSpace(href))
	case rel == "stylesheet":
		result.Stylesheets = append(result.Stylesheets, Stylesheet{
			Href:  href,
			Media: strings.ToLower(getAttr(n, "media")),
		})
	case rel == "preconnect":
		if href != "" {
			result.Preconnects = append(result.Preconnects, href)
		}
	case rel == "next" || rel == "prev":
		result.PaginationLinks = append(result.PaginationLinks, PaginationLink{
			Rel:  rel,
			Href: strings.TrimSpace(href),
		})
	case rel == "alternate":
		if hreflang := strings.ToLower(getAttr(n, "hreflang")); hreflang != "" {
			if _, exists := result.Hreflangs[hreflang]; !exists {
				result.Hreflangs[hreflang] = href
			}
		}
	case strings.Contains(rel, "apple-touch-icon"):
		result.HasAppleTouchIcon = true
	case strings.Contains(rel, "icon"):
		result.HasFavicon = true
	}
}

// ExtractLinks resolves and normalizes the anchors on a page.
// Fragment-only links and javascript:/mailto:/tel: pseudo-links are
// skipped, and the result is deduplicated in document order.
func (p *Parser) ExtractLinks(result *ParseResult) []string {
	var links []string
	seen := make(map[string]bool)

	for _, anchor := range result.Anchors {
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

		normalized, err := urlutil.Resolve(p.baseURL, href)
		if err != nil {
			continue
		}
		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	}
	return links
}

// ResolveRef resolves a raw reference against the page URL and
// normalizes it. Used for canonical and og:image comparisons.
func (p *Parser) ResolveRef(href string) (string, error) {
	return urlutil.Resolve(p.baseURL, href)
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

// hasAttr reports whether the node carries the named attribute,
// regardless of value (boolean HTML attributes).
func hasAttr(n *html.Node, name string) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return true
		}
	}
	return false
}

// nodeText returns the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}
