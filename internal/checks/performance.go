package checks

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// Performance thresholds.
const (
	// lazyLoadAllowance is how many eagerly loaded images are
	// tolerated (above-the-fold images should not be lazy).
	lazyLoadAllowance = 3

	// renderBlockingCSSAllowance is the tolerated number of
	// render-blocking stylesheets.
	renderBlockingCSSAllowance = 2

	// largeHTMLKB and moderateHTMLKB are the document size thresholds.
	largeHTMLKB    = 500
	moderateHTMLKB = 200

	// maxCSSFiles and maxJSFiles bound external resource counts.
	maxCSSFiles = 5
	maxJSFiles  = 10

	// minCacheSeconds is the shortest reasonable max-age.
	minCacheSeconds = 3600

	// preconnectSampleSize caps the domains listed in the
	// missing_preconnect detail.
	preconnectSampleSize = 3
)

// maxAgeRe extracts the max-age directive from Cache-Control.
var maxAgeRe = regexp.MustCompile(`max-age=(\d+)`)

// modernImageFormats are extensions that indicate an optimized image.
var modernImageFormats = []string{".webp", ".avif"}

// PerformanceChecker inspects page-speed signals: image hygiene,
// render-blocking resources, compression, caching headers, document
// size, and preconnect hints.
type PerformanceChecker struct{}

// NewPerformanceChecker creates the performance checker.
func NewPerformanceChecker() *PerformanceChecker {
	return &PerformanceChecker{}
}

// Name implements Checker.
func (c *PerformanceChecker) Name() string {
	return "performance"
}

// Check implements Checker.
func (c *PerformanceChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	var issues []model.Issue
	issues = append(issues, c.checkImages(data)...)
	issues = append(issues, c.checkRenderBlocking(data)...)
	issues = append(issues, c.checkCompression(data)...)
	issues = append(issues, c.checkCaching(data)...)
	issues = append(issues, c.checkPageSize(data)...)
	issues = append(issues, c.checkPreconnect(data)...)
	return issues, nil
}

// checkImages counts images missing dimensions, lazy loading, and
// modern formats.
func (c *PerformanceChecker) checkImages(data *PageData) []model.Issue {
	var withoutDimensions, withoutLazyLoading, withoutModernFormat int

	for _, img := range data.Doc.Images {
		if img.Width == "" || img.Height == "" {
			withoutDimensions++
		}
		if img.Loading != "lazy" && img.DataSrc == "" {
			withoutLazyLoading++
		}
		if img.Src != "" && !hasModernFormat(img.Src) {
			withoutModernFormat++
		}
	}

	var issues []model.Issue
	pageURL := data.Page.URL

	if withoutDimensions > 0 {
		issues = append(issues, model.NewIssueDetail(pageURL, "images_without_dimensions", model.SeverityMedium,
			fmt.Sprintf("%d image(s) missing width/height attributes. This can cause Cumulative Layout Shift (CLS).", withoutDimensions)))
	}
	if withoutLazyLoading > lazyLoadAllowance {
		issues = append(issues, model.NewIssueDetail(pageURL, "images_not_lazy_loaded", model.SeverityLow,
			fmt.Sprintf("%d image(s) not lazy loaded. Consider using loading='lazy' for off-screen images.", withoutLazyLoading)))
	}
	if withoutModernFormat > 0 {
		issues = append(issues, model.NewIssueDetail(pageURL, "images_not_modern_format", model.SeverityInfo,
			fmt.Sprintf("%d image(s) not using modern formats (WebP/AVIF). Modern formats can significantly reduce file size.", withoutModernFormat)))
	}

	return issues
}

// checkRenderBlocking flags stylesheets and head scripts that block
// first render.
func (c *PerformanceChecker) checkRenderBlocking(data *PageData) []model.Issue {
	var issues []model.Issue

	blockingCSS := 0
	for _, sheet := range data.Doc.Stylesheets {
		if sheet.Media == "" || sheet.Media == "all" {
			blockingCSS++
		}
	}
	if blockingCSS > renderBlockingCSSAllowance {
		issues = append(issues, model.NewIssueDetail(data.Page.URL, "render_blocking_css", model.SeverityMedium,
			fmt.Sprintf("%d render-blocking CSS file(s). Consider inlining critical CSS or using media queries.", blockingCSS)))
	}

	blockingScripts := 0
	for _, script := range data.Doc.Scripts {
		if script.InHead && !script.Async && !script.Defer {
			blockingScripts++
		}
	}
	if blockingScripts > 0 {
		issues = append(issues, model.NewIssueDetail(data.Page.URL, "render_blocking_javascript", model.SeverityHigh,
			fmt.Sprintf("%d render-blocking JavaScript file(s) in <head>. Add async or defer attributes, or move scripts to end of <body>.", blockingScripts)))
	}

	return issues
}

// checkCompression verifies the response was compressed, preferring
// Brotli over gzip.
func (c *PerformanceChecker) checkCompression(data *PageData) []model.Issue {
	encoding := strings.ToLower(data.Page.Header("Content-Encoding"))

	switch encoding {
	case "gzip":
		return []model.Issue{model.NewIssueDetail(data.Page.URL, "compression_not_optimal", model.SeverityInfo,
			"Using gzip compression. Consider Brotli for better compression ratios.")}
	case "br", "deflate":
		return nil
	default:
		return []model.Issue{model.NewIssueDetail(data.Page.URL, "no_compression", model.SeverityHigh,
			"No compression detected. Enable gzip or Brotli compression to reduce transfer size.")}
	}
}

// checkCaching verifies the caching headers.
func (c *PerformanceChecker) checkCaching(data *PageData) []model.Issue {
	var issues []model.Issue
	page := data.Page

	cacheControl := strings.ToLower(page.Header("Cache-Control"))
	expires := page.Header("Expires")

	if cacheControl == "" && expires == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "no_caching_headers", model.SeverityMedium,
			"No caching headers found. Set Cache-Control or Expires for better performance."))
	} else if cacheControl != "" {
		if strings.Contains(cacheControl, "no-cache") || strings.Contains(cacheControl, "no-store") {
			issues = append(issues, model.NewIssueDetail(page.URL, "caching_disabled", model.SeverityMedium,
				"Caching is disabled via Cache-Control header. Consider enabling caching for static resources."))
		}
		if m := maxAgeRe.FindStringSubmatch(cacheControl); m != nil {
			if maxAge, err := strconv.Atoi(m[1]); err == nil && maxAge < minCacheSeconds {
				issues = append(issues, model.NewIssueDetail(page.URL, "short_cache_duration", model.SeverityLow,
					fmt.Sprintf("Cache duration is only %d seconds. Consider longer cache for static resources.", maxAge)))
			}
		}
	}

	if page.Header("ETag") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_etag", model.SeverityInfo,
			"Missing ETag header. ETags help with cache validation."))
	}

	return issues
}

// checkPageSize flags oversized documents and resource counts.
func (c *PerformanceChecker) checkPageSize(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL

	sizeKB := float64(len(data.Page.HTML)) / 1024
	switch {
	case sizeKB > largeHTMLKB:
		issues = append(issues, model.NewIssueDetail(pageURL, "large_html_size", model.SeverityHigh,
			fmt.Sprintf("HTML size is %.1f KB. Large HTML can slow initial render. Consider code minification and removing unused code.", sizeKB)))
	case sizeKB > moderateHTMLKB:
		issues = append(issues, model.NewIssueDetail(pageURL, "moderate_html_size", model.SeverityLow,
			fmt.Sprintf("HTML size is %.1f KB. Consider optimizing if possible.", sizeKB)))
	}

	if css := len(data.Doc.Stylesheets); css > maxCSSFiles {
		issues = append(issues, model.NewIssueDetail(pageURL, "too_many_css_files", model.SeverityMedium,
			fmt.Sprintf("%d external CSS files. Consider concatenation to reduce HTTP requests.", css)))
	}
	if js := len(data.Doc.Scripts); js > maxJSFiles {
		issues = append(issues, model.NewIssueDetail(pageURL, "too_many_js_files", model.SeverityMedium,
			fmt.Sprintf("%d external JavaScript files. Consider bundling to reduce HTTP requests.", js)))
	}

	return issues
}

// checkPreconnect suggests preconnect hints for external resource
// domains that lack one.
func (c *PerformanceChecker) checkPreconnect(data *PageData) []model.Issue {
	base, err := url.Parse(data.Page.URL)
	if err != nil {
		return nil
	}

	preconnected := make(map[string]bool)
	for _, href := range data.Doc.Preconnects {
		if u, err := url.Parse(href); err == nil && u.Host != "" {
			preconnected[u.Host] = true
		}
	}

	var refs []string
	for _, script := range data.Doc.Scripts {
		refs = append(refs, script.Src)
	}
	for _, img := range data.Doc.Images {
		refs = append(refs, img.Src)
	}
	for _, sheet := range data.Doc.Stylesheets {
		refs = append(refs, sheet.Href)
	}

	seen := make(map[string]bool)
	var missing []string
	for _, ref := range refs {
		if !strings.HasPrefix(strings.ToLower(ref), "http") {
			continue
		}
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" || u.Host == base.Host {
			continue
		}
		if !preconnected[u.Host] && !seen[u.Host] {
			seen[u.Host] = true
			missing = append(missing, u.Host)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	if len(missing) > preconnectSampleSize {
		missing = missing[:preconnectSampleSize]
	}
	return []model.Issue{model.NewIssueDetail(data.Page.URL, "missing_preconnect", model.SeverityInfo,
		fmt.Sprintf("Consider adding preconnect hints for external domains: %s. This can improve loading performance.",
			strings.Join(missing, ", ")))}
}

// hasModernFormat reports whether the image source uses an optimized
// format.
func hasModernFormat(src string) bool {
	lower := strings.ToLower(src)
	for _, ext := range modernImageFormats {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
