package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// mixedContentRe finds plain-HTTP resource references embedded in a
// page, the common attributes only.
var mixedContentRe = regexp.MustCompile(`(?i)(?:src|href|data|action)=["']http://[^"']+["']`)

// mixedContentSampleSize caps how many offending references appear in
// the issue detail.
const mixedContentSampleSize = 3

// SecurityChecker inspects transport security: HTTPS usage, security
// response headers, mixed content, and cookie flags.
type SecurityChecker struct{}

// NewSecurityChecker creates the security checker.
func NewSecurityChecker() *SecurityChecker {
	return &SecurityChecker{}
}

// Name implements Checker.
func (c *SecurityChecker) Name() string {
	return "security"
}

// Check implements Checker.
func (c *SecurityChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	page := data.Page
	var issues []model.Issue

	if !page.IsHTTPS() {
		issues = append(issues, model.NewIssueDetail(page.URL, "no_https", model.SeverityHigh,
			"Site is not using HTTPS. This can negatively impact SEO and user trust."))
	}

	issues = append(issues, c.checkHeaders(page)...)
	issues = append(issues, c.checkMixedContent(page)...)
	issues = append(issues, c.checkCookies(page)...)
	return issues, nil
}

// checkHeaders verifies the security response headers.
func (c *SecurityChecker) checkHeaders(page *model.Page) []model.Issue {
	var issues []model.Issue

	if page.IsHTTPS() && page.Header("Strict-Transport-Security") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_hsts", model.SeverityMedium,
			"Missing Strict-Transport-Security header. This header enforces HTTPS connections."))
	}

	if page.Header("X-Content-Type-Options") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_x_content_type_options", model.SeverityLow,
			"Missing X-Content-Type-Options header. Should be set to 'nosniff' to prevent MIME type sniffing."))
	}

	if page.Header("X-Frame-Options") == "" && page.Header("Content-Security-Policy") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_clickjacking_protection", model.SeverityMedium,
			"Missing X-Frame-Options or CSP frame-ancestors directive. This protects against clickjacking attacks."))
	}

	if page.Header("Content-Security-Policy") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_csp", model.SeverityLow,
			"Missing Content-Security-Policy header. CSP helps prevent XSS and other code injection attacks."))
	}

	if page.Header("X-XSS-Protection") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_xss_protection", model.SeverityLow,
			"Missing X-XSS-Protection header. This header enables browser XSS filtering."))
	}

	if page.Header("Referrer-Policy") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_referrer_policy", model.SeverityInfo,
			"Missing Referrer-Policy header. This controls how much referrer information is shared."))
	}

	if page.Header("Permissions-Policy") == "" && page.Header("Feature-Policy") == "" {
		issues = append(issues, model.NewIssueDetail(page.URL, "missing_permissions_policy", model.SeverityInfo,
			"Missing Permissions-Policy header. This controls which browser features can be used."))
	}

	return issues
}

// checkMixedContent flags HTTP resource references on HTTPS pages.
func (c *SecurityChecker) checkMixedContent(page *model.Page) []model.Issue {
	if !page.IsHTTPS() {
		return nil
	}

	matches := mixedContentRe.FindAllString(page.HTML, -1)
	if len(matches) == 0 {
		return nil
	}

	sample := matches
	if len(sample) > mixedContentSampleSize {
		sample = sample[:mixedContentSampleSize]
	}
	detail := fmt.Sprintf("Found %d HTTP resources on HTTPS page. Examples: %s",
		len(matches), strings.Join(sample, ", "))
	return []model.Issue{model.NewIssueDetail(page.URL, "mixed_content", model.SeverityHigh, detail)}
}

// checkCookies verifies the Secure, HttpOnly, and SameSite flags on
// cookies the page sets. Each missing flag is reported once even when
// several cookies lack it.
func (c *SecurityChecker) checkCookies(page *model.Page) []model.Issue {
	cookies := page.Headers.Values("Set-Cookie")
	if len(cookies) == 0 {
		return nil
	}

	var missingSecure, missingHTTPOnly, missingSameSite bool
	for _, cookie := range cookies {
		lower := strings.ToLower(cookie)
		if !strings.Contains(lower, "secure") {
			missingSecure = true
		}
		if !strings.Contains(lower, "httponly") {
			missingHTTPOnly = true
		}
		if !strings.Contains(lower, "samesite") {
			missingSameSite = true
		}
	}

	var issues []model.Issue
	if missingSecure {
		issues = append(issues, model.NewIssueDetail(page.URL, "cookie_missing_secure", model.SeverityMedium,
			"Cookies are missing the Secure flag"))
	}
	if missingHTTPOnly {
		issues = append(issues, model.NewIssueDetail(page.URL, "cookie_missing_httponly", model.SeverityMedium,
			"Cookies are missing the HttpOnly flag"))
	}
	if missingSameSite {
		issues = append(issues, model.NewIssueDetail(page.URL, "cookie_missing_samesite", model.SeverityLow,
			"Cookies are missing the SameSite attribute"))
	}
	return issues
}
