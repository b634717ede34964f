package checks

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// Certificate check tuning.
const (
	// certDialTimeout bounds the TLS handshake.
	certDialTimeout = 10 * time.Second

	// expiryWarningDays is how close to expiry a certificate may get
	// before the audit warns about it.
	expiryWarningDays = 30
)

// errNoPeerCertificate is returned when a handshake completes without
// presenting a leaf certificate.
var errNoPeerCertificate = errors.New("server presented no certificate")

// certFinding is a host-level certificate problem, re-reported at
// every HTTPS page URL on that host.
type certFinding struct {
	issueType string
	severity  model.Severity
	detail    string
}

// CertChecker validates the TLS certificate of HTTPS pages: expiry,
// imminent expiry, and self-signed certificates. The handshake runs
// once per host and the findings are cached.
type CertChecker struct {
	dial  func(ctx context.Context, addr, serverName string) (*x509.Certificate, error)
	now   func() time.Time
	cache map[string][]certFinding
}

// NewCertChecker creates the certificate checker.
func NewCertChecker() *CertChecker {
	return &CertChecker{
		dial:  dialForCertificate,
		now:   time.Now,
		cache: make(map[string][]certFinding),
	}
}

// Name implements Checker.
func (c *CertChecker) Name() string {
	return "certificate"
}

// Check implements Checker.
func (c *CertChecker) Check(ctx context.Context, data *PageData) ([]model.Issue, error) {
	page := data.Page
	if !page.IsHTTPS() {
		return nil, nil
	}

	parsed, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	// The crawl is single-threaded, so the cache needs no locking.
	findings, cached := c.cache[parsed.Host]
	if !cached {
		findings = c.inspect(ctx, parsed)
		c.cache[parsed.Host] = findings
	}

	issues := make([]model.Issue, 0, len(findings))
	for _, f := range findings {
		issues = append(issues, model.NewIssueDetail(page.URL, f.issueType, f.severity, f.detail))
	}
	return issues, nil
}

// inspect performs the handshake and evaluates the leaf certificate.
func (c *CertChecker) inspect(ctx context.Context, parsed *url.URL) []certFinding {
	addr := parsed.Host
	if parsed.Port() == "" {
		addr = net.JoinHostPort(parsed.Hostname(), "443")
	}

	cert, err := c.dial(ctx, addr, parsed.Hostname())
	if err != nil {
		return []certFinding{{
			issueType: "ssl_error",
			severity:  model.SeverityHigh,
			detail:    fmt.Sprintf("SSL error: %v", err),
		}}
	}

	var findings []certFinding

	daysUntilExpiry := int(cert.NotAfter.Sub(c.now()).Hours() / 24)
	switch {
	case daysUntilExpiry < 0:
		findings = append(findings, certFinding{
			issueType: "ssl_expired",
			severity:  model.SeverityHigh,
			detail:    fmt.Sprintf("SSL certificate expired %d days ago", -daysUntilExpiry),
		})
	case daysUntilExpiry < expiryWarningDays:
		findings = append(findings, certFinding{
			issueType: "ssl_expiring_soon",
			severity:  model.SeverityMedium,
			detail:    fmt.Sprintf("SSL certificate expires in %d days", daysUntilExpiry),
		})
	}

	if bytes.Equal(cert.RawIssuer, cert.RawSubject) && len(cert.RawIssuer) > 0 {
		findings = append(findings, certFinding{
			issueType: "self_signed_certificate",
			severity:  model.SeverityHigh,
			detail:    "SSL certificate is self-signed",
		})
	}

	return findings
}

// dialForCertificate retrieves the leaf certificate of addr. The
// handshake skips chain verification so expired and self-signed
// certificates can still be inspected instead of failing outright;
// nothing from the connection is trusted beyond reading the
// certificate.
func dialForCertificate(ctx context.Context, addr, serverName string) (*x509.Certificate, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: certDialTimeout},
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true, //nolint:gosec // inspection only, see above
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, errNoPeerCertificate
	}
	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, errNoPeerCertificate
	}
	return certs[0], nil
}
