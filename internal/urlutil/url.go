// Package urlutil provides URL normalization and seed-URL validation
// for the audit crawler.
//
// Normalization guarantees that the same page is never crawled twice
// under different spellings: hosts are lowercased, missing schemes
// default to https, empty paths become "/", and query strings and
// fragments are dropped.
//
// Validation is applied to user-supplied seed URLs only. It rejects
// non-HTTP schemes and addresses that resolve to loopback, private, or
// otherwise non-routable networks so the crawler cannot be pointed at
// internal infrastructure.
package urlutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validation errors for seed URLs.
var (
	// ErrInvalidScheme is returned when the URL scheme is not http or https.
	ErrInvalidScheme = errors.New("url scheme must be http or https")

	// ErrEmptyHost is returned when the URL has no host component.
	ErrEmptyHost = errors.New("url has no host")

	// ErrPrivateAddress is returned when the host is, or resolves to,
	// a loopback, private, link-local, or unspecified address.
	ErrPrivateAddress = errors.New("url points to a private or internal address")
)

// lookupIP resolves a hostname to IP addresses. It is a variable so
// tests can stub DNS resolution.
var lookupIP = net.LookupIP

// Normalize canonicalizes an absolute URL string.
//
// Rules: missing scheme defaults to https, the host (including port)
// is lowercased, an empty path becomes "/", and query string and
// fragment are removed.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	// url.Parse treats "example.com" as a path, not a host.
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// Resolve resolves href against base and normalizes the result.
// base must be an absolute URL.
func Resolve(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	return Normalize(base.ResolveReference(ref).String())
}

// SameHost reports whether two URLs share a host. The comparison is
// case-insensitive and includes the port when present.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

// Validate checks whether raw is an acceptable seed URL for a crawl.
//
// The URL must use http or https and have a host. Hostnames that name
// internal infrastructure (localhost and the .local/.internal/.localhost
// pseudo-TLDs) are rejected outright. IP literals and, on a best-effort
// basis, resolved hostnames must not be loopback, private, link-local,
// or unspecified addresses.
//
// Validate is only applied to the seed URL; links discovered during a
// crawl stay on the seed's host and are not re-validated.
func Validate(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: %q", ErrInvalidScheme, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ErrEmptyHost
	}

	if isInternalHostname(host) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isDisallowedIP(ip) {
			return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
		}
		return nil
	}

	// Resolution failures are not fatal here; the fetch will surface
	// them with a better error.
	ips, err := lookupIP(host)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if isDisallowedIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateAddress, host, ip)
		}
	}
	return nil
}

// isInternalHostname reports whether the hostname names internal
// infrastructure regardless of what it resolves to.
func isInternalHostname(host string) bool {
	if host == "localhost" || host == "0.0.0.0" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	for _, suffix := range []string{".localhost", ".local", ".internal"} {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// isDisallowedIP reports whether the IP belongs to a range the crawler
// must never touch.
func isDisallowedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		ip.IsMulticast()
}
