// Package log provides the audit tool's logging, built on the standard
// slog package with automatic redaction of secrets.
//
// The crawler handles Set-Cookie headers and the AI summarizer carries
// an API key; neither may ever reach log output. The RedactHandler
// masks attribute values whose key names credentials or whose value
// looks like a token, so even debug-level crawl logs are safe to share
// in bug reports.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("page fetched",
//	    "url", "https://example.com/",
//	    "set-cookie", "session=abc123", // masked
//	)
package log
