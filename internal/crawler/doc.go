// Package crawler provides page fetching and HTML extraction for audits.
//
// # Components
//
//   - Fetcher: retrieves pages with tuned timeouts and a bounded
//     redirect chain; transport failures yield nil so the orchestrator
//     can record a fetch error and keep crawling
//   - Parser: one-pass DOM extraction into a ParseResult consumed by
//     every check module, plus link extraction for the crawl frontier
//
// Design decision: We implement our own crawl plumbing rather than
// using a crawling framework because:
//  1. The audit needs a strictly sequential, rate-limited fetch order
//  2. Check modules need raw headers and bodies, not a processed view
//  3. Parsing once per page and sharing the result keeps audits cheap
//
// # Politeness
//
// The fetcher itself is passive; pacing, robots.txt gating, and page
// budgets are enforced by the audit orchestrator and ratelimit packages.
package crawler
