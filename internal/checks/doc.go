// Package checks implements the SEO check modules. Per-page checkers
// consume the single-pass parse result produced by internal/crawler
// and report issues without failing the audit; site-wide analyzers
// (duplicate content, link graph) run after the crawl completes.
//
// Design decision: page checkers run in a fixed order instead of
// registering themselves in a dynamic registry. The set of checks is
// known at compile time, and a fixed slice keeps issue output
// deterministic across runs.
package checks
