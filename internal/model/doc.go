// Package model defines the core data structures used throughout seoscan.
//
// This package contains the following main types:
//   - Issue: A single SEO problem detected on a page or site
//   - Page: A crawled web page with extracted content
//   - AuditResult: The main audit result structure (JSON output contract)
//   - Summary: A condensed, human-readable view of a result
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, checks, audit, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
