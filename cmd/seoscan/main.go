// Package main provides the entry point for the seoscan CLI.
//
// seoscan is an SEO auditing tool for websites. It crawls a site,
// checks every page for on-page, technical, and performance issues,
// and reports a health score with actionable findings.
//
// Usage:
//
//	seoscan audit <url>
//	seoscan audit --json <url>
//
// See --help for all available options.
package main

// main is the entry point for seoscan.
func main() {
	Execute()
}
