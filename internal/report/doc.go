// Package report renders audit results for people and tools.
//
// Three writers cover the output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: the machine-readable output contract
//   - MarkdownWriter: GitHub Flavored Markdown for sharing audits
//
// Report rendering is kept apart from the result structures in the
// model package so new formats never touch the core data.
package report
