// Package ai generates natural-language audit summaries through an
// OpenAI-compatible chat completions endpoint. The feature is opt-in:
// without an API key the rest of the tool works unchanged.
package ai
