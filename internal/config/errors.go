package config

import "errors"

// Configuration validation errors, returned by Config.Validate().
// Sentinel errors let callers branch with errors.Is() while keeping a
// readable message for the terminal.
var (
	// ErrNoTarget is returned when no site URL is given.
	ErrNoTarget = errors.New("no target specified: provide a site URL or use --list")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidRate is returned when the request rate is not positive.
	ErrInvalidRate = errors.New("invalid request rate: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the batch concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
