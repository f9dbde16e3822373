package config

import "errors"

// Validation errors returned by Config.Validate. They are package-level
// sentinels so callers can match them with errors.Is while still getting a
// human-readable message at the process boundary.
var (
	// ErrNoTarget is returned when no target domain or URL was given.
	ErrNoTarget = errors.New("no target specified: provide a domain or URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be a non-negative integer")

	// ErrInvalidDelay is returned when the crawl delay is negative.
	// Use 0 to disable the politeness pause.
	ErrInvalidDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
