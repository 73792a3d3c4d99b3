package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the loaders, and can be
// matched with errors.Is().
var (
	// ErrEmptyToken is returned when no proxy token was given.
	ErrEmptyToken = errors.New("proxy token is required")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrNoVendors is returned when the vendor allow-list is empty.
	ErrNoVendors = errors.New("no target vendors: set vendors in the config file or use --vendor")

	// ErrInvalidLimit is returned when the request limit is negative.
	ErrInvalidLimit = errors.New("invalid request limit: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDelay is returned when the crawl delay is negative.
	ErrInvalidDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidStoreKind is returned for an unknown store backend.
	ErrInvalidStoreKind = errors.New("invalid store kind: must be csv or sqlite")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
