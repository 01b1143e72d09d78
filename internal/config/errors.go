package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate(). This allows callers to use errors.Is()
// for programmatic error handling while still providing human-readable
// messages. Using errors.New() here rather than fmt.Errorf() because we
// don't need to include dynamic values in these messages.
var (
	// ErrNoJurisdiction is returned when no jurisdiction is specified.
	ErrNoJurisdiction = errors.New("no jurisdiction specified: provide a two-letter identifier such as MT")

	// ErrUnknownJurisdiction is returned when the jurisdiction identifier is
	// not in the registry. Resolving the jurisdiction is a start-up
	// precondition; an unknown identifier is process-fatal.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction: not present in the jurisdiction registry")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	// Zero retries means a single attempt per request.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidDelay is returned when a pacing or backoff delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxDepth is returned when the depth ceiling is not positive.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
