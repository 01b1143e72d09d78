package fetch

import "fmt"

// Kind classifies a fetch failure.
type Kind int

const (
	// KindStatus indicates a non-200 HTTP response (4xx other than 429, or
	// a 5xx that survived all retries).
	KindStatus Kind = iota

	// KindTimeout indicates the request exceeded the configured timeout.
	KindTimeout

	// KindConnection indicates a transport-level failure (refused
	// connection, reset, DNS error).
	KindConnection

	// KindRateLimit indicates the server answered 429 on the final attempt,
	// after any Retry-After hints were honored.
	KindRateLimit
)

// String returns a short label for the failure kind.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindRateLimit:
		return "rate-limit"
	default:
		return "unknown"
	}
}

// Error is a definitive fetch failure, returned only after the retry policy
// is exhausted. It is terminal for the node being fetched; siblings are
// unaffected.
type Error struct {
	// URL is the request URL.
	URL string

	// Kind classifies the failure.
	Kind Kind

	// StatusCode is the HTTP status code, or 0 when no response was
	// received.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d (%s)", e.URL, e.StatusCode, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

// Unwrap returns the underlying transport error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}
